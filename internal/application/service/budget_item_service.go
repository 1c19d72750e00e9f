package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/event"
	"github.com/garyjia/event-finance/internal/domain/money"
)

// CreateBudgetItemInput carries the fields of a new line item
type CreateBudgetItemInput struct {
	Category      string
	Subcategory   string
	Description   string
	EstimatedCost money.NumericInput
	ActualCost    money.NumericInput
	Notes         string
	AssignedUser  string
	Vendor        string
	StrategicGoal string
	Attachment    string
}

// UpdateBudgetItemInput is a partial update. Nil fields are left alone.
// A cost set to money.Absent{} clears the stored value.
type UpdateBudgetItemInput struct {
	Category      *string
	Subcategory   *string
	Description   *string
	EstimatedCost money.NumericInput
	ActualCost    money.NumericInput
	Notes         *string
	AssignedUser  *string
	Vendor        *string
	StrategicGoal *string
	Attachment    *string
}

// BudgetItemService manages the lifecycle of budget line items
type BudgetItemService interface {
	Create(ctx context.Context, actor Actor, eventID int64, in CreateBudgetItemInput) (*entity.BudgetLineItem, error)
	Update(ctx context.Context, actor Actor, eventID, itemID int64, in UpdateBudgetItemInput) (*entity.BudgetLineItem, error)
	RequestDelete(ctx context.Context, actor Actor, eventID, itemID int64) (*DeleteTicket, error)
	ConfirmDelete(ctx context.Context, actor Actor, eventID, itemID int64, token string) error
	Get(ctx context.Context, eventID, itemID int64) (*entity.BudgetLineItem, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error)
}

type budgetItemServiceImpl struct {
	eventRepo  port.EventRepository
	itemRepo   port.BudgetItemRepository
	auth       *Authorizer
	deletions  *DeletionRegistry
	dispatcher EventDispatcher
	logger     Logger
	now        func() time.Time
}

// NewBudgetItemService creates a new BudgetItemService
func NewBudgetItemService(
	eventRepo port.EventRepository,
	itemRepo port.BudgetItemRepository,
	auth *Authorizer,
	deletions *DeletionRegistry,
	dispatcher EventDispatcher,
	logger Logger,
) BudgetItemService {
	return &budgetItemServiceImpl{
		eventRepo:  eventRepo,
		itemRepo:   itemRepo,
		auth:       auth,
		deletions:  deletions,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create validates and stores a new line item with status Pending
func (s *budgetItemServiceImpl) Create(ctx context.Context, actor Actor, eventID int64, in CreateBudgetItemInput) (*entity.BudgetLineItem, error) {
	if err := s.auth.require(actor, "create budget item", "budget edit", canEditBudget); err != nil {
		return nil, err
	}
	if money.IsProvided(in.EstimatedCost) {
		if err := s.auth.require(actor, "set estimated cost", "estimated cost edit", canSetEstimated); err != nil {
			return nil, err
		}
	}
	if money.IsProvided(in.ActualCost) {
		if err := s.auth.require(actor, "set actual cost", "actual cost edit", canSetActual); err != nil {
			return nil, err
		}
	}

	verr := &ValidationError{}
	category := parseCategory(verr, in.Category)
	description := requireText(verr, "description", in.Description)
	estimated := parseCost(verr, "estimated_cost", in.EstimatedCost)
	actual := parseCost(verr, "actual_cost", in.ActualCost)
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	item := &entity.BudgetLineItem{
		EventID:       eventID,
		Category:      category,
		Subcategory:   trimmed(in.Subcategory),
		Description:   description,
		EstimatedCost: estimated,
		ActualCost:    actual,
		Status:        entity.StatusPending,
		Notes:         trimmed(in.Notes),
		AssignedUser:  trimmed(in.AssignedUser),
		Vendor:        trimmed(in.Vendor),
		StrategicGoal: trimmed(in.StrategicGoal),
		Attachment:    trimmed(in.Attachment),
		LastEditedBy:  actor.UserID,
		LastEditedAt:  now,
		CreatedAt:     now,
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		s.logger.Error("Failed to create budget item", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("create budget item: %w", err)
	}

	s.logger.Info("Budget item created", "id", item.ID, "event_id", eventID, "category", item.Category, "actor", actor.UserID)
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeBudgetItemCreated, eventID, item.ID, actor.UserID, map[string]interface{}{
		"category":    item.Category.String(),
		"description": item.Description,
	}))

	return item, nil
}

// Update applies the fields present in the input. Status is never changed here.
func (s *budgetItemServiceImpl) Update(ctx context.Context, actor Actor, eventID, itemID int64, in UpdateBudgetItemInput) (*entity.BudgetLineItem, error) {
	if err := s.auth.require(actor, "update budget item", "budget edit", canEditBudget); err != nil {
		return nil, err
	}
	if in.EstimatedCost != nil {
		if err := s.auth.require(actor, "change estimated cost", "estimated cost edit", canSetEstimated); err != nil {
			return nil, err
		}
	}
	if in.ActualCost != nil {
		if err := s.auth.require(actor, "change actual cost", "actual cost edit", canSetActual); err != nil {
			return nil, err
		}
	}

	item, err := s.Get(ctx, eventID, itemID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if in.Category != nil {
		item.Category = parseCategory(verr, *in.Category)
	}
	if in.Description != nil {
		item.Description = requireText(verr, "description", *in.Description)
	}
	if in.EstimatedCost != nil {
		item.EstimatedCost = parseCost(verr, "estimated_cost", in.EstimatedCost)
	}
	if in.ActualCost != nil {
		item.ActualCost = parseCost(verr, "actual_cost", in.ActualCost)
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	applyText(&item.Subcategory, in.Subcategory)
	applyText(&item.Notes, in.Notes)
	applyText(&item.AssignedUser, in.AssignedUser)
	applyText(&item.Vendor, in.Vendor)
	applyText(&item.StrategicGoal, in.StrategicGoal)
	applyText(&item.Attachment, in.Attachment)

	item.LastEditedBy = actor.UserID
	item.LastEditedAt = s.now().UTC()

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, &NotFoundError{Resource: "budget item", ID: itemID}
		}
		s.logger.Error("Failed to update budget item", "error", err, "id", itemID)
		return nil, fmt.Errorf("update budget item: %w", err)
	}

	s.logger.Info("Budget item updated", "id", itemID, "event_id", eventID, "actor", actor.UserID)
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeBudgetItemUpdated, eventID, itemID, actor.UserID, nil))

	return item, nil
}

// RequestDelete issues (or re-issues) the confirmation ticket for a delete
func (s *budgetItemServiceImpl) RequestDelete(ctx context.Context, actor Actor, eventID, itemID int64) (*DeleteTicket, error) {
	if err := s.auth.require(actor, "delete budget item", "budget edit", canEditBudget); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, eventID, itemID); err != nil {
		return nil, err
	}

	ticket := s.deletions.Request(eventID, itemID, actor.UserID)
	s.logger.Info("Budget item delete requested", "id", itemID, "event_id", eventID, "actor", actor.UserID, "expires_at", ticket.ExpiresAt)
	return &ticket, nil
}

// ConfirmDelete hard-deletes the item when token matches a live ticket
func (s *budgetItemServiceImpl) ConfirmDelete(ctx context.Context, actor Actor, eventID, itemID int64, token string) error {
	if err := s.auth.require(actor, "delete budget item", "budget edit", canEditBudget); err != nil {
		return err
	}

	if _, err := s.Get(ctx, eventID, itemID); err != nil {
		if IsNotFound(err) {
			s.deletions.Discard(itemID)
		}
		return err
	}

	if !s.deletions.Validate(eventID, itemID, token) {
		verr := &ValidationError{}
		verr.Add("token", "delete confirmation is missing, invalid or expired")
		return verr
	}

	deleted, err := s.itemRepo.Delete(ctx, itemID)
	if err != nil {
		s.logger.Error("Failed to delete budget item", "error", err, "id", itemID)
		return fmt.Errorf("delete budget item: %w", err)
	}
	s.deletions.Discard(itemID)
	if !deleted {
		return &NotFoundError{Resource: "budget item", ID: itemID}
	}

	s.logger.Info("Budget item deleted", "id", itemID, "event_id", eventID, "actor", actor.UserID)
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeBudgetItemDeleted, eventID, itemID, actor.UserID, nil))

	return nil
}

// Get loads an item and checks it belongs to the event
func (s *budgetItemServiceImpl) Get(ctx context.Context, eventID, itemID int64) (*entity.BudgetLineItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		s.logger.Error("Failed to get budget item", "error", err, "id", itemID)
		return nil, fmt.Errorf("get budget item: %w", err)
	}
	if item == nil || item.EventID != eventID {
		return nil, &NotFoundError{Resource: "budget item", ID: itemID}
	}
	return item, nil
}

// ListByEvent returns the event's items in creation order
func (s *budgetItemServiceImpl) ListByEvent(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	items, err := s.itemRepo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to list budget items", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	return items, nil
}

func (s *budgetItemServiceImpl) requireEvent(ctx context.Context, eventID int64) error {
	return lookupEvent(ctx, s.eventRepo, eventID)
}

func lookupEvent(ctx context.Context, repo port.EventRepository, eventID int64) error {
	evt, err := repo.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if evt == nil {
		return &NotFoundError{Resource: "event", ID: eventID}
	}
	return nil
}

func trimmed(s string) string {
	v, _ := optionalText(&s)
	return v
}

func applyText(dst *string, value *string) {
	if v, ok := optionalText(value); ok {
		*dst = v
	}
}
