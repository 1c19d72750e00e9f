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

// CreateEventInput carries the fields of a new event
type CreateEventInput struct {
	Name        string
	Description string
	Budget      money.NumericInput
	StartDate   *time.Time
	EndDate     *time.Time
}

// EventService manages the events budgets are attached to
type EventService interface {
	Create(ctx context.Context, actor Actor, in CreateEventInput) (*entity.Event, error)
	Get(ctx context.Context, id int64) (*entity.Event, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Event, error)
	UpdateStatus(ctx context.Context, actor Actor, id int64, status string) (*entity.Event, error)
}

type eventServiceImpl struct {
	eventRepo  port.EventRepository
	auth       *Authorizer
	dispatcher EventDispatcher
	logger     Logger
	now        func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo port.EventRepository, auth *Authorizer, dispatcher EventDispatcher, logger Logger) EventService {
	return &eventServiceImpl{
		eventRepo:  eventRepo,
		auth:       auth,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *eventServiceImpl) Create(ctx context.Context, actor Actor, in CreateEventInput) (*entity.Event, error) {
	if err := s.auth.require(actor, "create event", "full edit", canEditAll); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	name := requireText(verr, "name", in.Name)
	budget := parseCost(verr, "budget", in.Budget)
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		verr.Add("end_date", "must not be before start_date")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	evt := &entity.Event{
		Name:        name,
		Description: trimmed(in.Description),
		Budget:      budget.Decimal,
		Status:      entity.EventStatusPlanning,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.eventRepo.Create(ctx, evt); err != nil {
		s.logger.Error("Failed to create event", "error", err, "name", name)
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("Event created", "id", evt.ID, "name", evt.Name, "budget", evt.Budget.String())
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeEventCreated, evt.ID, evt.ID, actor.UserID, map[string]interface{}{
		"name":   evt.Name,
		"budget": evt.Budget.String(),
	}))

	return evt, nil
}

func (s *eventServiceImpl) Get(ctx context.Context, id int64) (*entity.Event, error) {
	evt, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get event", "error", err, "id", id)
		return nil, fmt.Errorf("get event: %w", err)
	}
	if evt == nil {
		return nil, &NotFoundError{Resource: "event", ID: id}
	}
	return evt, nil
}

func (s *eventServiceImpl) List(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	events, err := s.eventRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list events", "error", err)
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// UpdateStatus moves the event to another lifecycle status. Completed and
// Cancelled events cannot be reopened.
func (s *eventServiceImpl) UpdateStatus(ctx context.Context, actor Actor, id int64, status string) (*entity.Event, error) {
	if err := s.auth.require(actor, "change event status", "full edit", canEditAll); err != nil {
		return nil, err
	}

	next := entity.EventStatus(status)
	if !next.IsValid() {
		verr := &ValidationError{}
		verr.Add("status", "must be one of Planning, Active, Completed, Cancelled")
		return nil, verr
	}

	evt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if evt.Status == next {
		return evt, nil
	}
	if evt.Status == entity.EventStatusCompleted || evt.Status == entity.EventStatusCancelled {
		return nil, &ConflictError{Resource: "event", ID: id, Reason: "event is already " + string(evt.Status)}
	}

	now := s.now().UTC()
	if err := s.eventRepo.UpdateStatus(ctx, id, next, now); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, &NotFoundError{Resource: "event", ID: id}
		}
		s.logger.Error("Failed to update event status", "error", err, "id", id)
		return nil, fmt.Errorf("update event status: %w", err)
	}

	previous := evt.Status
	evt.Status = next
	evt.UpdatedAt = now

	s.logger.Info("Event status changed", "id", id, "from", previous, "to", next)
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeEventStatusChanged, id, id, actor.UserID, map[string]interface{}{
		"previous_status": string(previous),
		"new_status":      string(next),
	}))

	return evt, nil
}
