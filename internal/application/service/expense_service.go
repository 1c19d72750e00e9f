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
	"github.com/garyjia/event-finance/internal/domain/workflow"
)

// CreateExpenseInput carries the fields of a new expense
type CreateExpenseInput struct {
	EventID     int64
	Category    string
	Title       string
	Amount      money.NumericInput
	Description string
	Vendor      string
}

// UpdateExpenseInput is a partial update. Nil fields are left alone.
type UpdateExpenseInput struct {
	Category    *string
	Title       *string
	Amount      money.NumericInput
	Description *string
	Vendor      *string
}

// ExpenseService manages expenses and their approval workflow
type ExpenseService interface {
	Create(ctx context.Context, actor Actor, in CreateExpenseInput) (*entity.Expense, error)
	Update(ctx context.Context, actor Actor, eventID, id int64, in UpdateExpenseInput) (*entity.Expense, error)
	Approve(ctx context.Context, actor Actor, eventID, id int64, comments string) (*entity.Expense, error)
	Reject(ctx context.Context, actor Actor, eventID, id int64, comments string) (*entity.Expense, error)
	Get(ctx context.Context, eventID, id int64) (*entity.Expense, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*entity.Expense, error)
	History(ctx context.Context, eventID, id int64) ([]*entity.WorkflowEntry, error)
}

type expenseServiceImpl struct {
	eventRepo    port.EventRepository
	expenseRepo  port.ExpenseRepository
	workflowRepo port.WorkflowRepository
	txManager    port.TransactionManager
	auth         *Authorizer
	dispatcher   EventDispatcher
	logger       Logger
	now          func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	eventRepo port.EventRepository,
	expenseRepo port.ExpenseRepository,
	workflowRepo port.WorkflowRepository,
	txManager port.TransactionManager,
	auth *Authorizer,
	dispatcher EventDispatcher,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		eventRepo:    eventRepo,
		expenseRepo:  expenseRepo,
		workflowRepo: workflowRepo,
		txManager:    txManager,
		auth:         auth,
		dispatcher:   dispatcher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create stores a new Pending expense
func (s *expenseServiceImpl) Create(ctx context.Context, actor Actor, in CreateExpenseInput) (*entity.Expense, error) {
	if err := s.auth.require(actor, "create expense", "budget edit", canEditBudget); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	category := parseCategory(verr, in.Category)
	title := requireText(verr, "title", in.Title)
	amount := parseAmount(verr, "amount", in.Amount)
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	if err := lookupEvent(ctx, s.eventRepo, in.EventID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expense := &entity.Expense{
		EventID:     in.EventID,
		Category:    category,
		Title:       title,
		Amount:      amount,
		Description: trimmed(in.Description),
		Vendor:      trimmed(in.Vendor),
		Status:      entity.StatusPending,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		s.logger.Error("Failed to create expense", "error", err, "event_id", in.EventID)
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.logger.Info("Expense created", "id", expense.ID, "event_id", in.EventID, "amount", expense.Amount.String(), "actor", actor.UserID)
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeExpenseCreated, in.EventID, expense.ID, actor.UserID, map[string]interface{}{
		"category": expense.Category.String(),
		"amount":   expense.Amount.String(),
	}))

	return expense, nil
}

// Update changes descriptive fields and the amount. Status is left as is,
// including for expenses that are already approved or rejected.
func (s *expenseServiceImpl) Update(ctx context.Context, actor Actor, eventID, id int64, in UpdateExpenseInput) (*entity.Expense, error) {
	if err := s.auth.require(actor, "update expense", "budget edit", canEditBudget); err != nil {
		return nil, err
	}

	expense, err := s.Get(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if in.Category != nil {
		expense.Category = parseCategory(verr, *in.Category)
	}
	if in.Title != nil {
		expense.Title = requireText(verr, "title", *in.Title)
	}
	if in.Amount != nil {
		expense.Amount = parseAmount(verr, "amount", in.Amount)
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	applyText(&expense.Description, in.Description)
	applyText(&expense.Vendor, in.Vendor)
	expense.UpdatedAt = s.now().UTC()

	if err := s.expenseRepo.Update(ctx, expense); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, &NotFoundError{Resource: "expense", ID: id}
		}
		s.logger.Error("Failed to update expense", "error", err, "id", id)
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.logger.Info("Expense updated", "id", id, "actor", actor.UserID)
	dispatch(ctx, s.dispatcher, event.NewEvent(event.TypeExpenseUpdated, expense.EventID, id, actor.UserID, nil))

	return expense, nil
}

// Approve moves a Pending expense to Approved and records the decision
func (s *expenseServiceImpl) Approve(ctx context.Context, actor Actor, eventID, id int64, comments string) (*entity.Expense, error) {
	return s.decide(ctx, actor, eventID, id, workflow.TriggerApprove, comments)
}

// Reject moves a Pending expense to Rejected and records the decision
func (s *expenseServiceImpl) Reject(ctx context.Context, actor Actor, eventID, id int64, comments string) (*entity.Expense, error) {
	return s.decide(ctx, actor, eventID, id, workflow.TriggerReject, comments)
}

func (s *expenseServiceImpl) decide(ctx context.Context, actor Actor, eventID, id int64, trigger workflow.Trigger, comments string) (*entity.Expense, error) {
	action := "approve expense"
	if trigger == workflow.TriggerReject {
		action = "reject expense"
	}
	if err := s.auth.require(actor, action, "approval", canApprove); err != nil {
		return nil, err
	}

	var expense *entity.Expense
	var entry *entity.WorkflowEntry

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.expenseRepo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("get expense: %w", err)
		}
		if current == nil || current.EventID != eventID {
			return &NotFoundError{Resource: "expense", ID: id}
		}

		transition, err := workflow.FireExpense(txCtx, workflow.State(current.Status), trigger)
		if err != nil {
			if errors.Is(err, workflow.ErrInvalidTransition) || errors.Is(err, workflow.ErrInvalidState) {
				return &ConflictError{Resource: "expense", ID: id, Reason: "expense is already " + current.Status.String(), Err: err}
			}
			return err
		}

		now := s.now().UTC()
		from := entity.Status(transition.From)
		to := entity.Status(transition.To)

		moved, err := s.expenseRepo.TransitionStatus(txCtx, id, from, to, now)
		if err != nil {
			return fmt.Errorf("transition expense status: %w", err)
		}
		if !moved {
			return &ConflictError{Resource: "expense", ID: id, Reason: "expense status changed concurrently"}
		}

		entry = &entity.WorkflowEntry{
			ExpenseID:      id,
			Approver:       actor.UserID,
			Action:         transition.Trigger.String(),
			PreviousStatus: from,
			NewStatus:      to,
			Comments:       comments,
			Timestamp:      now,
		}
		if err := s.workflowRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append workflow entry: %w", err)
		}

		current.Status = to
		current.UpdatedAt = now
		current.Workflow = append(current.Workflow, entry)
		expense = current
		return nil
	})
	if err != nil {
		if !IsNotFound(err) && !IsConflict(err) {
			s.logger.Error("Failed to record expense decision", "error", err, "id", id, "action", trigger)
		}
		return nil, err
	}

	s.logger.Info("Expense decision recorded", "id", id, "action", trigger, "status", expense.Status, "approver", actor.UserID)

	evtType := event.TypeExpenseApproved
	if trigger == workflow.TriggerReject {
		evtType = event.TypeExpenseRejected
	}
	dispatch(ctx, s.dispatcher, event.NewEvent(evtType, expense.EventID, id, actor.UserID, map[string]interface{}{
		"previous_status": entry.PreviousStatus.String(),
		"new_status":      entry.NewStatus.String(),
		"comments":        comments,
	}))

	return expense, nil
}

// Get loads an expense with its workflow trail. An expense that belongs to
// another event is reported as not found.
func (s *expenseServiceImpl) Get(ctx context.Context, eventID, id int64) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get expense", "error", err, "id", id)
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if expense == nil || expense.EventID != eventID {
		return nil, &NotFoundError{Resource: "expense", ID: id}
	}
	return expense, nil
}

// ListByEvent returns the event's expenses
func (s *expenseServiceImpl) ListByEvent(ctx context.Context, eventID int64) ([]*entity.Expense, error) {
	if err := lookupEvent(ctx, s.eventRepo, eventID); err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to list expenses", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// History returns the approval trail in the order it was recorded
func (s *expenseServiceImpl) History(ctx context.Context, eventID, id int64) ([]*entity.WorkflowEntry, error) {
	if _, err := s.Get(ctx, eventID, id); err != nil {
		return nil, err
	}
	entries, err := s.workflowRepo.ListByExpense(ctx, id)
	if err != nil {
		s.logger.Error("Failed to list workflow entries", "error", err, "expense_id", id)
		return nil, fmt.Errorf("list workflow entries: %w", err)
	}
	return entries, nil
}
