package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/event-finance/internal/domain/entity"
)

// ErrNotFound is returned by repository writes that matched no row
var ErrNotFound = errors.New("record not found")

// EventRepository defines persistence operations for Event.
// GetByID returns nil, nil when the event does not exist.
type EventRepository interface {
	Create(ctx context.Context, evt *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Event, error)
	UpdateStatus(ctx context.Context, id int64, status entity.EventStatus, at time.Time) error
}

// BudgetItemRepository defines persistence operations for BudgetLineItem.
// Writes are last-write-wins; there is no version check.
type BudgetItemRepository interface {
	Create(ctx context.Context, item *entity.BudgetLineItem) error
	GetByID(ctx context.Context, id int64) (*entity.BudgetLineItem, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error)
	Update(ctx context.Context, item *entity.BudgetLineItem) error

	// Delete returns false when no row was removed
	Delete(ctx context.Context, id int64) (bool, error)
}

// ExpenseRepository defines persistence operations for Expense.
// Update returns ErrNotFound when the row is gone.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id int64) (*entity.Expense, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error

	// TransitionStatus moves the expense from one status to another only if it
	// is still in from. It returns false when the row was not in that status.
	TransitionStatus(ctx context.Context, id int64, from, to entity.Status, at time.Time) (bool, error)
}

// WorkflowRepository stores the append-only approval trail of expenses
type WorkflowRepository interface {
	Append(ctx context.Context, entry *entity.WorkflowEntry) error
	ListByExpense(ctx context.Context, expenseID int64) ([]*entity.WorkflowEntry, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
