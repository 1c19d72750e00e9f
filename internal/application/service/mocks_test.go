package service

import (
	"context"
	"sync"
	"time"

	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/event"
	"github.com/garyjia/event-finance/internal/domain/permission"
)

// Mock repositories
type mockEventRepo struct {
	createFunc       func(ctx context.Context, evt *entity.Event) error
	getByIDFunc      func(ctx context.Context, id int64) (*entity.Event, error)
	listFunc         func(ctx context.Context, limit, offset int) ([]*entity.Event, error)
	updateStatusFunc func(ctx context.Context, id int64, status entity.EventStatus, at time.Time) error
}

func (m *mockEventRepo) Create(ctx context.Context, evt *entity.Event) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, evt)
	}
	evt.ID = 1
	return nil
}

func (m *mockEventRepo) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Event{ID: id, Name: "Launch", Status: entity.EventStatusPlanning}, nil
}

func (m *mockEventRepo) List(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return []*entity.Event{}, nil
}

func (m *mockEventRepo) UpdateStatus(ctx context.Context, id int64, status entity.EventStatus, at time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, at)
	}
	return nil
}

type mockBudgetItemRepo struct {
	createFunc      func(ctx context.Context, item *entity.BudgetLineItem) error
	getByIDFunc     func(ctx context.Context, id int64) (*entity.BudgetLineItem, error)
	listByEventFunc func(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error)
	updateFunc      func(ctx context.Context, item *entity.BudgetLineItem) error
	deleteFunc      func(ctx context.Context, id int64) (bool, error)
}

func (m *mockBudgetItemRepo) Create(ctx context.Context, item *entity.BudgetLineItem) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, item)
	}
	item.ID = 10
	return nil
}

func (m *mockBudgetItemRepo) GetByID(ctx context.Context, id int64) (*entity.BudgetLineItem, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockBudgetItemRepo) ListByEvent(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error) {
	if m.listByEventFunc != nil {
		return m.listByEventFunc(ctx, eventID)
	}
	return []*entity.BudgetLineItem{}, nil
}

func (m *mockBudgetItemRepo) Update(ctx context.Context, item *entity.BudgetLineItem) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, item)
	}
	return nil
}

func (m *mockBudgetItemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return true, nil
}

type mockExpenseRepo struct {
	createFunc           func(ctx context.Context, expense *entity.Expense) error
	getByIDFunc          func(ctx context.Context, id int64) (*entity.Expense, error)
	listByEventFunc      func(ctx context.Context, eventID int64) ([]*entity.Expense, error)
	updateFunc           func(ctx context.Context, expense *entity.Expense) error
	transitionStatusFunc func(ctx context.Context, id int64, from, to entity.Status, at time.Time) (bool, error)
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, expense)
	}
	expense.ID = 20
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockExpenseRepo) ListByEvent(ctx context.Context, eventID int64) ([]*entity.Expense, error) {
	if m.listByEventFunc != nil {
		return m.listByEventFunc(ctx, eventID)
	}
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) Update(ctx context.Context, expense *entity.Expense) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, expense)
	}
	return nil
}

func (m *mockExpenseRepo) TransitionStatus(ctx context.Context, id int64, from, to entity.Status, at time.Time) (bool, error) {
	if m.transitionStatusFunc != nil {
		return m.transitionStatusFunc(ctx, id, from, to, at)
	}
	return true, nil
}

type mockWorkflowRepo struct {
	appended          []*entity.WorkflowEntry
	appendFunc        func(ctx context.Context, entry *entity.WorkflowEntry) error
	listByExpenseFunc func(ctx context.Context, expenseID int64) ([]*entity.WorkflowEntry, error)
}

func (m *mockWorkflowRepo) Append(ctx context.Context, entry *entity.WorkflowEntry) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, entry)
	}
	m.appended = append(m.appended, entry)
	return nil
}

func (m *mockWorkflowRepo) ListByExpense(ctx context.Context, expenseID int64) ([]*entity.WorkflowEntry, error) {
	if m.listByExpenseFunc != nil {
		return m.listByExpenseFunc(ctx, expenseID)
	}
	return m.appended, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
}

func (m *mockDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
}

func (m *mockDispatcher) types() []event.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Type, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestAuthorizer() *Authorizer {
	return NewAuthorizer(permission.DefaultPolicy(), false)
}

func strPtr(s string) *string {
	return &s
}
