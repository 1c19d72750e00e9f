package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/event-finance/internal/domain/budget"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

func nd(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func TestSummaryService_EventSummary(t *testing.T) {
	eventRepo := &mockEventRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Event, error) {
			return &entity.Event{ID: id, Budget: decimal.NewFromInt(1000)}, nil
		},
	}
	itemRepo := &mockBudgetItemRepo{
		listByEventFunc: func(ctx context.Context, eventID int64) ([]*entity.BudgetLineItem, error) {
			return []*entity.BudgetLineItem{
				{Category: entity.CategoryVenue, EstimatedCost: nd(500), ActualCost: nd(450)},
				{Category: entity.CategoryCatering, EstimatedCost: nd(300)},
				{Category: entity.CategoryVenue, EstimatedCost: nd(200), ActualCost: nd(400)},
			}, nil
		},
	}
	expenseRepo := &mockExpenseRepo{
		listByEventFunc: func(ctx context.Context, eventID int64) ([]*entity.Expense, error) {
			return []*entity.Expense{
				{Category: entity.CategoryVenue, Amount: decimal.NewFromInt(1100), Status: entity.StatusApproved},
				{Category: entity.CategoryMarketing, Amount: decimal.NewFromInt(50), Status: entity.StatusPending},
			}, nil
		},
	}
	svc := NewSummaryService(eventRepo, itemRepo, expenseRepo, &mockLogger{})

	summary, err := svc.EventSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.True(t, summary.Budget.TotalAllocated.Equal(decimal.NewFromInt(1000)))
	assert.True(t, summary.Budget.TotalSpent.Equal(decimal.NewFromInt(850)))
	assert.InDelta(t, 85.0, summary.Budget.PercentageSpent, 1e-9)
	assert.Equal(t, budget.TierAtRisk, summary.BudgetStatus.Tier)

	require.Len(t, summary.Categories, 2)
	assert.Equal(t, entity.CategoryVenue, summary.Categories[0].Category)
	assert.Equal(t, entity.CategoryCatering, summary.Categories[1].Category)
	assert.True(t, summary.Categories[0].Variance().Equal(decimal.NewFromInt(-150)))

	assert.True(t, summary.Expenses.TotalSpent.Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, 100, summary.Progress, "progress is capped")
	require.Len(t, summary.ExpenseCategories, 2)
}

func TestSummaryService_MissingEvent(t *testing.T) {
	eventRepo := &mockEventRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Event, error) {
			return nil, nil
		},
	}
	svc := NewSummaryService(eventRepo, &mockBudgetItemRepo{}, &mockExpenseRepo{}, &mockLogger{})

	_, err := svc.EventSummary(context.Background(), 1)

	assert.True(t, IsNotFound(err))
}
