package service

import (
	"context"
	"fmt"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/budget"
	"github.com/garyjia/event-finance/internal/domain/entity"
)

// EventSummary is the dashboard view of one event.
//
// Budget.PercentageSpent is the uncapped ratio used for the status tier,
// while Progress is the rounded value capped at 100 used for progress bars.
// They are computed by different functions and can disagree.
type EventSummary struct {
	Event             *entity.Event            `json:"event"`
	Items             []*entity.BudgetLineItem `json:"items"`
	Budget            budget.Totals            `json:"budget"`
	BudgetStatus      budget.Status            `json:"budget_status"`
	Categories        budget.CategoryTotals    `json:"categories"`
	Expenses          budget.Totals            `json:"expenses"`
	ExpenseCategories budget.CategoryTotals    `json:"expense_categories"`
	Progress          int                      `json:"progress"`
}

// SummaryService builds read-only aggregates over an event
type SummaryService interface {
	EventSummary(ctx context.Context, eventID int64) (*EventSummary, error)
}

type summaryServiceImpl struct {
	eventRepo   port.EventRepository
	itemRepo    port.BudgetItemRepository
	expenseRepo port.ExpenseRepository
	logger      Logger
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	eventRepo port.EventRepository,
	itemRepo port.BudgetItemRepository,
	expenseRepo port.ExpenseRepository,
	logger Logger,
) SummaryService {
	return &summaryServiceImpl{
		eventRepo:   eventRepo,
		itemRepo:    itemRepo,
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

func (s *summaryServiceImpl) EventSummary(ctx context.Context, eventID int64) (*EventSummary, error) {
	evt, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to get event", "error", err, "id", eventID)
		return nil, fmt.Errorf("get event: %w", err)
	}
	if evt == nil {
		return nil, &NotFoundError{Resource: "event", ID: eventID}
	}

	items, err := s.itemRepo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to list budget items", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	expenses, err := s.expenseRepo.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("Failed to list expenses", "error", err, "event_id", eventID)
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	itemLines := budget.LinesFromBudgetItems(items)
	expenseLines := budget.LinesFromExpenses(expenses)

	summary := &EventSummary{
		Event:             evt,
		Items:             items,
		Budget:            budget.CalculateBudgetTotals(itemLines),
		Categories:        budget.CalculateCategoryTotals(itemLines),
		Expenses:          budget.CalculateBudgetTotals(expenseLines),
		ExpenseCategories: budget.CalculateCategoryTotals(expenseLines),
	}
	summary.BudgetStatus = budget.GetBudgetStatus(summary.Budget.PercentageSpent)
	summary.Progress = budget.CalculateEventProgress(evt.Budget, summary.Expenses.TotalSpent)

	return summary, nil
}
