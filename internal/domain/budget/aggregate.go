package budget

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Line is a single costed entry fed into the aggregation functions
type Line struct {
	Category  entity.Category
	Allocated money.NumericInput
	Spent     money.NumericInput
}

// Totals is the overall view over a set of lines
type Totals struct {
	TotalAllocated  decimal.Decimal `json:"total_allocated"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	PercentageSpent float64         `json:"percentage_spent"`
}

// CategoryTotal holds the sums for one category
type CategoryTotal struct {
	Category  entity.Category `json:"category"`
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
}

// Variance returns allocated minus spent for the category
func (c CategoryTotal) Variance() decimal.Decimal {
	return c.Allocated.Sub(c.Spent)
}

// CategoryTotals is ordered by the first appearance of each category
type CategoryTotals []CategoryTotal

// Get looks up the totals for a category
func (ct CategoryTotals) Get(c entity.Category) (CategoryTotal, bool) {
	for _, t := range ct {
		if t.Category == c {
			return t, true
		}
	}
	return CategoryTotal{}, false
}

// IsEmpty reports whether there is no breakdown to display
func (ct CategoryTotals) IsEmpty() bool {
	return len(ct) == 0
}

// CalculateBudgetTotals sums allocated and spent amounts across all lines.
// PercentageSpent is zero when nothing is allocated and otherwise is not
// capped or rounded (see the package documentation).
func CalculateBudgetTotals(lines []Line) Totals {
	allocated := decimal.Zero
	spent := decimal.Zero
	for _, l := range lines {
		allocated = allocated.Add(money.Normalize(l.Allocated))
		spent = spent.Add(money.Normalize(l.Spent))
	}

	totals := Totals{
		TotalAllocated: allocated,
		TotalSpent:     spent,
		Remaining:      allocated.Sub(spent),
	}
	if allocated.IsPositive() {
		totals.PercentageSpent = spent.Div(allocated).Mul(hundred).InexactFloat64()
	}
	return totals
}

// CalculateCategoryTotals groups lines by category. Lines without a category
// are skipped.
func CalculateCategoryTotals(lines []Line) CategoryTotals {
	result := CategoryTotals{}
	index := make(map[entity.Category]int)

	for _, l := range lines {
		if l.Category == "" {
			continue
		}
		i, ok := index[l.Category]
		if !ok {
			i = len(result)
			index[l.Category] = i
			result = append(result, CategoryTotal{
				Category:  l.Category,
				Allocated: decimal.Zero,
				Spent:     decimal.Zero,
			})
		}
		result[i].Allocated = result[i].Allocated.Add(money.Normalize(l.Allocated))
		result[i].Spent = result[i].Spent.Add(money.Normalize(l.Spent))
	}

	return result
}

// CalculateEventProgress is the progress-bar percentage for one event:
// rounded to the nearest integer and never above 100.
func CalculateEventProgress(budget, spent decimal.Decimal) int {
	if !budget.IsPositive() {
		return 0
	}
	pct := spent.Div(budget).Mul(hundred).InexactFloat64()
	return int(math.Round(math.Min(100, pct)))
}

// LinesFromBudgetItems maps line items to estimated (allocated) and actual (spent) costs
func LinesFromBudgetItems(items []*entity.BudgetLineItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		lines = append(lines, Line{
			Category:  item.Category,
			Allocated: money.FromNullDecimal(item.EstimatedCost),
			Spent:     money.FromNullDecimal(item.ActualCost),
		})
	}
	return lines
}

// LinesFromExpenses counts every expense as allocated and only approved
// expenses as spent
func LinesFromExpenses(expenses []*entity.Expense) []Line {
	lines := make([]Line, 0, len(expenses))
	for _, e := range expenses {
		if e == nil {
			continue
		}
		var spent money.NumericInput = money.Absent{}
		if e.Status == entity.StatusApproved {
			spent = money.FromDecimal(e.Amount)
		}
		lines = append(lines, Line{
			Category:  e.Category,
			Allocated: money.FromDecimal(e.Amount),
			Spent:     spent,
		})
	}
	return lines
}
