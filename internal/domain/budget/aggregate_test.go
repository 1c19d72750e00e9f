package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestCalculateBudgetTotals(t *testing.T) {
	t.Run("absent costs give zero totals", func(t *testing.T) {
		totals := CalculateBudgetTotals([]Line{
			{Category: entity.CategoryVenue, Allocated: money.Absent{}, Spent: money.Absent{}},
			{Category: entity.CategoryCatering},
		})

		assertDecimal(t, "0", totals.TotalAllocated)
		assertDecimal(t, "0", totals.TotalSpent)
		assertDecimal(t, "0", totals.Remaining)
		assert.Equal(t, 0.0, totals.PercentageSpent)
	})

	t.Run("empty input", func(t *testing.T) {
		totals := CalculateBudgetTotals(nil)
		assertDecimal(t, "0", totals.TotalAllocated)
		assert.Equal(t, 0.0, totals.PercentageSpent)
	})

	t.Run("mixed input representations", func(t *testing.T) {
		totals := CalculateBudgetTotals([]Line{
			{Allocated: money.Text("100.50"), Spent: money.Number(40)},
			{Allocated: money.FromDecimal(dec("99.50")), Spent: money.Text("abc")},
		})

		assertDecimal(t, "200", totals.TotalAllocated)
		assertDecimal(t, "40", totals.TotalSpent)
		assertDecimal(t, "160", totals.Remaining)
		assert.InDelta(t, 20.0, totals.PercentageSpent, 1e-9)
	})

	t.Run("percentage is not capped", func(t *testing.T) {
		totals := CalculateBudgetTotals([]Line{
			{Allocated: money.Number(100), Spent: money.Number(150)},
		})

		assert.Equal(t, 150.0, totals.PercentageSpent)
		assertDecimal(t, "-50", totals.Remaining)
	})

	t.Run("zero allocation gives zero percentage", func(t *testing.T) {
		totals := CalculateBudgetTotals([]Line{
			{Allocated: money.Number(0), Spent: money.Number(25)},
		})

		assert.Equal(t, 0.0, totals.PercentageSpent)
		assertDecimal(t, "-25", totals.Remaining)
	})

	t.Run("remaining is exact", func(t *testing.T) {
		totals := CalculateBudgetTotals([]Line{
			{Allocated: money.Text("0.1"), Spent: money.Text("0.3")},
			{Allocated: money.Text("0.2")},
		})

		assertDecimal(t, "0.3", totals.TotalAllocated)
		assertDecimal(t, "0", totals.Remaining)
	})
}

func TestCalculateCategoryTotals(t *testing.T) {
	t.Run("groups in first-seen order", func(t *testing.T) {
		result := CalculateCategoryTotals([]Line{
			{Category: entity.CategoryVenue, Allocated: money.Number(100), Spent: money.Number(80)},
			{Category: entity.CategoryVenue, Allocated: money.Number(50), Spent: money.Number(60)},
			{Category: entity.CategoryCatering, Allocated: money.Number(200), Spent: money.Number(150)},
		})

		require.Len(t, result, 2)
		assert.Equal(t, entity.CategoryVenue, result[0].Category)
		assert.Equal(t, entity.CategoryCatering, result[1].Category)

		venue, ok := result.Get(entity.CategoryVenue)
		require.True(t, ok)
		assertDecimal(t, "150", venue.Allocated)
		assertDecimal(t, "140", venue.Spent)
		assertDecimal(t, "10", venue.Variance())

		catering, ok := result.Get(entity.CategoryCatering)
		require.True(t, ok)
		assertDecimal(t, "200", catering.Allocated)
		assertDecimal(t, "150", catering.Spent)
	})

	t.Run("order follows input not enumeration", func(t *testing.T) {
		result := CalculateCategoryTotals([]Line{
			{Category: entity.CategoryMiscellaneous, Allocated: money.Number(1)},
			{Category: entity.CategoryVenue, Allocated: money.Number(1)},
			{Category: entity.CategoryMiscellaneous, Allocated: money.Number(1)},
		})

		require.Len(t, result, 2)
		assert.Equal(t, entity.CategoryMiscellaneous, result[0].Category)
		assert.Equal(t, entity.CategoryVenue, result[1].Category)
	})

	t.Run("empty input yields empty breakdown", func(t *testing.T) {
		result := CalculateCategoryTotals(nil)
		assert.True(t, result.IsEmpty())
		_, ok := result.Get(entity.CategoryVenue)
		assert.False(t, ok)
	})

	t.Run("lines without category are skipped", func(t *testing.T) {
		result := CalculateCategoryTotals([]Line{
			{Allocated: money.Number(10)},
			{Category: entity.CategoryLogistics, Allocated: money.Number(5)},
		})

		require.Len(t, result, 1)
		assertDecimal(t, "5", result[0].Allocated)
	})
}

func TestGetBudgetStatus(t *testing.T) {
	tests := []struct {
		percentage float64
		want       Tier
	}{
		{0, TierOnTrack},
		{75, TierOnTrack},
		{75.01, TierAtRisk},
		{90, TierAtRisk},
		{90.01, TierOverBudget},
		{150, TierOverBudget},
		{-10, TierOnTrack},
	}

	for _, tt := range tests {
		got := GetBudgetStatus(tt.percentage)
		assert.Equal(t, tt.want, got.Tier, "percentage %v", tt.percentage)
		assert.NotEmpty(t, got.Tone)
	}
}

func TestCalculateEventProgress(t *testing.T) {
	tests := []struct {
		name   string
		budget string
		spent  string
		want   int
	}{
		{"zero budget", "0", "50", 0},
		{"negative budget", "-10", "5", 0},
		{"nothing spent", "1000", "0", 0},
		{"rounds half up", "200", "1", 1},
		{"rounds down", "300", "1", 0},
		{"two thirds", "3", "2", 67},
		{"exactly full", "100", "100", 100},
		{"capped at 100", "100", "150", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateEventProgress(dec(tt.budget), dec(tt.spent)))
		})
	}
}

func TestEventProgressAndPercentageSpentDiffer(t *testing.T) {
	lines := []Line{{Allocated: money.Number(100), Spent: money.Number(150)}}
	totals := CalculateBudgetTotals(lines)

	assert.Equal(t, 150.0, totals.PercentageSpent)
	assert.Equal(t, 100, CalculateEventProgress(totals.TotalAllocated, totals.TotalSpent))
}

func TestLinesFromBudgetItems(t *testing.T) {
	items := []*entity.BudgetLineItem{
		{Category: entity.CategoryVenue, EstimatedCost: decimal.NewNullDecimal(dec("100")), ActualCost: decimal.NewNullDecimal(dec("80"))},
		nil,
		{Category: entity.CategoryCatering, EstimatedCost: decimal.NewNullDecimal(dec("20"))},
	}

	lines := LinesFromBudgetItems(items)
	require.Len(t, lines, 2)

	totals := CalculateBudgetTotals(lines)
	assertDecimal(t, "120", totals.TotalAllocated)
	assertDecimal(t, "80", totals.TotalSpent)
}

func TestLinesFromExpenses(t *testing.T) {
	expenses := []*entity.Expense{
		{Category: entity.CategoryVenue, Amount: dec("100"), Status: entity.StatusApproved},
		{Category: entity.CategoryVenue, Amount: dec("40"), Status: entity.StatusPending},
		{Category: entity.CategoryCatering, Amount: dec("60"), Status: entity.StatusRejected},
	}

	totals := CalculateBudgetTotals(LinesFromExpenses(expenses))
	assertDecimal(t, "200", totals.TotalAllocated)
	assertDecimal(t, "100", totals.TotalSpent)
	assert.Equal(t, 50.0, totals.PercentageSpent)
}
