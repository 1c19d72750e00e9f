// Package budget holds the budget arithmetic: variance, totals, category
// breakdowns and status tiers.
//
// Two percentage functions live here on purpose and must not be merged:
//
//   - CalculateBudgetTotals reports PercentageSpent uncapped and unrounded.
//     Aggregate summaries rely on values above 100 to show overspend.
//   - CalculateEventProgress is rounded to a whole number and capped at 100.
//     Single-event progress bars rely on the bounded value.
package budget
