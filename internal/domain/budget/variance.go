package budget

import (
	"github.com/shopspring/decimal"

	"github.com/garyjia/event-finance/internal/domain/money"
)

// VarianceLabel describes which side of the estimate the actual cost landed on
type VarianceLabel string

const (
	VarianceUnder VarianceLabel = "under"
	VarianceOver  VarianceLabel = "over"
)

// VarianceDisplay is the human-facing form of a variance
type VarianceDisplay struct {
	Amount decimal.Decimal `json:"amount"`
	Label  VarianceLabel   `json:"label"`
}

// Variance returns estimated minus actual. Positive means under budget.
func Variance(estimated, actual money.NumericInput) decimal.Decimal {
	return money.Normalize(estimated).Sub(money.Normalize(actual))
}

// DescribeVariance converts a signed variance into an absolute amount and label.
// Zero is reported as "under".
func DescribeVariance(v decimal.Decimal) VarianceDisplay {
	label := VarianceUnder
	if v.IsNegative() {
		label = VarianceOver
	}
	return VarianceDisplay{
		Amount: v.Abs(),
		Label:  label,
	}
}
