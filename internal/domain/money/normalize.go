package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotNumeric is returned by Parse for values that carry no usable amount
var ErrNotNumeric = errors.New("not a numeric amount")

// Parse is the strict form of Normalize used when validating user input.
// Absent values parse to zero without error.
func Parse(in NumericInput) (decimal.Decimal, error) {
	switch v := in.(type) {
	case Number:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, ErrNotNumeric
		}
		return decimal.NewFromFloat(f), nil
	case Text:
		s := strings.TrimSpace(string(v))
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, ErrNotNumeric
		}
		return d, nil
	case Decimal:
		return v.Value, nil
	default:
		return decimal.Zero, nil
	}
}

// Normalize returns a definite amount for any input. It never fails:
// absent values, unparsable text and non-finite numbers all become zero.
func Normalize(in NumericInput) decimal.Decimal {
	d, err := Parse(in)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeFloat is Normalize for display code that works in float64
func NormalizeFloat(in NumericInput) float64 {
	return Normalize(in).InexactFloat64()
}

// IsProvided reports whether the input carries a value at all
func IsProvided(in NumericInput) bool {
	switch v := in.(type) {
	case nil, Absent:
		return false
	case Text:
		return strings.TrimSpace(string(v)) != ""
	default:
		return true
	}
}
