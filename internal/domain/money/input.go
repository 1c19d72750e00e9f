// Package money turns the loosely typed cost values that arrive from forms,
// JSON payloads and the database into definite decimal amounts.
package money

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// NumericInput is a cost value as it was received, before normalization.
// The set of variants is closed: Number, Text, Decimal and Absent.
type NumericInput interface {
	isNumericInput()
}

// Number is an already numeric amount (JSON numbers, literals in code)
type Number float64

// Text is an amount typed by a user or read from a form field
type Text string

// Decimal is an amount read from the persistence layer
type Decimal struct {
	Value decimal.Decimal
}

// Absent marks an optional amount that was not provided
type Absent struct{}

func (Number) isNumericInput()  {}
func (Text) isNumericInput()    {}
func (Decimal) isNumericInput() {}
func (Absent) isNumericInput()  {}

// FromDecimal wraps a decimal value
func FromDecimal(d decimal.Decimal) NumericInput {
	return Decimal{Value: d}
}

// FromNullDecimal converts an optional persisted value, mapping NULL to Absent
func FromNullDecimal(d decimal.NullDecimal) NumericInput {
	if !d.Valid {
		return Absent{}
	}
	return Decimal{Value: d.Decimal}
}

// FromAny builds a NumericInput from a decoded JSON or form value.
// Unsupported types become Absent so that they normalize to zero.
func FromAny(v interface{}) NumericInput {
	switch t := v.(type) {
	case nil:
		return Absent{}
	case NumericInput:
		return t
	case float64:
		return Number(t)
	case float32:
		return Number(t)
	case int:
		return Number(t)
	case int64:
		return Number(t)
	case string:
		return Text(t)
	case []byte:
		return Text(t)
	case decimal.Decimal:
		return Decimal{Value: t}
	case *decimal.Decimal:
		if t == nil {
			return Absent{}
		}
		return Decimal{Value: *t}
	case decimal.NullDecimal:
		return FromNullDecimal(t)
	case fmt.Stringer:
		return Text(t.String())
	default:
		return Absent{}
	}
}

// String renders the raw input for logs and error messages
func String(in NumericInput) string {
	switch v := in.(type) {
	case Number:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Text:
		return string(v)
	case Decimal:
		return v.Value.String()
	default:
		return ""
	}
}
