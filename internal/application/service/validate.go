package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/garyjia/event-finance/internal/domain/entity"
	"github.com/garyjia/event-finance/internal/domain/money"
)

func requireText(verr *ValidationError, field, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		verr.Add(field, "must not be empty")
	}
	return trimmed
}

func parseCategory(verr *ValidationError, value string) entity.Category {
	c := entity.Category(strings.TrimSpace(value))
	if !c.IsValid() {
		verr.Add("category", "must be one of Venue, Catering, Marketing, Logistics, Entertainment, StaffTravel, Miscellaneous")
	}
	return c
}

// parseCost validates an optional non-negative cost. Absent input yields
// an invalid NullDecimal, which is stored as NULL.
func parseCost(verr *ValidationError, field string, in money.NumericInput) decimal.NullDecimal {
	if !money.IsProvided(in) {
		return decimal.NullDecimal{}
	}
	d, err := money.Parse(in)
	if err != nil {
		verr.Add(field, "must be a number")
		return decimal.NullDecimal{}
	}
	if d.IsNegative() {
		verr.Add(field, "must not be negative")
	}
	return decimal.NewNullDecimal(d)
}

// parseAmount validates a required positive amount
func parseAmount(verr *ValidationError, field string, in money.NumericInput) decimal.Decimal {
	if !money.IsProvided(in) {
		verr.Add(field, "is required")
		return decimal.Zero
	}
	d, err := money.Parse(in)
	if err != nil {
		verr.Add(field, "must be a number")
		return decimal.Zero
	}
	if !d.IsPositive() {
		verr.Add(field, "must be greater than zero")
	}
	return d
}

func optionalText(value *string) (string, bool) {
	if value == nil {
		return "", false
	}
	return strings.TrimSpace(*value), true
}
