package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of minor-unit digits stored for every amount.
const AmountScale = 2

// BalanceTolerance is one minor currency unit.
var BalanceTolerance = decimal.New(1, -AmountScale)

// MaxAmount is the largest value a NUMERIC(14,2) amount column holds.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// ParseAmount parses a decimal string strictly: empty, malformed, negative or
// over-precise input is an error, never zero.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError(field, "required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError(field, "must be a decimal number")
	}
	if err := ValidateAmount(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseOptionalAmount treats an empty string as zero.
func ParseOptionalAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return ParseAmount(field, s)
}

func ValidateAmount(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return NewValidationError(field, "must not be negative")
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return NewValidationError(field, "must have at most %d decimal places", AmountScale)
	}
	if d.GreaterThan(MaxAmount) {
		return NewValidationError(field, "must be at most %s", MaxAmount.StringFixed(AmountScale))
	}
	return nil
}
