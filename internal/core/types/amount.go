// Package types provides common value types shared by the domain packages.
package types

import (
	"strings"

	"github.com/shopspring/decimal"

	"paybatch/internal/core/apperror"
)

// Amount is a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Amount = decimal.Decimal

// MaxAmount is the largest amount a single payment line may carry.
var MaxAmount = decimal.RequireFromString("999999999.99")

// AmountScale is the number of fractional digits an amount may carry.
const AmountScale = 2

// ParseAmount parses a user-entered amount. Both "." and "," are accepted
// as decimal separator; thousands separators are not.
func ParseAmount(raw string) (Amount, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, apperror.NewFormat("amount", "amount is required", raw)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewFormat("amount", "amount is not a decimal number", raw).WithCause(err)
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckAmount enforces the payment amount contract on an already decoded value.
func CheckAmount(d Amount) error {
	if !d.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").
			WithDetail("value", d.String())
	}
	if d.GreaterThan(MaxAmount) {
		return apperror.NewValidation("amount exceeds the maximum allowed").
			WithDetail("value", d.String()).
			WithDetail("max", MaxAmount.String())
	}
	if !d.Equal(d.Truncate(AmountScale)) {
		return apperror.NewValidation("amount may have at most 2 decimal places").
			WithDetail("value", d.String())
	}
	return nil
}

// MustAmount creates an Amount from a string, panics on error.
// Use only for constants and tests.
func MustAmount(s string) Amount {
	return decimal.RequireFromString(s)
}

// SumAmounts adds amounts starting from zero.
func SumAmounts(amounts ...Amount) Amount {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
