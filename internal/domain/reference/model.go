// Package reference provides the payment references batches are filed under.
// A reference code is five upper-case letters followed by seven digits,
// e.g. LABSE0000118.
package reference

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
)

var (
	codeRE   = regexp.MustCompile(`^[A-Z]{5}[0-9]{7}$`)
	prefixRE = regexp.MustCompile(`^[A-Z]{5}$`)
)

const (
	CodeLength   = 12
	PrefixLength = 5
	SerialDigits = 7
	maxSerial    = 9_999_999
)

// Reference groups payment batches under an external code.
type Reference struct {
	entity.Base

	Code        string `db:"code" json:"code"`
	Description string `db:"description" json:"description"`
	Active      bool   `db:"active" json:"active"`
}

// ValidateCode normalizes raw (trim, upper-case) and checks the format.
func ValidateCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !codeRE.MatchString(code) {
		return "", apperror.NewFormat("code", "reference code must be 5 letters followed by 7 digits", raw).
			WithDetail("example", "LABSE0000118")
	}
	return code, nil
}

// ValidatePrefix normalizes and checks a 5-letter code prefix.
func ValidatePrefix(raw string) (string, error) {
	prefix := strings.ToUpper(strings.TrimSpace(raw))
	if !prefixRE.MatchString(prefix) {
		return "", apperror.NewFormat("prefix", "reference prefix must be 5 letters", raw)
	}
	return prefix, nil
}

// NextCodeAfter returns the code following last under prefix. An empty last
// starts the series at 1.
func NextCodeAfter(prefix, last string) (string, error) {
	serial := 0
	if last != "" {
		if len(last) != CodeLength {
			return "", fmt.Errorf("malformed reference code %q", last)
		}
		n, err := strconv.Atoi(last[PrefixLength:])
		if err != nil {
			return "", fmt.Errorf("parse reference serial %q: %w", last, err)
		}
		serial = n
	}
	if serial >= maxSerial {
		return "", apperror.NewValidation("reference serial space exhausted").
			WithDetail("prefix", prefix)
	}
	return fmt.Sprintf("%s%0*d", prefix, SerialDigits, serial+1), nil
}

// Validate implements entity.Validatable interface.
func (r *Reference) Validate(ctx context.Context) error {
	if _, err := ValidateCode(r.Code); err != nil {
		return err
	}
	if len(r.Description) > 255 {
		return apperror.NewValidation("description is too long").
			WithDetail("field", "description").
			WithDetail("max", 255)
	}
	return nil
}
