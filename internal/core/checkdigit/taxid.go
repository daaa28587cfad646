package checkdigit

import (
	"database/sql/driver"
	"fmt"
	"slices"

	"paybatch/internal/core/apperror"
)

// TaxID is a validated 11-digit tax identifier in canonical (separator-free) form.
// The zero value means "absent".
type TaxID struct {
	digits string
}

// ValidateTaxID checks shape, prefix and check digit, returning the canonical value.
func ValidateTaxID(raw string) (TaxID, error) {
	s := clean(raw)
	if len(s) != TaxIDLength || !allDigits(s) {
		return TaxID{}, apperror.NewFormat("tax_id", "tax id must have exactly 11 digits", raw).
			WithDetail("expected_length", TaxIDLength)
	}
	if !slices.Contains(ValidTaxIDPrefixes, s[:2]) {
		return TaxID{}, apperror.NewFormat("tax_id", fmt.Sprintf("tax id prefix %s is not valid", s[:2]), raw).
			WithDetail("valid_prefixes", ValidTaxIDPrefixes)
	}

	expected := taxIDCheckDigit(s)
	got := int(s[10] - '0')
	if got != expected {
		return TaxID{}, apperror.NewChecksum("tax_id", raw, expected, got)
	}
	return TaxID{digits: s}, nil
}

// MustTaxID validates raw and panics on failure. Use only for constants and tests.
func MustTaxID(raw string) TaxID {
	id, err := ValidateTaxID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical 11 digits.
func (t TaxID) String() string { return t.digits }

// Formatted returns XX-XXXXXXXX-X.
func (t TaxID) Formatted() string { return FormatTaxID(t.digits) }

// IsZero reports whether the value is absent.
func (t TaxID) IsZero() bool { return t.digits == "" }

// Prefix returns the two-digit kind prefix.
func (t TaxID) Prefix() string {
	if t.IsZero() {
		return ""
	}
	return t.digits[:2]
}

// MarshalText implements encoding.TextMarshaler.
func (t TaxID) MarshalText() ([]byte, error) {
	return []byte(t.digits), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input yields the zero value.
func (t *TaxID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*t = TaxID{}
		return nil
	}
	v, err := ValidateTaxID(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value implements driver.Valuer.
func (t TaxID) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.digits, nil
}

// Scan implements sql.Scanner.
func (t *TaxID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = TaxID{}
		return nil
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	}
	return fmt.Errorf("checkdigit: cannot scan %T into TaxID", src)
}

// FormatTaxID renders 11 digits as XX-XXXXXXXX-X. Other input is returned unchanged.
func FormatTaxID(s string) string {
	s = clean(s)
	if len(s) != TaxIDLength {
		return s
	}
	return s[:2] + "-" + s[2:10] + "-" + s[10:]
}
