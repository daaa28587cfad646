package checkdigit

import (
	"database/sql/driver"
	"fmt"

	"paybatch/internal/core/apperror"
)

// BankAccountCode is a validated 22-digit CBU in canonical form.
// The zero value means "absent".
type BankAccountCode struct {
	digits string
}

// ValidateBankAccountCode checks shape and both block check digits.
//
// Block 1 (digits 0..7) holds bank and branch, block 2 (digits 8..21) the account.
// Each block ends with its own check digit.
func ValidateBankAccountCode(raw string) (BankAccountCode, error) {
	s := clean(raw)
	if len(s) != AccountCodeLength || !allDigits(s) {
		return BankAccountCode{}, apperror.NewFormat("account_code", "account code must have exactly 22 digits", raw).
			WithDetail("expected_length", AccountCodeLength)
	}

	if expected, got := mod10CheckDigit(s[0:7], accountBlock1Weights[:]), int(s[7]-'0'); expected != got {
		return BankAccountCode{}, apperror.NewChecksum("account_code", raw, expected, got).WithDetail("block", 1)
	}
	if expected, got := mod10CheckDigit(s[8:21], accountBlock2Weights[:]), int(s[21]-'0'); expected != got {
		return BankAccountCode{}, apperror.NewChecksum("account_code", raw, expected, got).WithDetail("block", 2)
	}
	return BankAccountCode{digits: s}, nil
}

// MustBankAccountCode validates raw and panics on failure. Use only for constants and tests.
func MustBankAccountCode(raw string) BankAccountCode {
	c, err := ValidateBankAccountCode(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c BankAccountCode) String() string { return c.digits }

// Formatted returns XXX XXXX X XXXXXXXXXXXXX X.
func (c BankAccountCode) Formatted() string { return FormatAccountCode(c.digits) }

func (c BankAccountCode) IsZero() bool { return c.digits == "" }

// BankCode returns the three-digit bank identifier.
func (c BankAccountCode) BankCode() string {
	if c.IsZero() {
		return ""
	}
	return c.digits[:3]
}

func (c BankAccountCode) MarshalText() ([]byte, error) {
	return []byte(c.digits), nil
}

func (c *BankAccountCode) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = BankAccountCode{}
		return nil
	}
	v, err := ValidateBankAccountCode(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c BankAccountCode) Value() (driver.Value, error) {
	if c.IsZero() {
		return nil, nil
	}
	return c.digits, nil
}

func (c *BankAccountCode) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = BankAccountCode{}
		return nil
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	}
	return fmt.Errorf("checkdigit: cannot scan %T into BankAccountCode", src)
}

// FormatAccountCode renders 22 digits as XXX XXXX X XXXXXXXXXXXXX X.
func FormatAccountCode(s string) string {
	s = clean(s)
	if len(s) != AccountCodeLength {
		return s
	}
	return s[0:3] + " " + s[3:7] + " " + s[7:8] + " " + s[8:21] + " " + s[21:]
}
