// Package contact keeps the beneficiary agendas used to fill batch items:
// check payees (tax id only) and transfer payees (tax id plus bank account code).
package contact

import (
	"context"
	"strings"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/checkdigit"
	"paybatch/internal/core/entity"
)

// Kind tags the contact variant.
type Kind string

const (
	KindCheck    Kind = "check"
	KindTransfer Kind = "transfer"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if k != KindCheck && k != KindTransfer {
		return "", apperror.NewValidation("unknown contact kind").
			WithDetail("field", "kind").
			WithDetail("value", s)
	}
	return k, nil
}

// Contact is a payee. AccountCode is set if, and only if, Kind is transfer.
type Contact struct {
	entity.Base

	Kind        Kind                       `db:"kind" json:"kind"`
	Name        string                     `db:"name" json:"name"`
	TaxID       checkdigit.TaxID           `db:"tax_id" json:"taxId"`
	AccountCode checkdigit.BankAccountCode `db:"account_code" json:"accountCode,omitzero"`
	Notes       string                     `db:"notes" json:"notes,omitempty"`
	Active      bool                       `db:"active" json:"active"`
}

// NewCheckContact validates the tax id and builds a check payee.
func NewCheckContact(name, taxID, notes string) (*Contact, error) {
	id, err := checkdigit.ValidateTaxID(taxID)
	if err != nil {
		return nil, err
	}
	c := &Contact{
		Base:   entity.NewBase(),
		Kind:   KindCheck,
		Name:   strings.TrimSpace(name),
		TaxID:  id,
		Notes:  strings.TrimSpace(notes),
		Active: true,
	}
	if err := c.Validate(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// NewTransferContact validates both identifiers and builds a transfer payee.
func NewTransferContact(name, taxID, accountCode, notes string) (*Contact, error) {
	id, err := checkdigit.ValidateTaxID(taxID)
	if err != nil {
		return nil, err
	}
	acc, err := checkdigit.ValidateBankAccountCode(accountCode)
	if err != nil {
		return nil, err
	}
	c := &Contact{
		Base:        entity.NewBase(),
		Kind:        KindTransfer,
		Name:        strings.TrimSpace(name),
		TaxID:       id,
		AccountCode: acc,
		Notes:       strings.TrimSpace(notes),
		Active:      true,
	}
	if err := c.Validate(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate implements entity.Validatable interface.
func (c *Contact) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.TaxID.IsZero() {
		return apperror.NewValidation("tax id is required").
			WithDetail("field", "taxId")
	}
	switch c.Kind {
	case KindCheck:
		if !c.AccountCode.IsZero() {
			return apperror.NewValidation("check contacts do not carry an account code").
				WithDetail("field", "accountCode")
		}
	case KindTransfer:
		if c.AccountCode.IsZero() {
			return apperror.NewValidation("transfer contacts require an account code").
				WithDetail("field", "accountCode")
		}
	default:
		return apperror.NewValidation("unknown contact kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}
	return nil
}
