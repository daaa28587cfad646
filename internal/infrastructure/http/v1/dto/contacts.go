package dto

import (
	"paybatch/internal/core/checkdigit"
	"paybatch/internal/domain/contact"
)

// CreateContactRequest is the request body for a new payee.
type CreateContactRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=check transfer"`
	Name        string `json:"name" binding:"required,max=200"`
	TaxID       string `json:"taxId" binding:"required"`
	AccountCode string `json:"accountCode"`
	Notes       string `json:"notes" binding:"max=500"`
}

// ToInput converts the request to the service input.
func (r CreateContactRequest) ToInput() contact.CreateInput {
	return contact.CreateInput{
		Kind:        contact.Kind(r.Kind),
		Name:        r.Name,
		TaxID:       r.TaxID,
		AccountCode: r.AccountCode,
		Notes:       r.Notes,
	}
}

// UpdateContactRequest is the request body for editing a payee. The kind
// cannot change; AccountCode applies to transfer contacts only.
type UpdateContactRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	TaxID       string `json:"taxId" binding:"required"`
	AccountCode string `json:"accountCode"`
	Notes       string `json:"notes" binding:"max=500"`
}

// ToInput converts the request to the service input.
func (r UpdateContactRequest) ToInput() contact.UpdateInput {
	return contact.UpdateInput{
		Name:        r.Name,
		TaxID:       r.TaxID,
		AccountCode: r.AccountCode,
		Notes:       r.Notes,
	}
}

// ListContactsQuery filters contact listings.
type ListContactsQuery struct {
	Kind            string `form:"kind" binding:"omitempty,oneof=check transfer"`
	IncludeInactive bool   `form:"includeInactive"`
}

// ContactResponse is the response body for a contact.
type ContactResponse struct {
	ID                   string `json:"id"`
	Kind                 string `json:"kind"`
	Name                 string `json:"name"`
	TaxID                string `json:"taxId"`
	TaxIDFormatted       string `json:"taxIdFormatted"`
	AccountCode          string `json:"accountCode,omitempty"`
	AccountCodeFormatted string `json:"accountCodeFormatted,omitempty"`
	Notes                string `json:"notes,omitempty"`
	Active               bool   `json:"active"`
}

// FromContact creates response DTO from domain entity.
func FromContact(c *contact.Contact) ContactResponse {
	resp := ContactResponse{
		ID:             c.ID.String(),
		Kind:           string(c.Kind),
		Name:           c.Name,
		TaxID:          c.TaxID.String(),
		TaxIDFormatted: checkdigit.FormatTaxID(c.TaxID.String()),
		Notes:          c.Notes,
		Active:         c.Active,
	}
	if !c.AccountCode.IsZero() {
		resp.AccountCode = c.AccountCode.String()
		resp.AccountCodeFormatted = checkdigit.FormatAccountCode(c.AccountCode.String())
	}
	return resp
}
