package dto

import "paybatch/internal/domain/reference"

// CreateReferenceRequest is the request body for a new reference.
type CreateReferenceRequest struct {
	Code        string `json:"code" binding:"required"`
	Description string `json:"description" binding:"max=255"`
}

// UpdateReferenceRequest edits the description; the code is immutable.
type UpdateReferenceRequest struct {
	Description string `json:"description" binding:"max=255"`
}

// ReferenceResponse is the response body for a reference.
type ReferenceResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// FromReference creates response DTO from domain entity.
func FromReference(r *reference.Reference) ReferenceResponse {
	return ReferenceResponse{
		ID:          r.ID.String(),
		Code:        r.Code,
		Description: r.Description,
		Active:      r.Active,
	}
}

// NextCodeResponse suggests the next free code under a prefix.
type NextCodeResponse struct {
	Prefix string `json:"prefix"`
	Code   string `json:"code"`
}
