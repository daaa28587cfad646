package dto

import (
	"time"

	"paybatch/internal/domain/ledger"
)

// ListChecksQuery filters issued-check listings.
type ListChecksQuery struct {
	PageQuery
	Category string `form:"category" binding:"omitempty,oneof=common deferred"`
	State    string `form:"state" binding:"omitempty,oneof=pending_issue confirmed_issue loaded_in_system unused"`
	BatchID  string `form:"batchId" binding:"omitempty,uuid"`
}

// TransitionRequest moves an issued check to another state.
type TransitionRequest struct {
	State string `json:"state" binding:"required"`
}

// CheckResponse is the response body for an issued check.
type CheckResponse struct {
	ID          string    `json:"id"`
	Number      int64     `json:"number"`
	Category    string    `json:"category"`
	State       string    `json:"state"`
	Terminal    bool      `json:"terminal"`
	BatchID     *string   `json:"batchId,omitempty"`
	Beneficiary string    `json:"beneficiary"`
	Amount      string    `json:"amount"`
	IssueDate   string    `json:"issueDate"`
	PaymentDate string    `json:"paymentDate,omitempty"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromCheck creates response DTO from domain entity.
func FromCheck(c *ledger.IssuedCheck) CheckResponse {
	resp := CheckResponse{
		ID:          c.ID.String(),
		Number:      c.Number,
		Category:    string(c.Category),
		State:       string(c.State),
		Terminal:    c.State.IsTerminal(),
		Beneficiary: c.Beneficiary,
		Amount:      c.Amount.StringFixed(2),
		IssueDate:   c.IssueDate.Format(DateLayout),
		PaymentDate: FormatDate(c.PaymentDate),
		Version:     c.Version,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.BatchID != nil {
		id := c.BatchID.String()
		resp.BatchID = &id
	}
	return resp
}
