package dto

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"paybatch/internal/core/types"
	"paybatch/internal/domain/batch"
)

// CreateBatchRequest opens a draft batch.
type CreateBatchRequest struct {
	ReferenceID  string `json:"referenceId" binding:"required,uuid"`
	Branch       string `json:"branch" binding:"required,max=20"`
	DebitAccount string `json:"debitAccount" binding:"required,max=40"`
}

// AddItemRequest is one payment line. Amount accepts "1234.56" or "1234,56".
type AddItemRequest struct {
	DocType          string `json:"docType" binding:"omitempty,oneof=CUIT CUIL"`
	DocNumber        string `json:"docNumber" binding:"required"`
	PaymentID        string `json:"paymentId" binding:"max=40"`
	Beneficiary      string `json:"beneficiary" binding:"required,max=200"`
	Amount           string `json:"amount" binding:"required"`
	PaymentMode      int    `json:"paymentMode" binding:"required"`
	AccountCode      string `json:"accountCode"`
	RegistrationMark string `json:"registrationMark" binding:"max=20"`
	IssueDate        string `json:"issueDate"`
	DeferredDate     string `json:"deferredDate"`
}

// ToInput validates amount and dates and converts the request.
func (r AddItemRequest) ToInput() (batch.ItemInput, error) {
	amount, err := types.ParseAmount(r.Amount)
	if err != nil {
		return batch.ItemInput{}, err
	}
	issue, err := ParseDate("issueDate", r.IssueDate)
	if err != nil {
		return batch.ItemInput{}, err
	}
	deferred, err := ParseDate("deferredDate", r.DeferredDate)
	if err != nil {
		return batch.ItemInput{}, err
	}
	return batch.ItemInput{
		DocType:          batch.DocType(strings.ToUpper(r.DocType)),
		DocNumber:        r.DocNumber,
		PaymentID:        r.PaymentID,
		Beneficiary:      r.Beneficiary,
		Amount:           amount,
		Mode:             batch.PaymentMode(r.PaymentMode),
		AccountCode:      r.AccountCode,
		RegistrationMark: r.RegistrationMark,
		IssueDate:        issue,
		DeferredDate:     deferred,
	}, nil
}

// ListBatchesQuery filters batch listings.
type ListBatchesQuery struct {
	PageQuery
	ReferenceID string `form:"referenceId" binding:"omitempty,uuid"`
	State       string `form:"state" binding:"omitempty,oneof=draft final downloaded"`
}

// ItemResponse is one payment line of a batch.
type ItemResponse struct {
	ID               string  `json:"id"`
	LineNo           int     `json:"lineNo"`
	DocType          string  `json:"docType"`
	DocNumber        string  `json:"docNumber"`
	PaymentID        string  `json:"paymentId,omitempty"`
	Beneficiary      string  `json:"beneficiary"`
	Amount           string  `json:"amount"`
	PaymentMode      int     `json:"paymentMode"`
	PaymentModeLabel string  `json:"paymentModeLabel"`
	AccountOrCheck   string  `json:"accountOrCheck"`
	IssuedCheckID    *string `json:"issuedCheckId,omitempty"`
	RegistrationMark string  `json:"registrationMark,omitempty"`
	IssueDate        string  `json:"issueDate,omitempty"`
	DeferredDate     string  `json:"deferredDate,omitempty"`
}

// FromItem creates response DTO from domain entity.
func FromItem(it *batch.Item) ItemResponse {
	resp := ItemResponse{
		ID:               it.ID.String(),
		LineNo:           it.LineNo,
		DocType:          string(it.DocType),
		DocNumber:        it.DocNumber.String(),
		PaymentID:        it.PaymentID,
		Beneficiary:      it.Beneficiary,
		Amount:           it.Amount.StringFixed(2),
		PaymentMode:      int(it.Mode),
		PaymentModeLabel: it.Mode.Label(),
		AccountOrCheck:   it.Slot,
		RegistrationMark: it.RegistrationMark,
		IssueDate:        FormatDate(it.IssueDate),
		DeferredDate:     FormatDate(it.DeferredDate),
	}
	if it.IssuedCheckID != nil {
		id := it.IssuedCheckID.String()
		resp.IssuedCheckID = &id
	}
	return resp
}

// BatchResponse is the response body for a batch. Items are omitted in listings.
type BatchResponse struct {
	ID             string         `json:"id"`
	ReferenceID    string         `json:"referenceId"`
	SequenceNumber int64          `json:"sequenceNumber"`
	Branch         string         `json:"branch"`
	DebitAccount   string         `json:"debitAccount"`
	State          string         `json:"state"`
	Total          string         `json:"total"`
	ItemCount      int            `json:"itemCount"`
	CheckCount     int            `json:"checkCount"`
	Version        int            `json:"version"`
	CreatedAt      time.Time      `json:"createdAt"`
	FinalizedAt    *time.Time     `json:"finalizedAt,omitempty"`
	DownloadedAt   *time.Time     `json:"downloadedAt,omitempty"`
	Items          []ItemResponse `json:"items,omitempty"`
}

// FromBatch creates response DTO from domain entity.
func FromBatch(b *batch.Batch) BatchResponse {
	return BatchResponse{
		ID:             b.ID.String(),
		ReferenceID:    b.ReferenceID.String(),
		SequenceNumber: b.Sequence,
		Branch:         b.Branch,
		DebitAccount:   b.DebitAccount,
		State:          string(b.State),
		Total:          b.Total().StringFixed(2),
		ItemCount:      len(b.Items),
		CheckCount:     b.CheckCount(),
		Version:        b.Version,
		CreatedAt:      b.CreatedAt,
		FinalizedAt:    b.FinalizedAt,
		DownloadedAt:   b.DownloadedAt,
		Items: lo.Map(b.Items, func(it *batch.Item, _ int) ItemResponse {
			return FromItem(it)
		}),
	}
}

// BatchStatsResponse tallies batches per state.
type BatchStatsResponse struct {
	State string `json:"state"`
	Count int64  `json:"count"`
	Total string `json:"total"`
}

// FromBatchStats converts state counts.
func FromBatchStats(rows []batch.StateCount) []BatchStatsResponse {
	return lo.Map(rows, func(r batch.StateCount, _ int) BatchStatsResponse {
		return BatchStatsResponse{State: string(r.State), Count: r.Count, Total: r.Total.StringFixed(2)}
	})
}
