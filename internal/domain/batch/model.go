// Package batch provides payment batches: an ordered list of transfer and check
// payments filed under a reference and sent to the bank as one workbook.
//
// Check numbers are never assigned while a batch is a draft. Finalize walks
// the items in line order and draws one number per check item from the range
// allocator, so numbers are consumed only for batches that are actually sent.
package batch

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/checkdigit"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/types"
	"paybatch/internal/domain/checkrange"
)

// State of a batch.
type State string

const (
	StateDraft      State = "draft"
	StateFinal      State = "final"
	StateDownloaded State = "downloaded"
)

// States lists every state in lifecycle order.
var States = []State{StateDraft, StateFinal, StateDownloaded}

// ParseState validates a state name.
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StateDraft, StateFinal, StateDownloaded:
		return st, nil
	}
	return "", apperror.NewValidation("unknown batch state").
		WithDetail("field", "state").
		WithDetail("value", s)
}

// DocType is the kind of tax identifier of the beneficiary.
type DocType string

const (
	DocCUIT DocType = "CUIT"
	DocCUIL DocType = "CUIL"
)

// PaymentMode is the bank's payment modality code.
type PaymentMode int

const (
	ModeTransferOwnBank   PaymentMode = 2
	ModeTransferOtherBank PaymentMode = 4
	ModeCheckCommon       PaymentMode = 6
	ModeCheckDeferred     PaymentMode = 8
)

// PaymentModes lists every accepted mode.
var PaymentModes = []PaymentMode{ModeTransferOwnBank, ModeTransferOtherBank, ModeCheckCommon, ModeCheckDeferred}

// IsValid reports whether m is one of the bank's modes.
func (m PaymentMode) IsValid() bool {
	return slices.Contains(PaymentModes, m)
}

// IsCheck reports whether the mode pays with a physical check.
func (m PaymentMode) IsCheck() bool {
	return m == ModeCheckCommon || m == ModeCheckDeferred
}

// IsTransfer reports whether the mode pays by bank transfer.
func (m PaymentMode) IsTransfer() bool {
	return m == ModeTransferOwnBank || m == ModeTransferOtherBank
}

// CheckCategory maps a check mode to the range category its number comes from.
func (m PaymentMode) CheckCategory() (checkrange.Category, bool) {
	switch m {
	case ModeCheckDeferred:
		return checkrange.CategoryDeferred, true
	case ModeCheckCommon:
		return checkrange.CategoryCommon, true
	}
	return "", false
}

// Label returns the display name of the mode.
func (m PaymentMode) Label() string {
	switch m {
	case ModeTransferOwnBank:
		return "Transfer same bank"
	case ModeTransferOtherBank:
		return "Transfer other bank"
	case ModeCheckCommon:
		return "Check common"
	case ModeCheckDeferred:
		return "Check deferred"
	}
	return strconv.Itoa(int(m))
}

// Item is one payment line.
//
// Slot holds the beneficiary's bank account code for transfers. For checks it
// is empty while the batch is a draft and holds the allocated check number
// after finalize.
type Item struct {
	ID      entity.ID `db:"id" json:"id"`
	BatchID entity.ID `db:"batch_id" json:"batchId"`
	LineNo  int       `db:"line_no" json:"lineNo"`

	DocType     DocType          `db:"doc_type" json:"docType"`
	DocNumber   checkdigit.TaxID `db:"doc_number" json:"docNumber"`
	PaymentID   string           `db:"payment_id" json:"paymentId,omitempty"`
	Beneficiary string           `db:"beneficiary" json:"beneficiary"`
	Amount      types.Amount     `db:"amount" json:"amount"`
	Mode        PaymentMode      `db:"payment_mode" json:"paymentMode"`
	Slot        string           `db:"account_or_check" json:"accountOrCheck"`

	IssuedCheckID    *entity.ID `db:"issued_check_id" json:"issuedCheckId,omitempty"`
	RegistrationMark string     `db:"registration_mark" json:"registrationMark,omitempty"`
	IssueDate        *time.Time `db:"issue_date" json:"issueDate,omitempty"`
	DeferredDate     *time.Time `db:"deferred_date" json:"deferredDate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NeedsNumber reports whether finalize still has to allocate a check for the item.
func (it *Item) NeedsNumber() bool {
	return it.Mode.IsCheck() && it.Slot == ""
}

// CheckNumber returns the allocated number of a check item.
func (it *Item) CheckNumber() (int64, bool) {
	if !it.Mode.IsCheck() || it.Slot == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(it.Slot, 10, 64)
	return n, err == nil
}

// Batch is a payment batch with its items in line order.
type Batch struct {
	entity.Base

	ReferenceID  entity.ID `db:"reference_id" json:"referenceId"`
	Sequence     int64     `db:"sequence_number" json:"sequenceNumber"`
	Branch       string    `db:"branch" json:"branch"`
	DebitAccount string    `db:"debit_account" json:"debitAccount"`
	State        State     `db:"state" json:"state"`

	// CachedTotal is set by finalize; drafts compute the total from items.
	CachedTotal *types.Amount `db:"total" json:"-"`

	FinalizedAt  *time.Time `db:"finalized_at" json:"finalizedAt,omitempty"`
	DownloadedAt *time.Time `db:"downloaded_at" json:"downloadedAt,omitempty"`

	Items []*Item `db:"-" json:"items"`
}

// Validate implements entity.Validatable interface.
func (b *Batch) Validate(ctx context.Context) error {
	if b.Branch == "" {
		return apperror.NewValidation("branch is required").WithDetail("field", "branch")
	}
	if b.DebitAccount == "" {
		return apperror.NewValidation("debit account is required").WithDetail("field", "debitAccount")
	}
	if len(b.Branch) > 20 || len(b.DebitAccount) > 40 {
		return apperror.NewValidation("branch or debit account is too long").
			WithDetail("branch", b.Branch).
			WithDetail("debitAccount", b.DebitAccount)
	}
	return nil
}

// Total returns the sum of item amounts, or the cached value once finalized.
func (b *Batch) Total() types.Amount {
	if b.State != StateDraft && b.CachedTotal != nil {
		return *b.CachedTotal
	}
	return b.itemsTotal()
}

func (b *Batch) itemsTotal() types.Amount {
	amounts := make([]types.Amount, 0, len(b.Items))
	for _, it := range b.Items {
		amounts = append(amounts, it.Amount)
	}
	return types.SumAmounts(amounts...)
}

// CanModify reports whether items may still be added or removed.
func (b *Batch) CanModify() error {
	if b.State != StateDraft {
		return apperror.NewInvalidState("payment batch", string(b.State),
			"only draft batches can be modified").
			WithDetail("id", b.ID.String())
	}
	return nil
}

// NextLineNo returns the line number for a new item.
func (b *Batch) NextLineNo() int {
	n := 0
	for _, it := range b.Items {
		n = max(n, it.LineNo)
	}
	return n + 1
}

// CheckCount counts check items.
func (b *Batch) CheckCount() int {
	n := 0
	for _, it := range b.Items {
		if it.Mode.IsCheck() {
			n++
		}
	}
	return n
}

// markFinal freezes the total and moves the batch to final.
func (b *Batch) markFinal(now time.Time) {
	total := b.itemsTotal()
	b.CachedTotal = &total
	b.State = StateFinal
	b.FinalizedAt = &now
}

// markDownloaded moves a final batch to downloaded.
func (b *Batch) markDownloaded(now time.Time) error {
	if b.State != StateFinal {
		return apperror.NewInvalidState("payment batch", string(b.State),
			"only final batches can be marked as downloaded").
			WithDetail("id", b.ID.String())
	}
	b.State = StateDownloaded
	b.DownloadedAt = &now
	return nil
}

// ItemInput describes a new payment line.
type ItemInput struct {
	DocType          DocType
	DocNumber        string
	PaymentID        string
	Beneficiary      string
	Amount           types.Amount
	Mode             PaymentMode
	AccountCode      string
	RegistrationMark string
	IssueDate        *time.Time
	DeferredDate     *time.Time
}

// buildItem validates in and produces an unsaved item.
func buildItem(batchID entity.ID, lineNo int, in ItemInput) (*Item, error) {
	if !in.Mode.IsValid() {
		return nil, apperror.NewValidation("payment mode must be 2, 4, 6 or 8").
			WithDetail("field", "paymentMode").
			WithDetail("value", int(in.Mode))
	}
	if err := types.CheckAmount(in.Amount); err != nil {
		return nil, err
	}

	docType := in.DocType
	if docType == "" {
		docType = DocCUIT
	}
	if docType != DocCUIT && docType != DocCUIL {
		return nil, apperror.NewValidation("document type must be CUIT or CUIL").
			WithDetail("field", "docType").
			WithDetail("value", string(in.DocType))
	}

	taxID, err := checkdigit.ValidateTaxID(in.DocNumber)
	if err != nil {
		return nil, err
	}

	beneficiary := strings.TrimSpace(in.Beneficiary)
	if beneficiary == "" {
		return nil, apperror.NewValidation("beneficiary is required").
			WithDetail("field", "beneficiary")
	}

	slot := strings.TrimSpace(in.AccountCode)
	switch {
	case in.Mode.IsTransfer():
		code, err := checkdigit.ValidateBankAccountCode(slot)
		if err != nil {
			return nil, err
		}
		slot = code.String()
	case slot != "":
		return nil, apperror.NewValidation("check items get their number at finalize; leave the account empty").
			WithDetail("field", "accountCode").
			WithDetail("value", in.AccountCode)
	}

	return &Item{
		ID:               entity.NewID(),
		BatchID:          batchID,
		LineNo:           lineNo,
		DocType:          docType,
		DocNumber:        taxID,
		PaymentID:        strings.TrimSpace(in.PaymentID),
		Beneficiary:      beneficiary,
		Amount:           in.Amount,
		Mode:             in.Mode,
		Slot:             slot,
		RegistrationMark: strings.TrimSpace(in.RegistrationMark),
		IssueDate:        in.IssueDate,
		DeferredDate:     in.DeferredDate,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// Artifact is the rendered bank workbook of a finalized batch.
type Artifact struct {
	BatchID     entity.ID `json:"batchId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StateCount is one row of a per-state tally.
type StateCount struct {
	State State        `db:"state" json:"state"`
	Count int64        `db:"count" json:"count"`
	Total types.Amount `db:"total" json:"total"`
}
