// Package ledger records every physical check number handed out by the
// allocator and tracks its lifecycle:
//
//	pending_issue -> confirmed_issue -> loaded_in_system
//	pending_issue | confirmed_issue -> unused
//
// loaded_in_system and unused are terminal.
package ledger

import (
	"context"
	"slices"
	"time"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/types"
	"paybatch/internal/domain/checkrange"
)

// State of an issued check.
type State string

const (
	StatePendingIssue   State = "pending_issue"
	StateConfirmedIssue State = "confirmed_issue"
	StateLoadedInSystem State = "loaded_in_system"
	StateUnused         State = "unused"
)

// States lists every state in lifecycle order.
var States = []State{StatePendingIssue, StateConfirmedIssue, StateLoadedInSystem, StateUnused}

var transitions = map[State][]State{
	StatePendingIssue:   {StateConfirmedIssue, StateUnused},
	StateConfirmedIssue: {StateLoadedInSystem, StateUnused},
	StateLoadedInSystem: nil,
	StateUnused:         nil,
}

// ParseState validates a state name.
func ParseState(s string) (State, error) {
	st := State(s)
	if _, ok := transitions[st]; !ok {
		return "", apperror.NewValidation("unknown check state").
			WithDetail("field", "state").
			WithDetail("value", s)
	}
	return st, nil
}

// CanTransitionTo reports whether the table allows s -> to.
func (s State) CanTransitionTo(to State) bool {
	return slices.Contains(transitions[s], to)
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IssuedCheck is a check number that left the allocator.
// (Number, Category) is unique and never changes after creation.
type IssuedCheck struct {
	entity.Base

	Number   int64               `db:"number" json:"number"`
	Category checkrange.Category `db:"category" json:"category"`
	State    State               `db:"state" json:"state"`

	BatchID     *entity.ID   `db:"batch_id" json:"batchId,omitempty"`
	Beneficiary string       `db:"beneficiary" json:"beneficiary"`
	Amount      types.Amount `db:"amount" json:"amount"`
	IssueDate   time.Time    `db:"issue_date" json:"issueDate"`
	PaymentDate *time.Time   `db:"payment_date" json:"paymentDate,omitempty"`
}

// Validate implements entity.Validatable interface.
func (c *IssuedCheck) Validate(ctx context.Context) error {
	if c.Number <= 0 {
		return apperror.NewValidation("check number must be positive").
			WithDetail("field", "number").
			WithDetail("value", c.Number)
	}
	if !c.Category.IsValid() {
		return apperror.NewValidation("unknown check category").
			WithDetail("field", "category").
			WithDetail("value", string(c.Category))
	}
	if !c.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than zero").
			WithDetail("field", "amount").
			WithDetail("value", c.Amount.String())
	}
	if c.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").
			WithDetail("field", "issueDate")
	}
	return nil
}

// transition moves the check to a new state or reports why it cannot.
func (c *IssuedCheck) transition(to State) error {
	if !c.State.CanTransitionTo(to) {
		return apperror.NewInvalidTransition("issued check", string(c.State), string(to)).
			WithDetail("id", c.ID.String()).
			WithDetail("number", c.Number)
	}
	c.State = to
	return nil
}

// StateCount is one row of a per-state tally.
type StateCount struct {
	State State `db:"state" json:"state"`
	Count int64 `db:"count" json:"count"`
}
