package ledger

import (
	"context"
	"fmt"
	"time"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/types"
	"paybatch/internal/domain"
	"paybatch/internal/domain/checkrange"
	"paybatch/pkg/logger"
)

// RecordInput describes a freshly allocated number.
type RecordInput struct {
	Number      int64
	Category    checkrange.Category
	BatchID     *entity.ID
	Beneficiary string
	Amount      types.Amount
	IssueDate   time.Time
	PaymentDate *time.Time
}

// Service owns the issued-check lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new ledger Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record creates an issued check in pending_issue.
func (s *Service) Record(ctx context.Context, in RecordInput) (*IssuedCheck, error) {
	issueDate := in.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	c := &IssuedCheck{
		Base:        entity.NewBase(),
		Number:      in.Number,
		Category:    in.Category,
		State:       StatePendingIssue,
		BatchID:     in.BatchID,
		Beneficiary: in.Beneficiary,
		Amount:      in.Amount,
		IssueDate:   issueDate,
		PaymentDate: in.PaymentDate,
	}
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("record check %d: %w", in.Number, err)
	}
	return c, nil
}

// Transition moves a check to state to, enforcing the lifecycle table.
func (s *Service) Transition(ctx context.Context, id entity.ID, to State) (*IssuedCheck, error) {
	if _, err := ParseState(string(to)); err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := c.State
	if err := c.transition(to); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateState(ctx, c); err != nil {
		return nil, err
	}

	logger.Info(ctx, "issued check transitioned",
		"check_id", c.ID,
		"number", c.Number,
		"category", c.Category,
		"from", from,
		"to", to)
	return c, nil
}

// Confirm marks the check as physically issued.
func (s *Service) Confirm(ctx context.Context, id entity.ID) (*IssuedCheck, error) {
	return s.Transition(ctx, id, StateConfirmedIssue)
}

// MarkLoaded marks the check as loaded into the bank system.
func (s *Service) MarkLoaded(ctx context.Context, id entity.ID) (*IssuedCheck, error) {
	return s.Transition(ctx, id, StateLoadedInSystem)
}

// MarkUnused voids the check; the number is not handed out again.
func (s *Service) MarkUnused(ctx context.Context, id entity.ID) (*IssuedCheck, error) {
	return s.Transition(ctx, id, StateUnused)
}

// Get retrieves an issued check by ID.
func (s *Service) Get(ctx context.Context, id entity.ID) (*IssuedCheck, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber retrieves an issued check by its physical number.
func (s *Service) GetByNumber(ctx context.Context, category checkrange.Category, number int64) (*IssuedCheck, error) {
	return s.repo.GetByNumber(ctx, category, number)
}

// ListByBatch returns the checks allocated for a batch.
func (s *Service) ListByBatch(ctx context.Context, batchID entity.ID) ([]*IssuedCheck, error) {
	return s.repo.ListByBatch(ctx, batchID)
}

// List returns checks matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*IssuedCheck], error) {
	filter.Page = filter.Page.Normalize()
	return s.repo.List(ctx, filter)
}

// CountByState tallies checks of category per state. Every state is present.
func (s *Service) CountByState(ctx context.Context, category checkrange.Category) ([]StateCount, error) {
	rows, err := s.repo.CountByState(ctx, category)
	if err != nil {
		return nil, err
	}

	byState := make(map[State]int64, len(rows))
	for _, r := range rows {
		byState[r.State] = r.Count
	}
	out := make([]StateCount, 0, len(States))
	for _, st := range States {
		out = append(out, StateCount{State: st, Count: byState[st]})
	}
	return out, nil
}
