package memory

import (
	"cmp"
	"context"
	"slices"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
)

// CheckRepo implements ledger.Repository.
type CheckRepo struct{ s *Store }

var _ ledger.Repository = (*CheckRepo)(nil)

func cloneCheck(c *ledger.IssuedCheck) *ledger.IssuedCheck {
	cp := *c
	return &cp
}

func (r *CheckRepo) Create(ctx context.Context, c *ledger.IssuedCheck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.checks {
		if existing.Category == c.Category && existing.Number == c.Number {
			return apperror.NewDuplicate("issued check", "number", c.Number).
				WithDetail("category", string(c.Category))
		}
	}
	r.s.checks[c.ID] = cloneCheck(c)
	return nil
}

func (r *CheckRepo) Get(ctx context.Context, id entity.ID) (*ledger.IssuedCheck, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.checks[id]
	if !ok {
		return nil, apperror.NewNotFound("issued check", id.String())
	}
	return cloneCheck(c), nil
}

func (r *CheckRepo) GetByNumber(ctx context.Context, category checkrange.Category, number int64) (*ledger.IssuedCheck, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.checks {
		if c.Category == category && c.Number == number {
			return cloneCheck(c), nil
		}
	}
	return nil, apperror.NewNotFound("issued check", number).WithDetail("category", string(category))
}

func (r *CheckRepo) UpdateState(ctx context.Context, c *ledger.IssuedCheck) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.checks[c.ID]
	if !ok {
		return apperror.NewNotFound("issued check", c.ID.String())
	}
	if stored.Version != c.Version {
		return apperror.NewConcurrentModification("issued check", c.ID.String())
	}
	c.Version++
	c.UpdatedAt = touchNow()
	stored.State = c.State
	stored.Version = c.Version
	stored.UpdatedAt = c.UpdatedAt
	return nil
}

func (r *CheckRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[*ledger.IssuedCheck], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var all []*ledger.IssuedCheck
	for _, c := range r.s.checks {
		if filter.Category != "" && c.Category != filter.Category {
			continue
		}
		if filter.State != "" && c.State != filter.State {
			continue
		}
		if filter.BatchID != nil && (c.BatchID == nil || *c.BatchID != *filter.BatchID) {
			continue
		}
		all = append(all, cloneCheck(c))
	}
	slices.SortFunc(all, func(a, b *ledger.IssuedCheck) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Number, b.Number))
	})

	page := filter.Page.Normalize()
	return domain.ListResult[*ledger.IssuedCheck]{
		Items:      domain.Apply(all, page),
		TotalCount: int64(len(all)),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, nil
}

func (r *CheckRepo) ListByBatch(ctx context.Context, batchID entity.ID) ([]*ledger.IssuedCheck, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*ledger.IssuedCheck{}
	for _, c := range r.s.checks {
		if c.BatchID != nil && *c.BatchID == batchID {
			out = append(out, cloneCheck(c))
		}
	}
	slices.SortFunc(out, func(a, b *ledger.IssuedCheck) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Number, b.Number))
	})
	return out, nil
}

func (r *CheckRepo) CountByState(ctx context.Context, category checkrange.Category) ([]ledger.StateCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[ledger.State]int64)
	for _, c := range r.s.checks {
		if category != "" && c.Category != category {
			continue
		}
		counts[c.State]++
	}
	out := make([]ledger.StateCount, 0, len(counts))
	for st, n := range counts {
		out = append(out, ledger.StateCount{State: st, Count: n})
	}
	return out, nil
}
