package memory

import (
	"cmp"
	"context"
	"slices"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/checkrange"
)

// RangeRepo implements checkrange.Repository.
type RangeRepo struct{ s *Store }

var _ checkrange.Repository = (*RangeRepo)(nil)

func cloneRange(r *checkrange.NumberRange) *checkrange.NumberRange {
	cp := *r
	return &cp
}

func (r *RangeRepo) Create(ctx context.Context, nr *checkrange.NumberRange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.ranges {
		if existing.Category == nr.Category && existing.Priority == nr.Priority {
			return apperror.NewDuplicateRange(string(nr.Category), nr.Priority)
		}
	}
	r.s.ranges[nr.ID] = cloneRange(nr)
	return nil
}

func (r *RangeRepo) Get(ctx context.Context, id entity.ID) (*checkrange.NumberRange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	nr, ok := r.s.ranges[id]
	if !ok {
		return nil, apperror.NewNotFound("check_range", id.String())
	}
	return cloneRange(nr), nil
}

func (r *RangeRepo) List(ctx context.Context, filter checkrange.ListFilter) ([]*checkrange.NumberRange, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*checkrange.NumberRange, 0, len(r.s.ranges))
	for _, nr := range r.s.ranges {
		if filter.Category != "" && nr.Category != filter.Category {
			continue
		}
		if !filter.IncludeInactive && !nr.Active {
			continue
		}
		out = append(out, cloneRange(nr))
	}
	slices.SortFunc(out, func(a, b *checkrange.NumberRange) int {
		return cmp.Or(cmp.Compare(a.Category, b.Category), cmp.Compare(a.Priority, b.Priority))
	})
	return out, nil
}

func (r *RangeRepo) SetActive(ctx context.Context, id entity.ID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	nr, ok := r.s.ranges[id]
	if !ok {
		return apperror.NewNotFound("check_range", id.String())
	}
	nr.Active = active
	nr.UpdatedAt = touchNow()
	return nil
}

func (r *RangeRepo) AdvanceCursor(ctx context.Context, id entity.ID, observed int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	nr, ok := r.s.ranges[id]
	if !ok {
		return false, apperror.NewNotFound("check_range", id.String())
	}
	if !nr.Active || nr.Cursor != observed || nr.Cursor > nr.End {
		return false, nil
	}
	nr.Cursor++
	nr.UpdatedAt = touchNow()
	return true, nil
}
