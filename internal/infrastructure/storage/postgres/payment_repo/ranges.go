package payment_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/infrastructure/storage/postgres"
)

// RangeRepo implements checkrange.Repository.
type RangeRepo struct {
	baseRepo
	cols []string
}

var _ checkrange.Repository = (*RangeRepo)(nil)

// NewRangeRepo creates a check range repository.
func NewRangeRepo(txm *postgres.TxManager) *RangeRepo {
	return &RangeRepo{
		baseRepo: baseRepo{txm: txm},
		cols:     postgres.ExtractDBColumns[checkrange.NumberRange](),
	}
}

func (r *RangeRepo) Create(ctx context.Context, nr *checkrange.NumberRange) error {
	err := r.insert(ctx, rangesTable, r.cols, nr)
	if postgres.IsUniqueViolation(err, "check_ranges_category_priority_key") {
		return apperror.NewDuplicateRange(string(nr.Category), nr.Priority).WithCause(err)
	}
	return err
}

func (r *RangeRepo) Get(ctx context.Context, id entity.ID) (*checkrange.NumberRange, error) {
	var nr checkrange.NumberRange
	q := r.builder().Select(r.cols...).From(rangesTable).Where(squirrel.Eq{"id": id})
	if err := r.get(ctx, &nr, q, "check_range", id.String()); err != nil {
		return nil, err
	}
	return &nr, nil
}

func (r *RangeRepo) List(ctx context.Context, filter checkrange.ListFilter) ([]*checkrange.NumberRange, error) {
	q := r.builder().Select(r.cols...).From(rangesTable).OrderBy("category", "priority")
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}

	out := []*checkrange.NumberRange{}
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list check ranges: %w", err)
	}
	return out, nil
}

func (r *RangeRepo) SetActive(ctx context.Context, id entity.ID, active bool) error {
	return r.setActive(ctx, rangesTable, "check_range", id, active)
}

// AdvanceCursor moves next_number forward by one only if it still equals
// observed and the range is active with capacity left.
func (r *RangeRepo) AdvanceCursor(ctx context.Context, id entity.ID, observed int64) (bool, error) {
	n, err := r.exec(ctx, r.advanceCursorQuery(id, observed))
	if err != nil {
		return false, fmt.Errorf("advance cursor: %w", err)
	}
	return n == 1, nil
}

func (r *RangeRepo) advanceCursorQuery(id entity.ID, observed int64) squirrel.UpdateBuilder {
	return r.builder().
		Update(rangesTable).
		Set("next_number", squirrel.Expr("next_number + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"next_number": observed}).
		Where("next_number <= range_end AND active")
}
