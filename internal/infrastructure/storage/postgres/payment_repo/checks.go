package payment_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/infrastructure/storage/postgres"
)

// CheckRepo implements ledger.Repository.
type CheckRepo struct {
	baseRepo
	cols []string
}

var _ ledger.Repository = (*CheckRepo)(nil)

// NewCheckRepo creates an issued-check repository.
func NewCheckRepo(txm *postgres.TxManager) *CheckRepo {
	return &CheckRepo{
		baseRepo: baseRepo{txm: txm},
		cols:     postgres.ExtractDBColumns[ledger.IssuedCheck](),
	}
}

func (r *CheckRepo) Create(ctx context.Context, c *ledger.IssuedCheck) error {
	err := r.insert(ctx, checksTable, r.cols, c)
	if postgres.IsUniqueViolation(err, "issued_checks_number_category_key") {
		return apperror.NewDuplicate("issued check", "number", c.Number).
			WithDetail("category", string(c.Category)).
			WithCause(err)
	}
	return err
}

func (r *CheckRepo) Get(ctx context.Context, id entity.ID) (*ledger.IssuedCheck, error) {
	var c ledger.IssuedCheck
	q := r.builder().Select(r.cols...).From(checksTable).Where(squirrel.Eq{"id": id})
	if err := r.get(ctx, &c, q, "issued check", id.String()); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckRepo) GetByNumber(ctx context.Context, category checkrange.Category, number int64) (*ledger.IssuedCheck, error) {
	var c ledger.IssuedCheck
	q := r.builder().Select(r.cols...).From(checksTable).
		Where(squirrel.Eq{"category": category, "number": number})
	if err := r.get(ctx, &c, q, "issued check", number); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CheckRepo) UpdateState(ctx context.Context, c *ledger.IssuedCheck) error {
	n, err := r.exec(ctx, r.builder().
		Update(checksTable).
		Set("state", c.State).
		Set("updated_at", squirrel.Expr("now()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": c.ID, "version": c.Version}))
	if err != nil {
		return fmt.Errorf("update issued check state: %w", err)
	}
	if n == 0 {
		return apperror.NewConcurrentModification("issued check", c.ID.String())
	}
	c.Touch()
	return nil
}

func (r *CheckRepo) List(ctx context.Context, filter ledger.ListFilter) (domain.ListResult[*ledger.IssuedCheck], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[*ledger.IssuedCheck]{
		Items:  []*ledger.IssuedCheck{},
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	q := r.builder().Select(r.cols...).From(checksTable)
	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.State != "" {
		q = q.Where(squirrel.Eq{"state": filter.State})
	}
	if filter.BatchID != nil {
		q = q.Where(squirrel.Eq{"batch_id": *filter.BatchID})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("category", "number").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset))
	if err := r.selectAll(ctx, &result.Items, q); err != nil {
		return result, fmt.Errorf("list issued checks: %w", err)
	}
	return result, nil
}

func (r *CheckRepo) ListByBatch(ctx context.Context, batchID entity.ID) ([]*ledger.IssuedCheck, error) {
	q := r.builder().Select(r.cols...).From(checksTable).
		Where(squirrel.Eq{"batch_id": batchID}).
		OrderBy("category", "number")

	checks := []*ledger.IssuedCheck{}
	if err := r.selectAll(ctx, &checks, q); err != nil {
		return nil, fmt.Errorf("list checks of batch %s: %w", batchID, err)
	}
	return checks, nil
}

func (r *CheckRepo) CountByState(ctx context.Context, category checkrange.Category) ([]ledger.StateCount, error) {
	q := r.builder().
		Select("state", "COUNT(*) AS count").
		From(checksTable).
		GroupBy("state")
	if category != "" {
		q = q.Where(squirrel.Eq{"category": category})
	}

	var rows []ledger.StateCount
	if err := r.selectAll(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("count issued checks: %w", err)
	}
	return rows, nil
}
