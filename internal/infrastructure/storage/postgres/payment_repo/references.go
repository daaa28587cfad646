package payment_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/storage/postgres"
)

// ReferenceRepo implements reference.Repository.
type ReferenceRepo struct {
	baseRepo
	cols []string
}

var _ reference.Repository = (*ReferenceRepo)(nil)

// NewReferenceRepo creates a reference repository.
func NewReferenceRepo(txm *postgres.TxManager) *ReferenceRepo {
	return &ReferenceRepo{
		baseRepo: baseRepo{txm: txm},
		cols:     postgres.ExtractDBColumns[reference.Reference](),
	}
}

func (r *ReferenceRepo) Create(ctx context.Context, ref *reference.Reference) error {
	err := r.insert(ctx, referencesTable, r.cols, ref)
	if postgres.IsUniqueViolation(err, "payment_references_code_key") {
		return apperror.NewDuplicate("reference", "code", ref.Code).WithCause(err)
	}
	return err
}

func (r *ReferenceRepo) Get(ctx context.Context, id entity.ID) (*reference.Reference, error) {
	var ref reference.Reference
	q := r.builder().Select(r.cols...).From(referencesTable).Where(squirrel.Eq{"id": id})
	if err := r.get(ctx, &ref, q, "reference", id.String()); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *ReferenceRepo) GetByCode(ctx context.Context, code string) (*reference.Reference, error) {
	var ref reference.Reference
	q := r.builder().Select(r.cols...).From(referencesTable).Where(squirrel.Eq{"code": code})
	if err := r.get(ctx, &ref, q, "reference", code); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *ReferenceRepo) Update(ctx context.Context, ref *reference.Reference) error {
	n, err := r.exec(ctx, r.builder().
		Update(referencesTable).
		Set("description", ref.Description).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": ref.ID, "version": ref.Version}))
	if err != nil {
		return fmt.Errorf("update reference: %w", err)
	}
	if n == 0 {
		return apperror.NewConcurrentModification("reference", ref.ID.String())
	}
	ref.Touch()
	return nil
}

func (r *ReferenceRepo) List(ctx context.Context, includeInactive bool) ([]*reference.Reference, error) {
	q := r.builder().Select(r.cols...).From(referencesTable).OrderBy("code")
	if !includeInactive {
		q = q.Where(squirrel.Eq{"active": true})
	}

	out := []*reference.Reference{}
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	return out, nil
}

func (r *ReferenceRepo) SetActive(ctx context.Context, id entity.ID, active bool) error {
	return r.setActive(ctx, referencesTable, "reference", id, active)
}

func (r *ReferenceRepo) Delete(ctx context.Context, id entity.ID) error {
	n, err := r.exec(ctx, r.builder().Delete(referencesTable).Where(squirrel.Eq{"id": id}))
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewInvalidState("reference", "in use", "reference has payment batches").
				WithDetail("id", id.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete reference: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("reference", id.String())
	}
	return nil
}

func (r *ReferenceRepo) LastCode(ctx context.Context, prefix string) (string, error) {
	sql, args, err := r.builder().
		Select("COALESCE(MAX(code), '')").
		From(referencesTable).
		Where(squirrel.Like{"code": prefix + "%"}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var last string
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&last); err != nil {
		return "", fmt.Errorf("last reference code: %w", err)
	}
	return last, nil
}
