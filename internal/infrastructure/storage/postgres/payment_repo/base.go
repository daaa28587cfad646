// Package payment_repo provides PostgreSQL implementations of the payment
// domain repositories. Every repository resolves its querier from the
// context, so calls made inside tx.Manager.RunInTransaction join that
// transaction.
package payment_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"paybatch/internal/core/apperror"
	"paybatch/internal/infrastructure/storage/postgres"
)

const (
	rangesTable     = "check_ranges"
	checksTable     = "issued_checks"
	batchesTable    = "payment_batches"
	itemsTable      = "payment_batch_items"
	exportsTable    = "payment_batch_exports"
	referencesTable = "payment_references"
	contactsTable   = "contacts"
)

// baseRepo carries what every repository needs.
type baseRepo struct {
	txm *postgres.TxManager
}

func (r baseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r baseRepo) q(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// insert writes the db-tagged fields of v restricted to cols.
func (r baseRepo) insert(ctx context.Context, table string, cols []string, v any) error {
	sql, args, err := r.builder().
		Insert(table).
		SetMap(postgres.Pick(postgres.StructToMap(v), cols)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.q(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// get scans a single row into dst; no rows yields NOT_FOUND for entity/key.
func (r baseRepo) get(ctx context.Context, dst any, q squirrel.Sqlizer, entity string, key any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.q(ctx), dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(entity, key)
		}
		return fmt.Errorf("get %s: %w", entity, err)
	}
	return nil
}

func (r baseRepo) selectAll(ctx context.Context, dst any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.q(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}

// exec runs q and returns the affected row count.
func (r baseRepo) exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	tag, err := r.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// count runs SELECT COUNT(*) over the filtered query.
func (r baseRepo) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := r.builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int64
	if err := r.q(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// setActive toggles the active flag of a row and bumps updated_at.
func (r baseRepo) setActive(ctx context.Context, table, entity string, id any, active bool) error {
	n, err := r.exec(ctx, r.builder().
		Update(table).
		Set("active", active).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("set active %s: %w", table, err)
	}
	if n == 0 {
		return apperror.NewNotFound(entity, fmt.Sprint(id))
	}
	return nil
}
