package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"paybatch/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// schemaLockID serializes concurrent Migrate calls across processes.
const schemaLockID = 0x7061796261746368

// Migrate creates any missing tables. Statements are idempotent.
func Migrate(ctx context.Context, txm *TxManager) error {
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q := txm.GetQuerier(ctx)
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", int64(schemaLockID)); err != nil {
			return fmt.Errorf("lock schema: %w", err)
		}
		if _, err := q.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		logger.Info(ctx, "database schema up to date")
		return nil
	})
}
