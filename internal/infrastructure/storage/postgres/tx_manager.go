package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"paybatch/internal/core/tx"
	"paybatch/pkg/logger"
)

var tracer = otel.Tracer("paybatch/tx")

var _ tx.Manager = (*TxManager)(nil)

const (
	sqlStateSerialization = "40001"
	sqlStateDeadlock      = "40P01"

	maxTxAttempts = 4
)

// TxManager runs units of work in read-committed pgx transactions stored in
// the context. Nested calls join the outer transaction. An outermost unit of
// work that fails with a serialization failure or deadlock is replayed.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager over pool.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{pool: pool.Pool}
}

type txKey struct{}

// RunInTransaction executes fn within a transaction.
// If a transaction already exists in ctx, fn joins it.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.GetTx(ctx) != nil {
		return fn(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, maxTxAttempts-1), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := m.runOnce(ctx, attempt, fn)
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			logger.Warn(ctx, "transaction conflict, retrying", "attempt", attempt, "error", err)
		}
		return err
	}, policy)
}

func (m *TxManager) runOnce(ctx context.Context, attempt int, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.Int("tx.attempt", attempt)))
	defer span.End()

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		// Rollback must complete even when ctx is already cancelled.
		if rbErr := tx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		span.RecordError(err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlStateSerialization || pgErr.Code == sqlStateDeadlock
}

// GetTx returns the current transaction from context, or nil if none.
func (m *TxManager) GetTx(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// Querier is satisfied by both pgx.Tx and pgxpool.Pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns the transaction in ctx, or the pool outside transactions.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if tx := m.GetTx(ctx); tx != nil {
		return tx
	}
	return m.pool
}
