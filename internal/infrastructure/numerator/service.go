// Package numerator provides the PostgreSQL implementation of core/numerator.Sequence.
package numerator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "paybatch/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call, typically the transaction in ctx.
type QuerierFunc func(ctx context.Context) Querier

// Service keeps counters in sys_sequences using UPSERT + RETURNING,
// so concurrent callers always receive distinct values.
type Service struct {
	querier QuerierFunc
}

// Ensure compile-time interface compliance.
var _ corenumerator.Sequence = (*Service)(nil)

// New creates a service bound to a single querier.
func New(querier Querier) *Service {
	return &Service{querier: func(context.Context) Querier { return querier }}
}

// NewFromContext creates a service that resolves its querier per call.
// Counters then take part in the caller's transaction, so a rolled back
// batch creation does not consume a number.
func NewFromContext(fn QuerierFunc) *Service {
	return &Service{querier: fn}
}

// Next increments the counter for key and returns the new value.
func (s *Service) Next(ctx context.Context, key string) (int64, error) {
	if s == nil || s.querier == nil {
		return 0, fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", key, err)
	}
	return num, nil
}

// Set overwrites the counter for key.
func (s *Service) Set(ctx context.Context, key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("set %s: negative value %d", key, value)
	}

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
