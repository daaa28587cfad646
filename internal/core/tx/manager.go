// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the implementations live in
// infrastructure/storage (postgres and memory).
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ManagerFunc adapts a plain function to Manager.
type ManagerFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// RunInTransaction calls f.
func (f ManagerFunc) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Passthrough runs fn directly. Used where the store has no transactions of its own.
var Passthrough Manager = ManagerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
