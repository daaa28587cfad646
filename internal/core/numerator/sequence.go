// Package numerator provides domain contracts for shared monotonic counters.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
)

// Well-known counter keys.
const (
	// KeyPaymentBatch numbers payment batches across all references.
	KeyPaymentBatch = "payment_batch"
)

// Sequence hands out gap-tolerant, strictly increasing numbers per key.
// The first value for an unseen key is 1.
type Sequence interface {
	// Next atomically increments the counter and returns the new value.
	Next(ctx context.Context, key string) (int64, error)

	// Set moves the counter so that the following Next returns value+1.
	// Used when importing an existing numbering.
	Set(ctx context.Context, key string, value int64) error
}
