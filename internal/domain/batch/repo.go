package batch

import (
	"context"

	"paybatch/internal/core/entity"
	"paybatch/internal/domain"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/domain/reference"
)

// ListFilter selects batches. Zero fields do not filter.
type ListFilter struct {
	ReferenceID *entity.ID
	State       State
	domain.Page
}

// Repository defines the interface for Batch persistence.
type Repository interface {
	Create(ctx context.Context, b *Batch) error

	// Get returns the batch with its items in line order.
	Get(ctx context.Context, id entity.ID) (*Batch, error)

	// GetForUpdate is Get with the batch row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id entity.ID) (*Batch, error)

	// List returns batch headers (no items), newest sequence first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Batch], error)

	// Update persists header fields guarded by b.Version and increments it.
	// A stale version yields CONCURRENT_MODIFICATION.
	Update(ctx context.Context, b *Batch) error

	AddItem(ctx context.Context, item *Item) error

	RemoveItem(ctx context.Context, batchID, itemID entity.ID) error

	// GetItemForUpdate returns one item with its row locked until the transaction ends.
	GetItemForUpdate(ctx context.Context, batchID, itemID entity.ID) (*Item, error)

	// SetItemCheck writes the allocated number into a check item's empty slot.
	SetItemCheck(ctx context.Context, itemID entity.ID, number string, issuedCheckID entity.ID) error

	CountByReference(ctx context.Context, referenceID entity.ID) (int64, error)

	CountByState(ctx context.Context) ([]StateCount, error)
}

// NumberAllocator hands out check numbers.
type NumberAllocator interface {
	Next(ctx context.Context, category checkrange.Category) (int64, error)
}

// CheckRecorder registers an allocated number in the issued-check ledger.
type CheckRecorder interface {
	Record(ctx context.Context, in ledger.RecordInput) (*ledger.IssuedCheck, error)
}

// ReferenceReader resolves the reference a batch is filed under.
type ReferenceReader interface {
	Get(ctx context.Context, id entity.ID) (*reference.Reference, error)
}

// Exporter renders a finalized batch and keeps the result for download.
// Export runs inside the finalize transaction.
type Exporter interface {
	Export(ctx context.Context, b *Batch, ref *reference.Reference) (*Artifact, error)
	Fetch(ctx context.Context, batchID entity.ID) (*Artifact, error)
}
