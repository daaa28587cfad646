package reference

import (
	"context"

	"paybatch/internal/core/entity"
)

// Repository defines the interface for Reference persistence.
type Repository interface {
	// Create inserts a reference. Returns DUPLICATE_ENTRY when the code exists.
	Create(ctx context.Context, r *Reference) error

	Get(ctx context.Context, id entity.ID) (*Reference, error)

	GetByCode(ctx context.Context, code string) (*Reference, error)

	// Update persists the description guarded by r.Version and bumps it.
	Update(ctx context.Context, r *Reference) error

	// List returns references ordered by code.
	List(ctx context.Context, includeInactive bool) ([]*Reference, error)

	SetActive(ctx context.Context, id entity.ID, active bool) error

	Delete(ctx context.Context, id entity.ID) error

	// LastCode returns the greatest code starting with prefix, or "" when none.
	LastCode(ctx context.Context, prefix string) (string, error)
}

// UsageCounter reports how many batches are filed under a reference.
type UsageCounter interface {
	CountByReference(ctx context.Context, referenceID entity.ID) (int64, error)
}
