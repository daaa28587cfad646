package checkrange

import (
	"context"

	"paybatch/internal/core/entity"
)

// ListFilter selects ranges.
type ListFilter struct {
	// Category restricts to one category; empty means all.
	Category Category

	// IncludeInactive also returns deactivated ranges.
	IncludeInactive bool
}

// Repository defines the interface for NumberRange persistence.
// List returns ranges ordered by category, then priority.
type Repository interface {
	// Create inserts a range. Returns DUPLICATE_RANGE when category+priority exists.
	Create(ctx context.Context, r *NumberRange) error

	Get(ctx context.Context, id entity.ID) (*NumberRange, error)

	List(ctx context.Context, filter ListFilter) ([]*NumberRange, error)

	// SetActive toggles the active flag without touching the cursor.
	SetActive(ctx context.Context, id entity.ID, active bool) error

	// AdvanceCursor moves the cursor from observed to observed+1 if, and only if,
	// the persisted cursor still equals observed, the range is active and not
	// exhausted. Returns false when another caller won the race.
	AdvanceCursor(ctx context.Context, id entity.ID, observed int64) (bool, error)
}
