package ledger

import (
	"context"

	"paybatch/internal/core/entity"
	"paybatch/internal/domain"
	"paybatch/internal/domain/checkrange"
)

// ListFilter selects issued checks. Zero fields do not filter.
type ListFilter struct {
	Category checkrange.Category
	State    State
	BatchID  *entity.ID
	domain.Page
}

// Repository defines the interface for IssuedCheck persistence.
type Repository interface {
	// Create inserts a check. Returns DUPLICATE_ENTRY when (number, category) exists.
	Create(ctx context.Context, c *IssuedCheck) error

	Get(ctx context.Context, id entity.ID) (*IssuedCheck, error)

	GetByNumber(ctx context.Context, category checkrange.Category, number int64) (*IssuedCheck, error)

	// UpdateState persists c.State guarded by c.Version. On success c.Version
	// is incremented; a stale version yields CONCURRENT_MODIFICATION.
	UpdateState(ctx context.Context, c *IssuedCheck) error

	// List returns matching checks ordered by category, then number.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*IssuedCheck], error)

	// ListByBatch returns every check allocated for a batch, ordered by
	// category, then number. It is not paged.
	ListByBatch(ctx context.Context, batchID entity.ID) ([]*IssuedCheck, error)

	CountByState(ctx context.Context, category checkrange.Category) ([]StateCount, error)
}
