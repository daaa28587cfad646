package contact

import (
	"context"

	"paybatch/internal/core/checkdigit"
	"paybatch/internal/core/entity"
)

// Repository defines the interface for Contact persistence.
type Repository interface {
	Create(ctx context.Context, c *Contact) error

	Get(ctx context.Context, id entity.ID) (*Contact, error)

	// Update persists the editable fields guarded by c.Version and bumps it.
	// Returns CONCURRENT_MODIFICATION when the stored version moved on.
	Update(ctx context.Context, c *Contact) error

	// Find returns the contact of kind matching the identifiers, or NOT_FOUND.
	// accountCode is ignored for check contacts.
	Find(ctx context.Context, kind Kind, taxID checkdigit.TaxID, accountCode checkdigit.BankAccountCode) (*Contact, error)

	// List returns contacts of kind (all kinds when empty) ordered by name.
	List(ctx context.Context, kind Kind, includeInactive bool) ([]*Contact, error)

	SetActive(ctx context.Context, id entity.ID, active bool) error
}
