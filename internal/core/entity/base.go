// Package entity provides identity, versioning and audit fields shared by
// every persisted aggregate.
package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ID is the primary key type for all entities (UUIDv7, time-ordered).
type ID = uuid.UUID

// NewID generates a new UUIDv7.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// ParseID converts string to ID with validation.
func ParseID(s string) (ID, error) {
	return uuid.Parse(s)
}

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	Validate(ctx context.Context) error
}

// Base contains the fields every aggregate carries.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a Base with generated ID and timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        NewID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.Version++
}

// GetID returns the entity ID.
func (b *Base) GetID() ID { return b.ID }
