// Package memory provides in-process implementations of every repository.
// It backs the server's memory driver and the service tests.
//
// Data is kept behind a single RWMutex and copied on the way in and out, so
// callers never share mutable state with the store. Transactions serialize
// units of work but do not roll back.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"paybatch/internal/core/entity"
	"paybatch/internal/core/numerator"
	"paybatch/internal/core/tx"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/contact"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/export"
)

// Store holds all tables.
type Store struct {
	mu sync.RWMutex

	ranges     map[entity.ID]*checkrange.NumberRange
	checks     map[entity.ID]*ledger.IssuedCheck
	batches    map[entity.ID]*batch.Batch
	items      map[entity.ID]*batch.Item
	references map[entity.ID]*reference.Reference
	contacts   map[entity.ID]*contact.Contact
	artifacts  map[entity.ID]*export.StoredArtifact
	sequences  map[string]int64

	txm *TxManager
}

// New creates an empty store.
func New() *Store {
	return &Store{
		ranges:     make(map[entity.ID]*checkrange.NumberRange),
		checks:     make(map[entity.ID]*ledger.IssuedCheck),
		batches:    make(map[entity.ID]*batch.Batch),
		items:      make(map[entity.ID]*batch.Item),
		references: make(map[entity.ID]*reference.Reference),
		contacts:   make(map[entity.ID]*contact.Contact),
		artifacts:  make(map[entity.ID]*export.StoredArtifact),
		sequences:  make(map[string]int64),
		txm:        &TxManager{},
	}
}

// Ranges returns the check range repository.
func (s *Store) Ranges() *RangeRepo { return &RangeRepo{s} }

// Checks returns the issued-check repository.
func (s *Store) Checks() *CheckRepo { return &CheckRepo{s} }

// Batches returns the payment batch repository.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s} }

// References returns the reference repository.
func (s *Store) References() *ReferenceRepo { return &ReferenceRepo{s} }

// Contacts returns the contact repository.
func (s *Store) Contacts() *ContactRepo { return &ContactRepo{s} }

// Artifacts returns the workbook archive store.
func (s *Store) Artifacts() *ArtifactRepo { return &ArtifactRepo{s} }

// Sequence returns the shared counter.
func (s *Store) Sequence() *Sequence { return &Sequence{s} }

// TxManager returns the store's transaction manager.
func (s *Store) TxManager() *TxManager { return s.txm }

// TxManager serializes units of work. Nested calls reuse the outer unit.
type TxManager struct {
	mu sync.Mutex
}

var _ tx.Manager = (*TxManager)(nil)

type txKey struct{}

// RunInTransaction runs fn while holding the store-wide unit-of-work lock.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) == m {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, m))
}

// Sequence implements numerator.Sequence.
type Sequence struct{ s *Store }

var _ numerator.Sequence = (*Sequence)(nil)

func (q *Sequence) Next(ctx context.Context, key string) (int64, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.sequences[key]++
	return q.s.sequences[key], nil
}

func (q *Sequence) Set(ctx context.Context, key string, value int64) error {
	if value < 0 {
		return fmt.Errorf("set %s: negative value %d", key, value)
	}
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.sequences[key] = value
	return nil
}

func touchNow() time.Time { return time.Now().UTC() }
