// Package app assembles the domain services on top of a storage backend.
package app

import (
	"context"
	"fmt"

	corenumerator "paybatch/internal/core/numerator"
	"paybatch/internal/core/tx"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/contact"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/export"
	"paybatch/internal/infrastructure/numerator"
	"paybatch/internal/infrastructure/storage/memory"
	"paybatch/internal/infrastructure/storage/postgres"
	"paybatch/internal/infrastructure/storage/postgres/payment_repo"
)

// Backend names accepted by the configuration.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Stores is the persistence a Services set runs on.
type Stores struct {
	Ranges     checkrange.Repository
	Checks     ledger.Repository
	Batches    batch.Repository
	References reference.Repository
	Contacts   contact.Repository
	Artifacts  export.Store
	Sequence   corenumerator.Sequence
	TxManager  tx.Manager
}

// MemoryStores backs everything with one in-process store.
func MemoryStores(s *memory.Store) Stores {
	return Stores{
		Ranges:     s.Ranges(),
		Checks:     s.Checks(),
		Batches:    s.Batches(),
		References: s.References(),
		Contacts:   s.Contacts(),
		Artifacts:  s.Artifacts(),
		Sequence:   s.Sequence(),
		TxManager:  s.TxManager(),
	}
}

// PostgresStores backs everything with PostgreSQL repositories sharing txm.
func PostgresStores(txm *postgres.TxManager) Stores {
	return Stores{
		Ranges:     payment_repo.NewRangeRepo(txm),
		Checks:     payment_repo.NewCheckRepo(txm),
		Batches:    payment_repo.NewBatchRepo(txm),
		References: payment_repo.NewReferenceRepo(txm),
		Contacts:   payment_repo.NewContactRepo(txm),
		Artifacts:  payment_repo.NewArtifactRepo(txm),
		Sequence: numerator.NewFromContext(func(ctx context.Context) numerator.Querier {
			return txm.GetQuerier(ctx)
		}),
		TxManager: txm,
	}
}

// Services holds the wired domain services.
type Services struct {
	Allocator  *checkrange.Allocator
	Ledger     *ledger.Service
	References *reference.Service
	Contacts   *contact.Service
	Batches    *batch.Service
	Archive    *export.Archive
}

// NewServices wires the domain services over st. Close releases the archive codecs.
func NewServices(st Stores, opts ...checkrange.Option) (*Services, error) {
	archive, err := export.NewArchive(st.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	allocator := checkrange.NewAllocator(st.Ranges, opts...)
	checks := ledger.NewService(st.Checks)
	refs := reference.NewService(st.References, st.Batches)

	batches := batch.NewService(batch.ServiceConfig{
		Repo:       st.Batches,
		References: refs,
		Allocator:  allocator,
		Ledger:     checks,
		Sequence:   st.Sequence,
		TxManager:  st.TxManager,
		Exporter:   archive,
	})
	registerBatchHooks(batches, allocator)

	return &Services{
		Allocator:  allocator,
		Ledger:     checks,
		References: refs,
		Contacts:   contact.NewService(st.Contacts),
		Batches:    batches,
		Archive:    archive,
	}, nil
}

// Close releases resources held by the services.
func (s *Services) Close() {
	s.Archive.Close()
}
