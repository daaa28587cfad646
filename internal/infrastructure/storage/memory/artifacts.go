package memory

import (
	"context"
	"slices"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/infrastructure/export"
)

// ArtifactRepo implements export.Store.
type ArtifactRepo struct{ s *Store }

var _ export.Store = (*ArtifactRepo)(nil)

func (r *ArtifactRepo) SaveArtifact(ctx context.Context, a *export.StoredArtifact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *a
	cp.Data = slices.Clone(a.Data)
	r.s.artifacts[a.BatchID] = &cp
	return nil
}

func (r *ArtifactRepo) GetArtifact(ctx context.Context, batchID entity.ID) (*export.StoredArtifact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.artifacts[batchID]
	if !ok {
		return nil, apperror.NewNotFound("batch workbook", batchID.String())
	}
	cp := *a
	cp.Data = slices.Clone(a.Data)
	return &cp, nil
}
