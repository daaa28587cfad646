package payment_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"paybatch/internal/core/entity"
	"paybatch/internal/infrastructure/export"
	"paybatch/internal/infrastructure/storage/postgres"
)

// ArtifactRepo implements export.Store.
type ArtifactRepo struct {
	baseRepo
	cols []string
}

var _ export.Store = (*ArtifactRepo)(nil)

// NewArtifactRepo creates the workbook archive repository.
func NewArtifactRepo(txm *postgres.TxManager) *ArtifactRepo {
	return &ArtifactRepo{
		baseRepo: baseRepo{txm: txm},
		cols:     postgres.ExtractDBColumns[export.StoredArtifact](),
	}
}

// SaveArtifact upserts the artifact of a batch.
func (r *ArtifactRepo) SaveArtifact(ctx context.Context, a *export.StoredArtifact) error {
	_, err := r.exec(ctx, r.builder().
		Insert(exportsTable).
		SetMap(postgres.Pick(postgres.StructToMap(a), r.cols)).
		Suffix(`ON CONFLICT (batch_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			content_type = EXCLUDED.content_type,
			codec = EXCLUDED.codec,
			raw_size = EXCLUDED.raw_size,
			data = EXCLUDED.data,
			created_at = EXCLUDED.created_at`))
	return err
}

func (r *ArtifactRepo) GetArtifact(ctx context.Context, batchID entity.ID) (*export.StoredArtifact, error) {
	var a export.StoredArtifact
	q := r.builder().Select(r.cols...).From(exportsTable).Where(squirrel.Eq{"batch_id": batchID})
	if err := r.get(ctx, &a, q, "batch workbook", batchID.String()); err != nil {
		return nil, err
	}
	return &a, nil
}
