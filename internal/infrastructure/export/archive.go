package export

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"paybatch/internal/core/entity"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/reference"
)

// CodecZstd tags artifacts compressed with zstd.
const CodecZstd = "zstd"

// StoredArtifact is the persisted, compressed form of a workbook.
type StoredArtifact struct {
	BatchID     entity.ID `db:"batch_id"`
	FileName    string    `db:"file_name"`
	ContentType string    `db:"content_type"`
	Codec       string    `db:"codec"`
	RawSize     int64     `db:"raw_size"`
	Data        []byte    `db:"data"`
	CreatedAt   time.Time `db:"created_at"`
}

// Store persists artifacts. SaveArtifact replaces any previous artifact of the batch.
type Store interface {
	SaveArtifact(ctx context.Context, a *StoredArtifact) error
	GetArtifact(ctx context.Context, batchID entity.ID) (*StoredArtifact, error)
}

// Archive renders workbooks and keeps them compressed in a Store.
type Archive struct {
	store   Store
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Compile-time check that Archive implements batch.Exporter.
var _ batch.Exporter = (*Archive)(nil)

// NewArchive creates an Archive over store.
func NewArchive(store Store) (*Archive, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Archive{
		store:   store,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close releases the decoder's resources.
func (a *Archive) Close() {
	a.decoder.Close()
}

// Export renders the batch workbook and stores it compressed.
func (a *Archive) Export(ctx context.Context, b *batch.Batch, ref *reference.Reference) (*batch.Artifact, error) {
	raw, err := RenderWorkbook(b, ref)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored := &StoredArtifact{
		BatchID:     b.ID,
		FileName:    FileName(b, ref),
		ContentType: ContentType,
		Codec:       CodecZstd,
		RawSize:     int64(len(raw)),
		Data:        a.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)),
		CreatedAt:   now,
	}
	if err := a.store.SaveArtifact(ctx, stored); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	return &batch.Artifact{
		BatchID:     b.ID,
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		Data:        raw,
		CreatedAt:   now,
	}, nil
}

// Fetch loads and decompresses the workbook of a batch.
func (a *Archive) Fetch(ctx context.Context, batchID entity.ID) (*batch.Artifact, error) {
	stored, err := a.store.GetArtifact(ctx, batchID)
	if err != nil {
		return nil, err
	}

	data := stored.Data
	if stored.Codec == CodecZstd {
		data, err = a.decoder.DecodeAll(stored.Data, make([]byte, 0, stored.RawSize))
		if err != nil {
			return nil, fmt.Errorf("decompress artifact of batch %s: %w", batchID, err)
		}
	}

	return &batch.Artifact{
		BatchID:     stored.BatchID,
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		Data:        data,
		CreatedAt:   stored.CreatedAt,
	}, nil
}
