package export_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/checkdigit"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/types"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/export"
	"paybatch/internal/infrastructure/storage/memory"
)

func sampleBatch() (*batch.Batch, *reference.Reference) {
	ref := &reference.Reference{Base: entity.NewBase(), Code: "LABSE0000118", Active: true}
	issue := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	deferred := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)

	b := &batch.Batch{
		Base:         entity.NewBase(),
		ReferenceID:  ref.ID,
		Sequence:     42,
		Branch:       "001",
		DebitAccount: "0000003100012345",
		State:        batch.StateFinal,
	}
	b.Items = []*batch.Item{
		{
			ID: entity.NewID(), BatchID: b.ID, LineNo: 1,
			DocType: batch.DocCUIT, DocNumber: checkdigit.MustTaxID("20123456786"),
			PaymentID: "FAC-0001", Beneficiary: "Proveedor Uno",
			Amount: types.MustAmount("1000.50"), Mode: batch.ModeCheckDeferred,
			Slot: "91181444", RegistrationMark: "S", IssueDate: &issue, DeferredDate: &deferred,
		},
		{
			ID: entity.NewID(), BatchID: b.ID, LineNo: 2,
			DocType: batch.DocCUIT, DocNumber: checkdigit.MustTaxID("30712345671"),
			Beneficiary: "Transferencia SA",
			Amount: types.MustAmount("300.25"), Mode: batch.ModeTransferOtherBank,
			Slot: "0170099220000003912346",
		},
	}
	total := types.MustAmount("1300.75")
	b.CachedTotal = &total
	return b, ref
}

func TestRenderWorkbook_RoundTrip(t *testing.T) {
	b, ref := sampleBatch()

	data, err := export.RenderWorkbook(b, ref)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	rows, err := export.ReadWorkbook(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "CUIT", first.DocType)
	assert.Equal(t, "20123456786", first.DocNumber)
	assert.Equal(t, "001", first.Branch)
	assert.Equal(t, "FAC-0001", first.PaymentID)
	assert.Equal(t, "Proveedor Uno", first.Beneficiary)
	assert.Equal(t, "1000.5", first.Amount)
	assert.Equal(t, "0000003100012345", first.DebitAccount)
	assert.Equal(t, "91181444", first.AccountOrCheck)
	assert.Equal(t, "S", first.RegistrationMark)
	assert.Equal(t, "15/10/2026", first.IssueDate)
	assert.Equal(t, "30/11/2026", first.DeferredDate)

	mode, err := first.ParseMode()
	require.NoError(t, err)
	assert.Equal(t, batch.ModeCheckDeferred, mode)

	second := rows[1]
	assert.Equal(t, "0170099220000003912346", second.AccountOrCheck)
	assert.Empty(t, second.IssueDate)
	assert.Empty(t, second.DeferredDate)
}

func TestFileName(t *testing.T) {
	b, ref := sampleBatch()
	assert.Equal(t, "planilla_LABSE0000118_00042.xlsx", export.FileName(b, ref))
}

func TestReadWorkbook_RejectsGarbage(t *testing.T) {
	_, err := export.ReadWorkbook([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestArchive_ExportAndFetch(t *testing.T) {
	ctx := context.Background()
	store := memory.New().Artifacts()
	archive, err := export.NewArchive(store)
	require.NoError(t, err)
	t.Cleanup(archive.Close)

	b, ref := sampleBatch()
	exported, err := archive.Export(ctx, b, ref)
	require.NoError(t, err)
	assert.Equal(t, export.ContentType, exported.ContentType)

	stored, err := store.GetArtifact(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, export.CodecZstd, stored.Codec)
	assert.Equal(t, int64(len(exported.Data)), stored.RawSize)

	fetched, err := archive.Fetch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, exported.Data, fetched.Data)
	assert.Equal(t, "planilla_LABSE0000118_00042.xlsx", fetched.FileName)

	_, err = archive.Fetch(ctx, entity.NewID())
	assert.True(t, apperror.IsNotFound(err))
}
