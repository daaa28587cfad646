package batch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/app"
	"paybatch/internal/core/apperror"
	"paybatch/internal/core/numerator"
	"paybatch/internal/core/types"
	"paybatch/internal/domain"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/export"
	"paybatch/internal/infrastructure/storage/memory"
)

const (
	validCUIT = "20-12345678-6"
	validCBU  = "0170099220000003912346"
)

type fixture struct {
	ctx context.Context
	svc *app.Services
	ref *reference.Reference
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc, err := app.NewServices(app.MemoryStores(memory.New()))
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	ctx := context.Background()
	ref, err := svc.References.Create(ctx, "LABSE0000118", "")
	require.NoError(t, err)
	return &fixture{ctx: ctx, svc: svc, ref: ref}
}

func (f *fixture) ranges(t *testing.T, c checkrange.Category, prio int, start, end int64) {
	t.Helper()
	_, err := f.svc.Allocator.CreateRange(f.ctx, c, prio, start, end)
	require.NoError(t, err)
}

func (f *fixture) draft(t *testing.T) *batch.Batch {
	t.Helper()
	b, err := f.svc.Batches.Create(f.ctx, batch.CreateInput{
		ReferenceID: f.ref.ID, Branch: "001", DebitAccount: "0000003100012345",
	})
	require.NoError(t, err)
	return b
}

func checkItem(mode batch.PaymentMode, amount string) batch.ItemInput {
	return batch.ItemInput{
		DocNumber:   validCUIT,
		Beneficiary: "Proveedor",
		Amount:      types.MustAmount(amount),
		Mode:        mode,
	}
}

func transferItem(amount string) batch.ItemInput {
	return batch.ItemInput{
		DocNumber:   "30-71234567-1",
		Beneficiary: "Transferencia SA",
		Amount:      types.MustAmount(amount),
		Mode:        batch.ModeTransferOtherBank,
		AccountCode: validCBU,
	}
}

func (f *fixture) add(t *testing.T, b *batch.Batch, in batch.ItemInput) *batch.Item {
	t.Helper()
	it, err := f.svc.Batches.AddItem(f.ctx, b.ID, in)
	require.NoError(t, err)
	return it
}

func TestCreate_AssignsSequence(t *testing.T) {
	f := newFixture(t)

	first := f.draft(t)
	second := f.draft(t)

	assert.Equal(t, int64(1), first.Sequence)
	assert.Equal(t, int64(2), second.Sequence)
	assert.Equal(t, batch.StateDraft, first.State)
}

func TestCreate_Rejects(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Batches.Create(f.ctx, batch.CreateInput{ReferenceID: f.ref.ID, DebitAccount: "1"})
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation), "missing branch")

	_, err = f.svc.References.Deactivate(f.ctx, f.ref.ID)
	require.NoError(t, err)
	_, err = f.svc.Batches.Create(f.ctx, batch.CreateInput{ReferenceID: f.ref.ID, Branch: "001", DebitAccount: "1"})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState), "inactive reference")
}

func TestCreate_SequenceFailure(t *testing.T) {
	st := app.MemoryStores(memory.New())
	svc, err := app.NewServices(st)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	ctx := context.Background()
	ref, err := svc.References.Create(ctx, "LABSE0000119", "")
	require.NoError(t, err)

	batches := batch.NewService(batch.ServiceConfig{
		Repo:       st.Batches,
		References: svc.References,
		Allocator:  svc.Allocator,
		Ledger:     svc.Ledger,
		Sequence: &numerator.MockSequence{
			NextFunc: func(context.Context, string) (int64, error) {
				return 0, errors.New("counter offline")
			},
		},
		TxManager: st.TxManager,
	})

	_, err = batches.Create(ctx, batch.CreateInput{ReferenceID: ref.ID, Branch: "001", DebitAccount: "1"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "counter offline")

	list, err := batches.List(ctx, batch.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestAddItem_Validation(t *testing.T) {
	f := newFixture(t)
	b := f.draft(t)

	badCUIT := checkItem(batch.ModeCheckCommon, "10")
	badCUIT.DocNumber = "20-12345678-0"

	checkWithAccount := checkItem(batch.ModeCheckCommon, "10")
	checkWithAccount.AccountCode = validCBU

	badCBU := transferItem("10")
	badCBU.AccountCode = "0170099220000003912347"

	noBeneficiary := transferItem("10")
	noBeneficiary.Beneficiary = "  "

	tests := []struct {
		name     string
		in       batch.ItemInput
		wantCode string
	}{
		{name: "unknown mode", in: checkItem(3, "10"), wantCode: apperror.CodeValidation},
		{name: "zero amount", in: checkItem(batch.ModeCheckCommon, "0"), wantCode: apperror.CodeValidation},
		{name: "bad tax id", in: badCUIT, wantCode: apperror.CodeChecksum},
		{name: "check with account", in: checkWithAccount, wantCode: apperror.CodeValidation},
		{name: "transfer with bad account", in: badCBU, wantCode: apperror.CodeChecksum},
		{name: "missing beneficiary", in: noBeneficiary, wantCode: apperror.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Batches.AddItem(f.ctx, b.ID, tt.in)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, tt.wantCode), "got %v", err)
		})
	}

	got, err := f.svc.Batches.Get(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestAddAndRemoveItems(t *testing.T) {
	f := newFixture(t)
	b := f.draft(t)

	first := f.add(t, b, checkItem(batch.ModeCheckCommon, "10"))
	second := f.add(t, b, transferItem("20"))
	assert.Equal(t, 1, first.LineNo)
	assert.Equal(t, 2, second.LineNo)
	assert.Empty(t, first.Slot, "checks stay unnumbered while draft")
	assert.Equal(t, validCBU, second.Slot)

	require.NoError(t, f.svc.Batches.RemoveItem(f.ctx, b.ID, first.ID))
	third := f.add(t, b, checkItem(batch.ModeCheckDeferred, "5"))
	assert.Equal(t, 3, third.LineNo)

	got, err := f.svc.Batches.Get(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "25", got.Total().String())
	assert.Equal(t, 1, got.CheckCount())
	assert.Greater(t, got.Version, b.Version)
}

func TestFinalize_MixedBatch(t *testing.T) {
	f := newFixture(t)
	f.ranges(t, checkrange.CategoryCommon, 1, 91181244, 91181443)
	f.ranges(t, checkrange.CategoryDeferred, 1, 91181444, 91181843)

	b := f.draft(t)
	f.add(t, b, checkItem(batch.ModeCheckCommon, "1000.50"))
	f.add(t, b, transferItem("300.25"))
	f.add(t, b, checkItem(batch.ModeCheckDeferred, "200"))

	final, err := f.svc.Batches.Finalize(f.ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, batch.StateFinal, final.State)
	assert.NotNil(t, final.FinalizedAt)
	assert.Equal(t, "1500.75", final.Total().StringFixed(2))
	require.Len(t, final.Items, 3)
	assert.Equal(t, "91181244", final.Items[0].Slot)
	assert.Equal(t, validCBU, final.Items[1].Slot)
	assert.Nil(t, final.Items[1].IssuedCheckID)
	assert.Equal(t, "91181444", final.Items[2].Slot)

	checks, err := f.svc.Ledger.ListByBatch(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.Equal(t, ledger.StatePendingIssue, c.State)
		require.NotNil(t, c.BatchID)
		assert.Equal(t, b.ID, *c.BatchID)
	}
	n, ok := final.Items[0].CheckNumber()
	require.True(t, ok)
	assert.Equal(t, int64(91181244), n)

	_, err = f.svc.Batches.AddItem(f.ctx, b.ID, transferItem("1"))
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))

	_, err = f.svc.Batches.Finalize(f.ctx, b.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))

	artifact, err := f.svc.Batches.Download(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "planilla_LABSE0000118_00001.xlsx", artifact.FileName)
	rows, err := export.ReadWorkbook(artifact.Data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "91181444", rows[2].AccountOrCheck)

	downloaded, err := f.svc.Batches.Get(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.StateDownloaded, downloaded.State)

	_, err = f.svc.Batches.Download(f.ctx, b.ID)
	assert.NoError(t, err, "downloads can be repeated")
}

func TestFinalize_PartialThenRetry(t *testing.T) {
	f := newFixture(t)
	f.ranges(t, checkrange.CategoryCommon, 1, 10, 11)

	b := f.draft(t)
	for range 3 {
		f.add(t, b, checkItem(batch.ModeCheckCommon, "10"))
	}

	_, err := f.svc.Batches.Finalize(f.ctx, b.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeExhausted))

	partial, err := f.svc.Batches.Get(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.StateDraft, partial.State)
	assert.Equal(t, "10", partial.Items[0].Slot)
	assert.Equal(t, "11", partial.Items[1].Slot)
	assert.Empty(t, partial.Items[2].Slot)

	f.ranges(t, checkrange.CategoryCommon, 2, 20, 30)

	final, err := f.svc.Batches.Finalize(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", final.Items[0].Slot)
	assert.Equal(t, "11", final.Items[1].Slot)
	assert.Equal(t, "20", final.Items[2].Slot)

	checks, err := f.svc.Ledger.ListByBatch(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, checks, 3, "no item was numbered twice")

	usage, err := f.svc.Allocator.Usage(f.ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	assert.Equal(t, int64(3), usage.Used)
}

func TestRemoveItem_KeepsNumberedItems(t *testing.T) {
	f := newFixture(t)
	f.ranges(t, checkrange.CategoryCommon, 1, 10, 11)

	b := f.draft(t)
	items := make([]*batch.Item, 0, 3)
	for range 3 {
		items = append(items, f.add(t, b, checkItem(batch.ModeCheckCommon, "10")))
	}

	_, err := f.svc.Batches.Finalize(f.ctx, b.ID)
	require.True(t, apperror.IsCode(err, apperror.CodeExhausted))

	err = f.svc.Batches.RemoveItem(f.ctx, b.ID, items[0].ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))

	require.NoError(t, f.svc.Batches.RemoveItem(f.ctx, b.ID, items[2].ID), "unnumbered items can still go")

	final, err := f.svc.Batches.Finalize(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, final.Items, 2)
	assert.Equal(t, "10", final.Items[0].Slot)
	assert.Equal(t, "11", final.Items[1].Slot)

	checks, err := f.svc.Ledger.ListByBatch(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, checks, len(final.Items), "every issued check has a line in the batch")
}

type flakyExporter struct {
	batch.Exporter
	fail bool
}

func (e *flakyExporter) Export(ctx context.Context, b *batch.Batch, ref *reference.Reference) (*batch.Artifact, error) {
	if e.fail {
		return nil, errors.New("disk full")
	}
	return e.Exporter.Export(ctx, b, ref)
}

func TestFinalize_ExportFailureKeepsDraft(t *testing.T) {
	st := app.MemoryStores(memory.New())
	svc, err := app.NewServices(st)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	ctx := context.Background()
	ref, err := svc.References.Create(ctx, "LABSE0000120", "")
	require.NoError(t, err)
	_, err = svc.Allocator.CreateRange(ctx, checkrange.CategoryCommon, 1, 10, 20)
	require.NoError(t, err)

	exporter := &flakyExporter{Exporter: svc.Archive, fail: true}
	batches := batch.NewService(batch.ServiceConfig{
		Repo:       st.Batches,
		References: svc.References,
		Allocator:  svc.Allocator,
		Ledger:     svc.Ledger,
		Sequence:   st.Sequence,
		TxManager:  st.TxManager,
		Exporter:   exporter,
	})

	b, err := batches.Create(ctx, batch.CreateInput{ReferenceID: ref.ID, Branch: "001", DebitAccount: "1"})
	require.NoError(t, err)
	_, err = batches.AddItem(ctx, b.ID, checkItem(batch.ModeCheckCommon, "10"))
	require.NoError(t, err)

	_, err = batches.Finalize(ctx, b.ID)
	require.ErrorContains(t, err, "disk full")

	stored, err := batches.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.StateDraft, stored.State)
	assert.Equal(t, "10", stored.Items[0].Slot, "the number stays with its line")

	exporter.fail = false
	final, err := batches.Finalize(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.StateFinal, final.State)

	artifact, err := batches.Download(ctx, b.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, artifact.Data)
}

func TestFinalize_Rejects(t *testing.T) {
	f := newFixture(t)

	empty := f.draft(t)
	_, err := f.svc.Batches.Finalize(f.ctx, empty.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = f.svc.Batches.Download(f.ctx, empty.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))

	transfersOnly := f.draft(t)
	f.add(t, transfersOnly, transferItem("42"))
	final, err := f.svc.Batches.Finalize(f.ctx, transfersOnly.ID)
	require.NoError(t, err, "no check range is needed without checks")
	assert.Equal(t, batch.StateFinal, final.State)

	_, err = f.svc.Batches.MarkDownloaded(f.ctx, empty.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestListAndStats(t *testing.T) {
	f := newFixture(t)
	first := f.draft(t)
	f.add(t, first, transferItem("100"))
	_, err := f.svc.Batches.Finalize(f.ctx, first.ID)
	require.NoError(t, err)
	second := f.draft(t)
	f.add(t, second, transferItem("7"))

	res, err := f.svc.Batches.List(f.ctx, batch.ListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, second.ID, res.Items[0].ID, "newest first")

	drafts, err := f.svc.Batches.List(f.ctx, batch.ListFilter{State: batch.StateDraft, Page: domain.Page{Limit: 10}})
	require.NoError(t, err)
	require.Len(t, drafts.Items, 1)
	assert.Equal(t, second.ID, drafts.Items[0].ID)

	stats, err := f.svc.Batches.Stats(f.ctx)
	require.NoError(t, err)
	require.Len(t, stats, len(batch.States))
	assert.Equal(t, int64(1), stats[0].Count)
	assert.Equal(t, "7", stats[0].Total.String())
	assert.Equal(t, int64(1), stats[1].Count)
	assert.Equal(t, "100", stats[1].Total.String())
	assert.Zero(t, stats[2].Count)

	err = f.svc.References.Delete(f.ctx, f.ref.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState), "reference in use")
}
