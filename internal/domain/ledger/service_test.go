package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/core/types"
	"paybatch/internal/domain"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/infrastructure/storage/memory"
)

func record(t *testing.T, svc *ledger.Service, number int64, category checkrange.Category) *ledger.IssuedCheck {
	t.Helper()
	c, err := svc.Record(context.Background(), ledger.RecordInput{
		Number:      number,
		Category:    category,
		Beneficiary: "Proveedor",
		Amount:      types.MustAmount("150.00"),
		IssueDate:   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return c
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New().Checks())

	c := record(t, svc, 91181244, checkrange.CategoryCommon)
	assert.Equal(t, ledger.StatePendingIssue, c.State)
	assert.False(t, c.State.IsTerminal())

	t.Run("duplicate number in same category", func(t *testing.T) {
		_, err := svc.Record(ctx, ledger.RecordInput{
			Number: 91181244, Category: checkrange.CategoryCommon,
			Amount: types.MustAmount("1"), IssueDate: time.Now(),
		})
		assert.True(t, apperror.IsCode(err, apperror.CodeDuplicate))
	})

	t.Run("same number in other category", func(t *testing.T) {
		record(t, svc, 91181244, checkrange.CategoryDeferred)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := svc.Record(ctx, ledger.RecordInput{Number: 0, Category: checkrange.CategoryCommon, Amount: types.MustAmount("1")})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

		_, err = svc.Record(ctx, ledger.RecordInput{Number: 5, Category: checkrange.CategoryCommon, Amount: types.MustAmount("0")})
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	})

	t.Run("lookup by number", func(t *testing.T) {
		got, err := svc.GetByNumber(ctx, checkrange.CategoryCommon, 91181244)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)

		_, err = svc.GetByNumber(ctx, checkrange.CategoryCommon, 1)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		path    []ledger.State
		wantErr bool
	}{
		{name: "confirm", path: []ledger.State{ledger.StateConfirmedIssue}},
		{name: "confirm then load", path: []ledger.State{ledger.StateConfirmedIssue, ledger.StateLoadedInSystem}},
		{name: "void pending", path: []ledger.State{ledger.StateUnused}},
		{name: "void confirmed", path: []ledger.State{ledger.StateConfirmedIssue, ledger.StateUnused}},
		{name: "load before confirm", path: []ledger.State{ledger.StateLoadedInSystem}, wantErr: true},
		{name: "back to pending", path: []ledger.State{ledger.StateConfirmedIssue, ledger.StatePendingIssue}, wantErr: true},
		{name: "leave loaded", path: []ledger.State{ledger.StateConfirmedIssue, ledger.StateLoadedInSystem, ledger.StateUnused}, wantErr: true},
		{name: "leave unused", path: []ledger.State{ledger.StateUnused, ledger.StateConfirmedIssue}, wantErr: true},
		{name: "self transition", path: []ledger.State{ledger.StatePendingIssue}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc := ledger.NewService(memory.New().Checks())
			c := record(t, svc, 1000, checkrange.CategoryCommon)

			var err error
			for _, to := range tt.path {
				c, err = svc.Transition(ctx, c.ID, to)
				if err != nil {
					break
				}
			}

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path[len(tt.path)-1], c.State)

			stored, err := svc.Get(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, c.State, stored.State)
			assert.Equal(t, len(tt.path)+1, stored.Version)
		})
	}
}

func TestTransition_FailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New().Checks())
	c := record(t, svc, 7, checkrange.CategoryDeferred)

	_, err := svc.MarkLoaded(ctx, c.ID)
	require.Error(t, err)

	stored, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatePendingIssue, stored.State)
}

func TestMarkUnused(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New().Checks())

	pending := record(t, svc, 11, checkrange.CategoryCommon)
	voided, err := svc.MarkUnused(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StateUnused, voided.State)
	assert.True(t, voided.State.IsTerminal())

	_, err = svc.MarkUnused(ctx, pending.ID)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransition))
}

func TestListByBatch_ReturnsEveryCheck(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New().Checks())
	batchID := entity.NewID()

	const n = domain.MaxLimit + 20
	for i := range n {
		_, err := svc.Record(ctx, ledger.RecordInput{
			Number:      int64(n - i),
			Category:    checkrange.CategoryCommon,
			BatchID:     &batchID,
			Beneficiary: "Proveedor",
			Amount:      types.MustAmount("1"),
			IssueDate:   time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	record(t, svc, 99999, checkrange.CategoryCommon)

	checks, err := svc.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, checks, n)
	assert.Equal(t, int64(1), checks[0].Number)
	assert.Equal(t, int64(n), checks[n-1].Number)
}

func TestTransition_UnknownState(t *testing.T) {
	svc := ledger.NewService(memory.New().Checks())
	c := record(t, svc, 7, checkrange.CategoryDeferred)

	_, err := svc.Transition(context.Background(), c.ID, "lost")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestUpdateState_StaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := memory.New().Checks()
	svc := ledger.NewService(repo)
	c := record(t, svc, 42, checkrange.CategoryCommon)

	first, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	second, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)

	first.State = ledger.StateConfirmedIssue
	require.NoError(t, repo.UpdateState(ctx, first))

	second.State = ledger.StateUnused
	err = repo.UpdateState(ctx, second)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestListAndCount(t *testing.T) {
	ctx := context.Background()
	svc := ledger.NewService(memory.New().Checks())
	batchID := entity.NewID()

	for _, n := range []int64{12, 10, 11} {
		_, err := svc.Record(ctx, ledger.RecordInput{
			Number: n, Category: checkrange.CategoryCommon, BatchID: &batchID,
			Amount: types.MustAmount("10"), IssueDate: time.Now(),
		})
		require.NoError(t, err)
	}
	other := record(t, svc, 5, checkrange.CategoryDeferred)
	_, err := svc.Confirm(ctx, other.ID)
	require.NoError(t, err)

	byBatch, err := svc.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, byBatch, 3)
	assert.Equal(t, []int64{10, 11, 12}, []int64{byBatch[0].Number, byBatch[1].Number, byBatch[2].Number})

	page, err := svc.List(ctx, ledger.ListFilter{Page: domain.Page{Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.TotalCount)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, checkrange.CategoryCommon, page.Items[0].Category)

	confirmed, err := svc.List(ctx, ledger.ListFilter{State: ledger.StateConfirmedIssue})
	require.NoError(t, err)
	require.Len(t, confirmed.Items, 1)
	assert.Equal(t, other.ID, confirmed.Items[0].ID)

	counts, err := svc.CountByState(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	require.Len(t, counts, len(ledger.States))
	assert.Equal(t, ledger.StatePendingIssue, counts[0].State)
	assert.Equal(t, int64(3), counts[0].Count)
	assert.Zero(t, counts[1].Count)
}
