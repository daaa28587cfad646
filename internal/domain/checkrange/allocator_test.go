package checkrange_test

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybatch/internal/core/apperror"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/infrastructure/storage/memory"
)

func newAllocator(t *testing.T) *checkrange.Allocator {
	t.Helper()
	return checkrange.NewAllocator(memory.New().Ranges())
}

func mustCreate(t *testing.T, a *checkrange.Allocator, c checkrange.Category, prio int, start, end int64) *checkrange.NumberRange {
	t.Helper()
	r, err := a.CreateRange(context.Background(), c, prio, start, end)
	require.NoError(t, err)
	return r
}

func TestNext_Sequential(t *testing.T) {
	ctx := context.Background()
	a := newAllocator(t)
	mustCreate(t, a, checkrange.CategoryCommon, 1, 91181244, 91181443)

	before, err := a.Usage(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)

	var got []int64
	for range 5 {
		n, err := a.Next(ctx, checkrange.CategoryCommon)
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int64{91181244, 91181245, 91181246, 91181247, 91181248}, got)

	after, err := a.Usage(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	assert.Equal(t, before.Available-5, after.Available)
	assert.Equal(t, int64(5), after.Used)
	assert.Equal(t, int64(200), after.TotalCapacity)
	require.NotNil(t, after.Current)
	assert.Equal(t, int64(91181249), after.Current.Cursor)
}

func TestNext_CategoriesAreIndependent(t *testing.T) {
	ctx := context.Background()
	a := newAllocator(t)
	mustCreate(t, a, checkrange.CategoryCommon, 1, 91181244, 91181443)
	mustCreate(t, a, checkrange.CategoryDeferred, 1, 91181444, 91181843)

	c, err := a.Next(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	d, err := a.Next(ctx, checkrange.CategoryDeferred)
	require.NoError(t, err)

	assert.Equal(t, int64(91181244), c)
	assert.Equal(t, int64(91181444), d)
}

func TestNext_FalloverAndExhaustion(t *testing.T) {
	ctx := context.Background()
	a := newAllocator(t)
	mustCreate(t, a, checkrange.CategoryDeferred, 2, 100, 101)
	mustCreate(t, a, checkrange.CategoryDeferred, 1, 1, 2)

	var got []int64
	for range 4 {
		n, err := a.Next(ctx, checkrange.CategoryDeferred)
		require.NoError(t, err)
		got = append(got, n)
	}
	assert.Equal(t, []int64{1, 2, 100, 101}, got)

	_, err := a.Next(ctx, checkrange.CategoryDeferred)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeExhausted))

	// Exhaustion does not move cursors past End+1.
	ranges, err := a.List(ctx, checkrange.CategoryDeferred, true)
	require.NoError(t, err)
	for _, r := range ranges {
		assert.Equal(t, r.End+1, r.Cursor)
		assert.Zero(t, r.AvailableCount())
	}
}

func TestNext_NoRanges(t *testing.T) {
	_, err := newAllocator(t).Next(context.Background(), checkrange.CategoryCommon)
	assert.True(t, apperror.IsCode(err, apperror.CodeExhausted))
}

func TestNext_UnknownCategory(t *testing.T) {
	_, err := newAllocator(t).Next(context.Background(), "travel")
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestNext_SkipsInactiveRanges(t *testing.T) {
	ctx := context.Background()
	a := newAllocator(t)
	first := mustCreate(t, a, checkrange.CategoryCommon, 1, 10, 20)
	mustCreate(t, a, checkrange.CategoryCommon, 2, 30, 40)

	n, err := a.Next(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	deactivated, err := a.Deactivate(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.Active)
	assert.Equal(t, int64(11), deactivated.Cursor, "cursor kept while inactive")

	n, err = a.Next(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	assert.Equal(t, int64(30), n)

	_, err = a.Activate(ctx, first.ID)
	require.NoError(t, err)
	n, err = a.Next(ctx, checkrange.CategoryCommon)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	active, err := a.List(ctx, checkrange.CategoryCommon, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestCreateRange_Rejects(t *testing.T) {
	ctx := context.Background()
	a := newAllocator(t)
	mustCreate(t, a, checkrange.CategoryCommon, 1, 100, 199)

	tests := []struct {
		name     string
		category checkrange.Category
		priority int
		start    int64
		end      int64
		wantCode string
	}{
		{name: "start equals end", category: checkrange.CategoryCommon, priority: 2, start: 500, end: 500, wantCode: apperror.CodeInvalidRange},
		{name: "start above end", category: checkrange.CategoryCommon, priority: 2, start: 600, end: 500, wantCode: apperror.CodeInvalidRange},
		{name: "non-positive start", category: checkrange.CategoryCommon, priority: 2, start: 0, end: 10, wantCode: apperror.CodeInvalidRange},
		{name: "zero priority", category: checkrange.CategoryCommon, priority: 0, start: 500, end: 600, wantCode: apperror.CodeInvalidRange},
		{name: "duplicate priority", category: checkrange.CategoryCommon, priority: 1, start: 500, end: 600, wantCode: apperror.CodeDuplicateRange},
		{name: "overlap", category: checkrange.CategoryCommon, priority: 2, start: 150, end: 250, wantCode: apperror.CodeInvalidRange},
		{name: "unknown category", category: "travel", priority: 1, start: 500, end: 600, wantCode: apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.CreateRange(ctx, tt.category, tt.priority, tt.start, tt.end)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, tt.wantCode), "got %v", err)
		})
	}

	// Same numbers in the other category are fine.
	mustCreate(t, a, checkrange.CategoryDeferred, 1, 100, 199)
}

func TestNext_ConcurrentCallersNeverShareANumber(t *testing.T) {
	ctx := context.Background()
	a := newAllocator(t)
	mustCreate(t, a, checkrange.CategoryCommon, 1, 91181244, 91181343)
	mustCreate(t, a, checkrange.CategoryCommon, 2, 91181344, 91181443)

	const workers, perWorker = 20, 10

	var (
		mu  sync.Mutex
		got []int64
	)
	var wg conc.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				n, err := a.Next(ctx, checkrange.CategoryCommon)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				got = append(got, n)
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	require.Len(t, got, workers*perWorker)
	slices.Sort(got)
	for i, n := range got {
		assert.Equal(t, int64(91181244+i), n)
	}

	_, err := a.Next(ctx, checkrange.CategoryCommon)
	assert.True(t, apperror.IsCode(err, apperror.CodeExhausted))
}
