package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences rows keyed by the first argument.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	if strings.Contains(sql, "current_val = $2") {
		m.values[key] = args[1].(int64)
	} else {
		m.values[key]++
	}
	return &mockRow{val: m.values[key]}
}

func TestNext_StartsAtOneAndIncrements(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	first, err := svc.Next(ctx, "payment_batch")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := svc.Next(ctx, "payment_batch")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	other, err := svc.Next(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "keys are independent")
}

func TestSet_MovesCounter(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "payment_batch", 117))

	next, err := svc.Next(ctx, "payment_batch")
	require.NoError(t, err)
	assert.Equal(t, int64(118), next)

	assert.Error(t, svc.Set(ctx, "payment_batch", -1))
}

func TestNext_Concurrent(t *testing.T) {
	svc := New(newMockQuerier())
	ctx := context.Background()

	const n = 50
	var mu sync.Mutex
	seen := make(map[int64]bool, n)

	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		wg.Go(func() {
			v, err := svc.Next(ctx, "payment_batch")
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing %d", i)
	}
}

func TestNext_QueryError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")

	_, err := NewFromContext(func(context.Context) Querier { return q }).Next(context.Background(), "payment_batch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNext_Uninitialized(t *testing.T) {
	var svc *Service
	_, err := svc.Next(context.Background(), "x")
	assert.Error(t, err)
}
