package numerator

import (
	"context"
)

// MockSequence is a Sequence for unit tests. Nil funcs fall back to an
// in-memory counter shared by all keys.
type MockSequence struct {
	NextFunc func(ctx context.Context, key string) (int64, error)
	SetFunc  func(ctx context.Context, key string, value int64) error

	last int64
}

// Next implements Sequence.
func (m *MockSequence) Next(ctx context.Context, key string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, key)
	}
	m.last++
	return m.last, nil
}

// Set implements Sequence.
func (m *MockSequence) Set(ctx context.Context, key string, value int64) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.last = value
	return nil
}

var _ Sequence = (*MockSequence)(nil)
