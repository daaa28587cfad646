package checkrange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/pkg/logger"
)

var tracer = otel.Tracer("paybatch/checkrange")

// errCursorConflict signals that another caller advanced the cursor first.
var errCursorConflict = errors.New("check range cursor moved concurrently")

// RetryPolicy bounds the compare-and-advance loop.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy keeps contention retries short; a single advance is one UPDATE.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		MaxElapsedTime:  10 * time.Second,
	}
}

func (p RetryPolicy) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = p.MaxElapsedTime
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	return b
}

// Allocator owns the check ranges and is the only writer of their cursors.
type Allocator struct {
	repo   Repository
	policy RetryPolicy
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithRetryPolicy overrides the contention retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(a *Allocator) { a.policy = p }
}

// NewAllocator creates a new Allocator.
func NewAllocator(repo Repository, opts ...Option) *Allocator {
	a := &Allocator{
		repo:   repo,
		policy: DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateRange registers a new active range with its cursor at start.
func (a *Allocator) CreateRange(ctx context.Context, category Category, priority int, start, end int64) (*NumberRange, error) {
	if !category.IsValid() {
		return nil, apperror.NewValidation("unknown check category").
			WithDetail("field", "category").
			WithDetail("value", string(category))
	}

	r := NewNumberRange(category, priority, start, end)
	if err := r.Validate(ctx); err != nil {
		return nil, err
	}

	existing, err := a.repo.List(ctx, ListFilter{Category: category, IncludeInactive: true})
	if err != nil {
		return nil, fmt.Errorf("load %s ranges: %w", category, err)
	}
	for _, other := range existing {
		if other.Priority == priority {
			return nil, apperror.NewDuplicateRange(string(category), priority)
		}
		if r.Overlaps(other) {
			return nil, apperror.NewInvalidRange("range overlaps an existing range").
				WithDetail("start", start).
				WithDetail("end", end).
				WithDetail("overlaps", other.ID.String())
		}
	}

	if err := a.repo.Create(ctx, r); err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create check range: %w", err)
	}

	logger.Info(ctx, "check range created",
		"category", category,
		"priority", priority,
		"start", start,
		"end", end)
	return r, nil
}

// Next hands out the next unused number of category.
//
// Active ranges are scanned in priority order; the first one with capacity is
// advanced by a compare-and-advance on its persisted cursor. A lost race
// re-reads the ranges and retries with jittered exponential backoff until the
// policy's elapsed time or ctx runs out. Exhausted ranges are skipped.
func (a *Allocator) Next(ctx context.Context, category Category) (int64, error) {
	ctx, span := tracer.Start(ctx, "checkrange.Next",
		trace.WithAttributes(attribute.String("check.category", string(category))))
	defer span.End()

	if !category.IsValid() {
		return 0, apperror.NewValidation("unknown check category").
			WithDetail("field", "category").
			WithDetail("value", string(category))
	}

	attempts := 0
	op := func() (int64, error) {
		attempts++
		ranges, err := a.repo.List(ctx, ListFilter{Category: category})
		if err != nil {
			return 0, backoff.Permanent(fmt.Errorf("load %s ranges: %w", category, err))
		}

		for _, r := range ranges {
			if !r.Active || !r.HasCapacity() {
				continue
			}
			ok, err := a.repo.AdvanceCursor(ctx, r.ID, r.Cursor)
			if err != nil {
				return 0, backoff.Permanent(fmt.Errorf("advance range %s: %w", r.ID, err))
			}
			if !ok {
				return 0, errCursorConflict
			}
			span.SetAttributes(attribute.String("check.range_id", r.ID.String()))
			return r.Cursor, nil
		}
		return 0, backoff.Permanent(apperror.NewExhausted(string(category)))
	}

	number, err := backoff.RetryWithData(op, backoff.WithContext(a.policy.newBackOff(), ctx))
	span.SetAttributes(attribute.Int("check.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, errCursorConflict) {
			return 0, apperror.NewConcurrentModification("check_range", string(category)).WithCause(err)
		}
		return 0, err
	}

	if attempts > 1 {
		logger.Debug(ctx, "check number allocated after contention",
			"category", category, "number", number, "attempts", attempts)
	}
	span.SetAttributes(attribute.Int64("check.number", number))
	return number, nil
}

// Activate puts a range back into rotation.
func (a *Allocator) Activate(ctx context.Context, id entity.ID) (*NumberRange, error) {
	return a.setActive(ctx, id, true)
}

// Deactivate takes a range out of rotation; its cursor is kept.
func (a *Allocator) Deactivate(ctx context.Context, id entity.ID) (*NumberRange, error) {
	return a.setActive(ctx, id, false)
}

func (a *Allocator) setActive(ctx context.Context, id entity.ID, active bool) (*NumberRange, error) {
	if err := a.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	logger.Info(ctx, "check range toggled", "range_id", id, "active", active)
	return a.repo.Get(ctx, id)
}

// Get retrieves a range by ID.
func (a *Allocator) Get(ctx context.Context, id entity.ID) (*NumberRange, error) {
	return a.repo.Get(ctx, id)
}

// List returns ranges of category (all categories when empty) in priority order.
func (a *Allocator) List(ctx context.Context, category Category, includeInactive bool) ([]*NumberRange, error) {
	if category != "" && !category.IsValid() {
		return nil, apperror.NewValidation("unknown check category").
			WithDetail("field", "category").
			WithDetail("value", string(category))
	}
	return a.repo.List(ctx, ListFilter{Category: category, IncludeInactive: includeInactive})
}

// Usage summarises capacity across every range of category.
func (a *Allocator) Usage(ctx context.Context, category Category) (*Usage, error) {
	ranges, err := a.List(ctx, category, true)
	if err != nil {
		return nil, err
	}

	u := &Usage{Category: category, Ranges: len(ranges)}
	for _, r := range ranges {
		u.TotalCapacity += r.TotalCapacity()
		u.Used += r.UsedCount()
		if !r.Active {
			continue
		}
		u.ActiveRanges++
		u.Available += r.AvailableCount()
		if u.Current == nil && r.HasCapacity() {
			u.Current = r
		}
	}
	if u.TotalCapacity > 0 {
		u.PercentUsed = float64(u.Used) / float64(u.TotalCapacity) * 100
	}
	return u, nil
}
