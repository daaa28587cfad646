// Package checkrange manages the pre-printed check number ranges and hands out
// physical check numbers from them.
//
// Each category (common, deferred) owns a set of disjoint ranges ordered by
// priority. Numbers are drawn from the lowest-priority range that still has
// capacity; when it runs out the allocator falls over to the next one.
package checkrange

import (
	"context"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
)

// Category distinguishes the two pre-printed check books.
type Category string

const (
	CategoryCommon   Category = "common"
	CategoryDeferred Category = "deferred"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryCommon, CategoryDeferred}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", apperror.NewValidation("unknown check category").
			WithDetail("field", "category").
			WithDetail("value", s)
	}
	return c, nil
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	return c == CategoryCommon || c == CategoryDeferred
}

// NumberRange is a contiguous block of check numbers [Start, End].
// Cursor is the next number to hand out; Cursor == End+1 means exhausted.
type NumberRange struct {
	entity.Base

	Category Category `db:"category" json:"category"`

	// Priority orders fallover within a category (lower first).
	Priority int `db:"priority" json:"priority"`

	Start  int64 `db:"range_start" json:"start"`
	End    int64 `db:"range_end" json:"end"`
	Cursor int64 `db:"next_number" json:"nextNumber"`

	Active bool `db:"active" json:"active"`
}

// NewNumberRange creates an active range with the cursor at its start.
func NewNumberRange(category Category, priority int, start, end int64) *NumberRange {
	return &NumberRange{
		Base:     entity.NewBase(),
		Category: category,
		Priority: priority,
		Start:    start,
		End:      end,
		Cursor:   start,
		Active:   true,
	}
}

// Validate implements entity.Validatable interface.
func (r *NumberRange) Validate(ctx context.Context) error {
	if !r.Category.IsValid() {
		return apperror.NewValidation("unknown check category").
			WithDetail("field", "category").
			WithDetail("value", string(r.Category))
	}
	if r.Priority <= 0 {
		return apperror.NewInvalidRange("priority must be positive").
			WithDetail("priority", r.Priority)
	}
	if r.Start <= 0 {
		return apperror.NewInvalidRange("range start must be positive").
			WithDetail("start", r.Start)
	}
	if r.Start >= r.End {
		return apperror.NewInvalidRange("range start must be lower than range end").
			WithDetail("start", r.Start).
			WithDetail("end", r.End)
	}
	if r.Cursor < r.Start || r.Cursor > r.End+1 {
		return apperror.NewInvalidRange("next number is outside the range").
			WithDetail("nextNumber", r.Cursor)
	}
	return nil
}

// TotalCapacity is the number of checks the range holds.
func (r *NumberRange) TotalCapacity() int64 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// UsedCount is the number of checks already handed out.
func (r *NumberRange) UsedCount() int64 {
	return r.Cursor - r.Start
}

// AvailableCount is the number of checks still available.
func (r *NumberRange) AvailableCount() int64 {
	return max(0, r.End-r.Cursor+1)
}

// PercentUsed returns usage in [0, 100].
func (r *NumberRange) PercentUsed() float64 {
	total := r.TotalCapacity()
	if total == 0 {
		return 0
	}
	return float64(r.UsedCount()) / float64(total) * 100
}

// HasCapacity reports whether at least one number remains.
func (r *NumberRange) HasCapacity() bool {
	return r.Cursor <= r.End
}

// Overlaps reports whether two ranges share any number.
func (r *NumberRange) Overlaps(other *NumberRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Usage aggregates all ranges of a category.
type Usage struct {
	Category      Category `json:"category"`
	Ranges        int      `json:"ranges"`
	ActiveRanges  int      `json:"activeRanges"`
	TotalCapacity int64    `json:"totalCapacity"`
	Used          int64    `json:"used"`
	Available     int64    `json:"available"`
	PercentUsed   float64  `json:"percentUsed"`

	// Current is the active range numbers are drawn from next, if any.
	Current *NumberRange `json:"current,omitempty"`
}
