// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain"
)

// DateLayout is the calendar date format accepted and returned by the API.
const DateLayout = "2006-01-02"

// PageQuery carries limit/offset query parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ToPage converts the query to a domain page.
func (q PageQuery) ToPage() domain.Page {
	return domain.Page{Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// ListResponse wraps list results with pagination.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit,omitempty"`
	Offset     int   `json:"offset,omitempty"`
}

// NewListResponse wraps an unpaginated slice.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, TotalCount: int64(len(items))}
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ParseDate parses an optional YYYY-MM-DD date. Empty input yields nil.
func ParseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return nil, apperror.NewFormat(field, "date must be YYYY-MM-DD", raw)
	}
	return &t, nil
}

// FormatDate renders an optional date as YYYY-MM-DD.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseOptionalID parses an optional UUID query or body value.
func ParseOptionalID(field, raw string) (*entity.ID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := entity.ParseID(raw)
	if err != nil {
		return nil, apperror.NewFormat(field, "invalid id", raw)
	}
	return &id, nil
}
