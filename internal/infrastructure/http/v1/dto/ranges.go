package dto

import (
	"time"

	"paybatch/internal/domain/checkrange"
)

// CreateRangeRequest is the request body for registering a check book range.
type CreateRangeRequest struct {
	Category string `json:"category" binding:"required,oneof=common deferred"`
	Priority int    `json:"priority"`
	Start    int64  `json:"start"`
	End      int64  `json:"end"`
}

// ListRangesQuery filters range listings.
type ListRangesQuery struct {
	Category        string `form:"category" binding:"omitempty,oneof=common deferred"`
	IncludeInactive bool   `form:"includeInactive"`
}

// RangeResponse is the response body for a check range.
type RangeResponse struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"`
	Priority      int       `json:"priority"`
	Start         int64     `json:"start"`
	End           int64     `json:"end"`
	NextNumber    int64     `json:"nextNumber"`
	Active        bool      `json:"active"`
	TotalCapacity int64     `json:"totalCapacity"`
	Used          int64     `json:"used"`
	Available     int64     `json:"available"`
	PercentUsed   float64   `json:"percentUsed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromRange creates response DTO from domain entity.
func FromRange(r *checkrange.NumberRange) RangeResponse {
	return RangeResponse{
		ID:            r.ID.String(),
		Category:      string(r.Category),
		Priority:      r.Priority,
		Start:         r.Start,
		End:           r.End,
		NextNumber:    r.Cursor,
		Active:        r.Active,
		TotalCapacity: r.TotalCapacity(),
		Used:          r.UsedCount(),
		Available:     r.AvailableCount(),
		PercentUsed:   r.PercentUsed(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

