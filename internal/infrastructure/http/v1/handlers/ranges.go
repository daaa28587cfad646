package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"paybatch/internal/core/entity"
	"paybatch/internal/domain/checkrange"
	"paybatch/internal/infrastructure/http/v1/dto"
)

// RangeHandler exposes check range administration.
type RangeHandler struct {
	*BaseHandler
	allocator *checkrange.Allocator
}

// NewRangeHandler creates a new range handler.
func NewRangeHandler(base *BaseHandler, allocator *checkrange.Allocator) *RangeHandler {
	return &RangeHandler{BaseHandler: base, allocator: allocator}
}

// Create registers a range.
// POST /ranges
func (h *RangeHandler) Create(c *gin.Context) {
	var req dto.CreateRangeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	r, err := h.allocator.CreateRange(c.Request.Context(),
		checkrange.Category(req.Category), req.Priority, req.Start, req.End)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromRange(r))
}

// List returns ranges ordered by category and priority.
// GET /ranges
func (h *RangeHandler) List(c *gin.Context) {
	var q dto.ListRangesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	ranges, err := h.allocator.List(c.Request.Context(), checkrange.Category(q.Category), q.IncludeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(lo.Map(ranges, func(r *checkrange.NumberRange, _ int) dto.RangeResponse {
		return dto.FromRange(r)
	})))
}

// Get returns one range.
// GET /ranges/:id
func (h *RangeHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	r, err := h.allocator.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRange(r))
}

// Activate enables a range.
// POST /ranges/:id/activate
func (h *RangeHandler) Activate(c *gin.Context) {
	h.toggle(c, h.allocator.Activate)
}

// Deactivate disables a range.
// POST /ranges/:id/deactivate
func (h *RangeHandler) Deactivate(c *gin.Context) {
	h.toggle(c, h.allocator.Deactivate)
}

func (h *RangeHandler) toggle(c *gin.Context, fn func(context.Context, entity.ID) (*checkrange.NumberRange, error)) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	r, err := fn(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromRange(r))
}

// Usage summarizes capacity of a category.
// GET /ranges/usage/:category
func (h *RangeHandler) Usage(c *gin.Context) {
	category, ok := h.ParamCategory(c)
	if !ok {
		return
	}
	u, err := h.allocator.Usage(c.Request.Context(), category)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, u)
}
