package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"paybatch/internal/domain/reference"
	"paybatch/internal/infrastructure/http/v1/dto"
)

// ReferenceHandler exposes payment references.
type ReferenceHandler struct {
	*BaseHandler
	refs *reference.Service
}

// NewReferenceHandler creates a new reference handler.
func NewReferenceHandler(base *BaseHandler, svc *reference.Service) *ReferenceHandler {
	return &ReferenceHandler{BaseHandler: base, refs: svc}
}

// Create registers a reference.
// POST /references
func (h *ReferenceHandler) Create(c *gin.Context) {
	var req dto.CreateReferenceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ref, err := h.refs.Create(c.Request.Context(), req.Code, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromReference(ref))
}

// Update edits the description of a reference.
// PUT /references/:id
func (h *ReferenceHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReferenceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ref, err := h.refs.Update(c.Request.Context(), id, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReference(ref))
}

// List returns references ordered by code.
// GET /references
func (h *ReferenceHandler) List(c *gin.Context) {
	refs, err := h.refs.List(c.Request.Context(), c.Query("includeInactive") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(lo.Map(refs, func(r *reference.Reference, _ int) dto.ReferenceResponse {
		return dto.FromReference(r)
	})))
}

// Get returns one reference.
// GET /references/:id
func (h *ReferenceHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ref, err := h.refs.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReference(ref))
}

// NextCode suggests the next code for a five-letter prefix.
// GET /references/next-code/:prefix
func (h *ReferenceHandler) NextCode(c *gin.Context) {
	code, err := h.refs.NextCode(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NextCodeResponse{Prefix: code[:5], Code: code})
}

// Activate enables a reference.
// POST /references/:id/activate
func (h *ReferenceHandler) Activate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ref, err := h.refs.Activate(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReference(ref))
}

// Deactivate disables a reference.
// POST /references/:id/deactivate
func (h *ReferenceHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ref, err := h.refs.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromReference(ref))
}

// Delete removes an unused reference.
// DELETE /references/:id
func (h *ReferenceHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.refs.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
