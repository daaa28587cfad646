package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"paybatch/internal/domain/contact"
	"paybatch/internal/infrastructure/http/v1/dto"
)

// ContactHandler exposes the payee agendas.
type ContactHandler struct {
	*BaseHandler
	contacts *contact.Service
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(base *BaseHandler, svc *contact.Service) *ContactHandler {
	return &ContactHandler{BaseHandler: base, contacts: svc}
}

// Create registers a payee.
// POST /contacts
func (h *ContactHandler) Create(c *gin.Context) {
	var req dto.CreateContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ct, err := h.contacts.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromContact(ct))
}

// Update edits a payee.
// PUT /contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	ct, err := h.contacts.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromContact(ct))
}

// List returns payees ordered by name.
// GET /contacts
func (h *ContactHandler) List(c *gin.Context) {
	var q dto.ListContactsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	list, err := h.contacts.List(c.Request.Context(), contact.Kind(q.Kind), q.IncludeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(lo.Map(list, func(ct *contact.Contact, _ int) dto.ContactResponse {
		return dto.FromContact(ct)
	})))
}

// Get returns one payee.
// GET /contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ct, err := h.contacts.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromContact(ct))
}

// Activate restores a deactivated payee.
// POST /contacts/:id/activate
func (h *ContactHandler) Activate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ct, err := h.contacts.Activate(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromContact(ct))
}

// Deactivate hides a payee from default listings.
// POST /contacts/:id/deactivate
func (h *ContactHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ct, err := h.contacts.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromContact(ct))
}
