package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"paybatch/internal/domain/batch"
	"paybatch/internal/infrastructure/http/v1/dto"
)

// BatchHandler exposes the payment batch lifecycle.
type BatchHandler struct {
	*BaseHandler
	batches *batch.Service
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(base *BaseHandler, svc *batch.Service) *BatchHandler {
	return &BatchHandler{BaseHandler: base, batches: svc}
}

// Create opens a draft batch.
// POST /batches
func (h *BatchHandler) Create(c *gin.Context) {
	var req dto.CreateBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	refID, err := dto.ParseOptionalID("referenceId", req.ReferenceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	b, err := h.batches.Create(c.Request.Context(), batch.CreateInput{
		ReferenceID:  *refID,
		Branch:       req.Branch,
		DebitAccount: req.DebitAccount,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromBatch(b))
}

// List returns batch headers, newest first.
// GET /batches
func (h *BatchHandler) List(c *gin.Context) {
	var q dto.ListBatchesQuery
	if !h.BindQuery(c, &q) {
		return
	}
	refID, err := dto.ParseOptionalID("referenceId", q.ReferenceID)
	if err != nil {
		h.Error(c, err)
		return
	}
	res, err := h.batches.List(c.Request.Context(), batch.ListFilter{
		ReferenceID: refID,
		State:       batch.State(q.State),
		Page:        q.ToPage(),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[dto.BatchResponse]{
		Items:      lo.Map(res.Items, func(b *batch.Batch, _ int) dto.BatchResponse { return dto.FromBatch(b) }),
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	})
}

// Get returns a batch with its items.
// GET /batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.batches.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatch(b))
}

// AddItem appends a payment line to a draft.
// POST /batches/:id/items
func (h *BatchHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}
	it, err := h.batches.AddItem(c.Request.Context(), id, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromItem(it))
}

// RemoveItem deletes a payment line from a draft.
// DELETE /batches/:id/items/:itemId
func (h *BatchHandler) RemoveItem(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParamID(c, "itemId")
	if !ok {
		return
	}
	if err := h.batches.RemoveItem(c.Request.Context(), id, itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Finalize allocates check numbers and freezes the batch.
// POST /batches/:id/finalize
func (h *BatchHandler) Finalize(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.batches.Finalize(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBatch(b))
}

// Download streams the bank workbook.
// GET /batches/:id/download
func (h *BatchHandler) Download(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	a, err := h.batches.Download(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Attachment(c, a.FileName, a.ContentType, a.Data)
}

// Stats tallies batches per state.
// GET /batches/stats
func (h *BatchHandler) Stats(c *gin.Context) {
	rows, err := h.batches.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromBatchStats(rows)))
}
