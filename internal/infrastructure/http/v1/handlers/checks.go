package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"paybatch/internal/domain/checkrange"
	"paybatch/internal/domain/ledger"
	"paybatch/internal/infrastructure/http/v1/dto"
)

// CheckHandler exposes the issued-check ledger.
type CheckHandler struct {
	*BaseHandler
	ledger *ledger.Service
}

// NewCheckHandler creates a new issued-check handler.
func NewCheckHandler(base *BaseHandler, svc *ledger.Service) *CheckHandler {
	return &CheckHandler{BaseHandler: base, ledger: svc}
}

// List returns issued checks ordered by category and number.
// GET /checks
func (h *CheckHandler) List(c *gin.Context) {
	var q dto.ListChecksQuery
	if !h.BindQuery(c, &q) {
		return
	}
	batchID, err := dto.ParseOptionalID("batchId", q.BatchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.ledger.List(c.Request.Context(), ledger.ListFilter{
		Category: checkrange.Category(q.Category),
		State:    ledger.State(q.State),
		BatchID:  batchID,
		Page:     q.ToPage(),
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[dto.CheckResponse]{
		Items:      lo.Map(res.Items, func(ch *ledger.IssuedCheck, _ int) dto.CheckResponse { return dto.FromCheck(ch) }),
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	})
}

// Get returns one issued check.
// GET /checks/:id
func (h *CheckHandler) Get(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	ch, err := h.ledger.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCheck(ch))
}

// GetByNumber looks a check up by its printed number.
// GET /checks/by-number/:category/:number
func (h *CheckHandler) GetByNumber(c *gin.Context) {
	category, ok := h.ParamCategory(c)
	if !ok {
		return
	}
	number, ok := h.ParamNumber(c, "number")
	if !ok {
		return
	}
	ch, err := h.ledger.GetByNumber(c.Request.Context(), category, number)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCheck(ch))
}

// Transition moves a check to another state.
// POST /checks/:id/transition
func (h *CheckHandler) Transition(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	to, err := ledger.ParseState(req.State)
	if err != nil {
		h.Error(c, err)
		return
	}
	ch, err := h.ledger.Transition(c.Request.Context(), id, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromCheck(ch))
}

// Stats counts checks per state.
// GET /checks/stats
func (h *CheckHandler) Stats(c *gin.Context) {
	var category checkrange.Category
	if raw := c.Query("category"); raw != "" {
		var err error
		if category, err = checkrange.ParseCategory(raw); err != nil {
			h.Error(c, err)
			return
		}
	}
	rows, err := h.ledger.CountByState(c.Request.Context(), category)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(rows))
}
