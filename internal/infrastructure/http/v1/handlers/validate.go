package handlers

import (
	"github.com/gin-gonic/gin"

	"paybatch/internal/core/checkdigit"
	"paybatch/internal/infrastructure/http/v1/dto"
)

// ValidateHandler exposes the identifier checksums.
type ValidateHandler struct {
	*BaseHandler
}

// NewValidateHandler creates a new validation handler.
func NewValidateHandler(base *BaseHandler) *ValidateHandler {
	return &ValidateHandler{BaseHandler: base}
}

// TaxID validates a CUIT/CUIL.
// POST /validate/tax-id
func (h *ValidateHandler) TaxID(c *gin.Context) {
	var req dto.ValidateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	id, err := checkdigit.ValidateTaxID(req.Value)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ValidateResponse{Valid: true, Canonical: id.String(), Formatted: id.Formatted()})
}

// AccountCode validates a CBU.
// POST /validate/account-code
func (h *ValidateHandler) AccountCode(c *gin.Context) {
	var req dto.ValidateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	code, err := checkdigit.ValidateBankAccountCode(req.Value)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ValidateResponse{Valid: true, Canonical: code.String(), Formatted: code.Formatted()})
}
