// Package handlers provides HTTP request handlers.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paybatch/internal/core/apperror"
	"paybatch/internal/core/entity"
	"paybatch/internal/domain/checkrange"
)

// BaseHandler provides binding and response helpers shared by all handlers.
// Every failure goes through Error so middleware.ErrorHandler renders it.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParamID parses a UUID path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (entity.ID, bool) {
	raw := c.Param(name)
	id, err := entity.ParseID(raw)
	if err != nil {
		h.Error(c, apperror.NewFormat(name, "invalid id", raw))
		return entity.ID{}, false
	}
	return id, true
}

// ParamCategory parses the :category path parameter.
func (h *BaseHandler) ParamCategory(c *gin.Context) (checkrange.Category, bool) {
	category, err := checkrange.ParseCategory(c.Param("category"))
	if err != nil {
		h.Error(c, err)
		return "", false
	}
	return category, true
}

// ParamNumber parses a positive check number path parameter.
func (h *BaseHandler) ParamNumber(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		h.Error(c, apperror.NewFormat(name, "check number must be a positive integer", raw))
		return 0, false
	}
	return n, true
}

// Error registers err on the gin context and aborts.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Created sends 201 with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// OK sends 200 with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Attachment sends data as a file download.
func (h *BaseHandler) Attachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}
