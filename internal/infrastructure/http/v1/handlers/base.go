package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/types"
	"bizbooks/internal/infrastructure/http/v1/dto"
	"bizbooks/internal/infrastructure/metrics"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBaseHandler creates a new base handler. m may be nil.
func NewBaseHandler(m *metrics.Metrics) *BaseHandler {
	return &BaseHandler{metrics: m, now: time.Now}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewInvalidInput("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewInvalidInput("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Principal returns the caller set by the auth middleware.
func (h *BaseHandler) Principal(c *gin.Context) security.Principal {
	p, _ := security.PrincipalFrom(c.Request.Context())
	return p
}

// ParseID parses a positive integer path parameter.
func (h *BaseHandler) ParseID(c *gin.Context, key string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, apperror.NewInvalidField(key, "invalid id"))
		return 0, false
	}
	return id, true
}

// DateRange parses the optional ?start=&end= query.
func (h *BaseHandler) DateRange(c *gin.Context) (types.DateRange, bool) {
	var q dto.DateRangeQuery
	if !h.BindQuery(c, &q) {
		return types.DateRange{}, false
	}
	r, err := q.ToRange()
	if err != nil {
		h.Error(c, err)
		return r, false
	}
	return r, true
}

// Now is the handler clock.
func (h *BaseHandler) Now() time.Time { return h.now() }

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
