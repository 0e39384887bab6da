package handlers

import (
	"github.com/gin-gonic/gin"

	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/infrastructure/http/v1/dto"
)

// AnalyticsHandler serves the dashboard and period comparisons.
type AnalyticsHandler struct {
	*BaseHandler
	service *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(base *BaseHandler, service *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{BaseHandler: base, service: service}
}

// Dashboard handles GET /analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	r, ok := h.DateRange(c)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), h.Principal(c), r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dashboard)
}

// Compare handles GET /analytics/compare
func (h *AnalyticsHandler) Compare(c *gin.Context) {
	var q dto.CompareQuery
	if !h.BindQuery(c, &q) {
		return
	}
	a, b, err := q.ToRanges()
	if err != nil {
		h.Error(c, err)
		return
	}
	comparison, err := h.service.Compare(c.Request.Context(), h.Principal(c), a, b)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, comparison)
}
