package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bizbooks/internal/domain/reports"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Workbook handles GET /reports/workbook and streams the xlsx as an attachment.
func (h *ReportsHandler) Workbook(c *gin.Context) {
	r, ok := h.DateRange(c)
	if !ok {
		return
	}

	report, err := h.service.Generate(c.Request.Context(), h.Principal(c), r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordReport(len(report.Data))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}
