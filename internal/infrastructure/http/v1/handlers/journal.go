package handlers

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/domain/journal"
	"bizbooks/internal/infrastructure/http/v1/dto"
	"bizbooks/internal/infrastructure/metrics"
)

// maxUploadBytes bounds an imported workbook.
const maxUploadBytes = 10 << 20

// JournalHandler serves sales history, expenses and bulk imports.
type JournalHandler struct {
	*BaseHandler
	service *journal.Service
}

// NewJournalHandler creates a new journal handler.
func NewJournalHandler(base *BaseHandler, service *journal.Service) *JournalHandler {
	return &JournalHandler{BaseHandler: base, service: service}
}

// ListSales handles GET /sales
func (h *JournalHandler) ListSales(c *gin.Context) {
	r, ok := h.DateRange(c)
	if !ok {
		return
	}
	sales, err := h.service.ListSales(c.Request.Context(), h.Principal(c), r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(sales))
}

// ListExpenses handles GET /expenses
func (h *JournalHandler) ListExpenses(c *gin.Context) {
	r, ok := h.DateRange(c)
	if !ok {
		return
	}
	expenses, err := h.service.ListExpenses(c.Request.Context(), h.Principal(c), r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(expenses))
}

// RecordExpense handles POST /expenses
func (h *JournalHandler) RecordExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain(h.Now())
	if err != nil {
		h.Error(c, err)
		return
	}
	expense, err := h.service.RecordExpense(c.Request.Context(), h.Principal(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpExpenseRecorded)
	h.Created(c, expense)
}

// DeleteExpense handles DELETE /expenses/:id
func (h *JournalHandler) DeleteExpense(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteExpense(c.Request.Context(), h.Principal(c), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ImportSales handles POST /import/sales with either a JSON body of rows or
// a multipart "file" holding an xlsx workbook.
func (h *JournalHandler) ImportSales(c *gin.Context) {
	var (
		result *journal.ImportResult
		err    error
	)
	if isMultipart(c) {
		file, ok := h.upload(c)
		if !ok {
			return
		}
		defer file.Close()
		result, err = h.service.ImportSalesSheet(c.Request.Context(), h.Principal(c), file)
	} else {
		var req dto.ImportSalesRequest
		if !h.BindJSON(c, &req) {
			return
		}
		result, err = h.service.ImportSales(c.Request.Context(), h.Principal(c), req.Rows)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordImport("sales", int(result.Inserted))
	h.Created(c, result)
}

// ImportExpenses handles POST /import/expenses; see ImportSales.
func (h *JournalHandler) ImportExpenses(c *gin.Context) {
	var (
		result *journal.ImportResult
		err    error
	)
	if isMultipart(c) {
		file, ok := h.upload(c)
		if !ok {
			return
		}
		defer file.Close()
		result, err = h.service.ImportExpensesSheet(c.Request.Context(), h.Principal(c), file)
	} else {
		var req dto.ImportExpensesRequest
		if !h.BindJSON(c, &req) {
			return
		}
		result, err = h.service.ImportExpenses(c.Request.Context(), h.Principal(c), req.Rows)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordImport("expenses", int(result.Inserted))
	h.Created(c, result)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func (h *JournalHandler) upload(c *gin.Context) (io.ReadCloser, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewInvalidField("file", "an xlsx file is required"))
		return nil, false
	}
	if header.Size > maxUploadBytes {
		h.Error(c, apperror.NewInvalidField("file", "file is too large"))
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		h.Error(c, apperror.NewInvalidField("file", "cannot read uploaded file"))
		return nil, false
	}
	return file, true
}
