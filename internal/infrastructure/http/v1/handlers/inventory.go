package handlers

import (
	"github.com/gin-gonic/gin"

	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/infrastructure/http/v1/dto"
	"bizbooks/internal/infrastructure/metrics"
)

// InventoryHandler serves raw materials, purchases and sale posting.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// ListMaterials handles GET /materials
func (h *InventoryHandler) ListMaterials(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	materials, err := h.service.ListMaterials(c.Request.Context(), h.Principal(c), q.IncludeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(materials))
}

// LowStockMaterials handles GET /materials/low-stock
func (h *InventoryHandler) LowStockMaterials(c *gin.Context) {
	materials, err := h.service.LowStockMaterials(c.Request.Context(), h.Principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(materials))
}

// GetMaterial handles GET /materials/:id
func (h *InventoryHandler) GetMaterial(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	m, err := h.service.GetMaterial(c.Request.Context(), h.Principal(c), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// CreateMaterial handles POST /materials
func (h *InventoryHandler) CreateMaterial(c *gin.Context) {
	var req dto.MaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.CreateMaterial(c.Request.Context(), h.Principal(c), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// UpdateMaterial handles PUT /materials/:id
func (h *InventoryHandler) UpdateMaterial(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.MaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.UpdateMaterial(c.Request.Context(), h.Principal(c), id, req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// OverrideStock handles PUT /materials/:id/stock
func (h *InventoryHandler) OverrideStock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.StockOverrideRequest
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.service.OverrideMaterialStock(c.Request.Context(), h.Principal(c), id, inventory.StockOverride{
		CurrentStock: req.CurrentStock,
		AverageCost:  req.AverageCost,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// DeleteMaterial handles DELETE /materials/:id
func (h *InventoryHandler) DeleteMaterial(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteMaterial(c.Request.Context(), h.Principal(c), id); err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpMaterialsDeleted)
	h.NoContent(c)
}

// BulkDeleteMaterials handles POST /materials/bulk-delete
func (h *InventoryHandler) BulkDeleteMaterials(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.service.BulkDeleteMaterials(c.Request.Context(), h.Principal(c), req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	if result.Deleted > 0 {
		h.metrics.RecordOperation(metrics.OpMaterialsDeleted)
	}
	h.OK(c, result)
}

// PostPurchase handles POST /materials/:id/purchases
func (h *InventoryHandler) PostPurchase(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain(id, h.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	purchase, material, err := h.service.PostPurchase(c.Request.Context(), h.Principal(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpPurchasePosted)
	h.Created(c, dto.PurchaseResponse{Purchase: purchase, Material: material})
}

// ListMaterialPurchases handles GET /materials/:id/purchases
func (h *InventoryHandler) ListMaterialPurchases(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	r, ok := h.DateRange(c)
	if !ok {
		return
	}
	purchases, err := h.service.ListPurchases(c.Request.Context(), h.Principal(c), &id, r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(purchases))
}

// ListPurchases handles GET /purchases
func (h *InventoryHandler) ListPurchases(c *gin.Context) {
	var q dto.PurchaseQuery
	if !h.BindQuery(c, &q) {
		return
	}
	r, err := q.ToRange()
	if err != nil {
		h.Error(c, err)
		return
	}
	purchases, err := h.service.ListPurchases(c.Request.Context(), h.Principal(c), q.MaterialID, r)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(purchases))
}

// PostSale handles POST /sales
func (h *InventoryHandler) PostSale(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	sale, err := h.service.PostSale(c.Request.Context(), h.Principal(c), req.ProductID, req.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpSalePosted)
	h.Created(c, sale)
}

// ReverseSale handles DELETE /sales/:id
func (h *InventoryHandler) ReverseSale(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.ReverseSale(c.Request.Context(), h.Principal(c), id); err != nil {
		h.Error(c, err)
		return
	}
	h.metrics.RecordOperation(metrics.OpSaleReversed)
	h.NoContent(c)
}
