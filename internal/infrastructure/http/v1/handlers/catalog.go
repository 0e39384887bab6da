package handlers

import (
	"github.com/gin-gonic/gin"

	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves categories, expense categories and products.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, service: service}
}

// RegisterCategoryRoutes mounts the category endpoints of kind on group.
func (h *CatalogHandler) RegisterCategoryRoutes(group *gin.RouterGroup, kind catalog.Kind) {
	group.GET("", h.listCategories(kind))
	group.POST("", h.createCategory(kind))
	group.PUT("/:id", h.renameCategory(kind))
	group.DELETE("/:id", h.deleteCategory(kind))
}

func (h *CatalogHandler) listCategories(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dto.ListQuery
		if !h.BindQuery(c, &q) {
			return
		}
		categories, err := h.service.ListCategories(c.Request.Context(), h.Principal(c), kind, q.IncludeInactive)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.NewListResponse(categories))
	}
}

func (h *CatalogHandler) createCategory(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CategoryRequest
		if !h.BindJSON(c, &req) {
			return
		}
		category, err := h.service.CreateCategory(c.Request.Context(), h.Principal(c), kind, req.Name)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Created(c, category)
	}
}

func (h *CatalogHandler) renameCategory(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		var req dto.CategoryRequest
		if !h.BindJSON(c, &req) {
			return
		}
		category, err := h.service.RenameCategory(c.Request.Context(), h.Principal(c), kind, id, req.Name)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, category)
	}
}

func (h *CatalogHandler) deleteCategory(kind catalog.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.ParseID(c, "id")
		if !ok {
			return
		}
		if err := h.service.DeleteCategory(c.Request.Context(), h.Principal(c), kind, id); err != nil {
			h.Error(c, err)
			return
		}
		h.NoContent(c)
	}
}

// --- Products ---

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	products, err := h.service.ListProducts(c.Request.Context(), h.Principal(c), q.IncludeInactive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(products))
}

// LowStockProducts handles GET /products/low-stock
func (h *CatalogHandler) LowStockProducts(c *gin.Context) {
	products, err := h.service.LowStockProducts(c.Request.Context(), h.Principal(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(products))
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	product, err := h.service.GetProduct(c.Request.Context(), h.Principal(c), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, product)
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.CreateProduct(c.Request.Context(), h.Principal(c), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, product)
}

// UpdateProduct handles PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.UpdateProduct(c.Request.Context(), h.Principal(c), id, req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, product)
}

// SetProductStock handles PUT /products/:id/stock
func (h *CatalogHandler) SetProductStock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.StockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.service.SetProductStock(c.Request.Context(), h.Principal(c), id, *req.Stock)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), h.Principal(c), id); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
