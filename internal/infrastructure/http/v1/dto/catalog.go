package dto

import (
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
)

// CategoryRequest creates or renames a category.
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ProductRequest creates or updates a product.
type ProductRequest struct {
	Name           string      `json:"name" binding:"required"`
	Description    *string     `json:"description"`
	CategoryID     *int64      `json:"categoryId"`
	Cost           types.Money `json:"cost"`
	Price          types.Money `json:"price"`
	Stock          int64       `json:"stock"`
	AlertThreshold int64       `json:"alertThreshold"`
}

// ToDomain converts to the domain input.
func (r *ProductRequest) ToDomain() catalog.ProductInput {
	return catalog.ProductInput{
		Name:           r.Name,
		Description:    r.Description,
		CategoryID:     r.CategoryID,
		Cost:           r.Cost,
		Price:          r.Price,
		Stock:          r.Stock,
		AlertThreshold: r.AlertThreshold,
	}
}

// StockRequest sets a product's unit stock directly.
type StockRequest struct {
	Stock *int64 `json:"stock" binding:"required"`
}

// ListQuery toggles inactive rows in list endpoints.
type ListQuery struct {
	IncludeInactive bool `form:"includeInactive"`
}
