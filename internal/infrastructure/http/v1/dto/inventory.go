package dto

import (
	"time"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/inventory"
)

// MaterialRequest creates or updates a raw material.
type MaterialRequest struct {
	Name           string         `json:"name" binding:"required"`
	UnitMeasure    string         `json:"unitMeasure" binding:"required"`
	AlertThreshold types.Quantity `json:"alertThreshold"`
	IsActive       *bool          `json:"isActive"`
}

// ToDomain converts to the domain input.
func (r *MaterialRequest) ToDomain() inventory.MaterialInput {
	return inventory.MaterialInput{
		Name:           r.Name,
		UnitMeasure:    r.UnitMeasure,
		AlertThreshold: r.AlertThreshold,
		IsActive:       r.IsActive,
	}
}

// StockOverrideRequest replaces stock and average cost.
type StockOverrideRequest struct {
	CurrentStock types.Quantity `json:"currentStock"`
	AverageCost  types.Money    `json:"averageCost"`
}

// PurchaseRequest posts a material purchase. PurchaseDate defaults to now.
type PurchaseRequest struct {
	Quantity     types.Quantity `json:"quantity"`
	TotalCost    types.Money    `json:"totalCost"`
	PurchaseDate string         `json:"purchaseDate"`
	Supplier     *string        `json:"supplier"`
	Notes        *string        `json:"notes"`
}

// ToDomain converts to the domain input for materialID.
func (r *PurchaseRequest) ToDomain(materialID int64, now time.Time) (inventory.PurchaseInput, error) {
	at, err := ParseTimestamp("purchaseDate", r.PurchaseDate, now)
	if err != nil {
		return inventory.PurchaseInput{}, err
	}
	return inventory.PurchaseInput{
		MaterialID:   materialID,
		Quantity:     r.Quantity,
		TotalCost:    r.TotalCost,
		PurchaseDate: at,
		Supplier:     r.Supplier,
		Notes:        r.Notes,
	}, nil
}

// PurchaseResponse returns the purchase with the material after the update.
type PurchaseResponse struct {
	Purchase *inventory.Purchase `json:"purchase"`
	Material *inventory.Material `json:"material"`
}

// BulkDeleteRequest lists material ids to delete.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

// PurchaseQuery filters the purchase history.
type PurchaseQuery struct {
	DateRangeQuery
	MaterialID *int64 `form:"materialId"`
}
