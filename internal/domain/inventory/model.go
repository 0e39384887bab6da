// Package inventory is the stock engine: sale posting against product stock and
// raw material purchases with moving weighted average cost.
package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"bizbooks/internal/core/types"
)

// Material is a raw material tracked in fractional units.
type Material struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"-"`
	Name           string         `db:"name" json:"name"`
	UnitMeasure    string         `db:"unit_measure" json:"unitMeasure"`
	CurrentStock   types.Quantity `db:"current_stock" json:"currentStock"`
	AverageCost    types.Money    `db:"average_cost" json:"averageCost"`
	AlertThreshold types.Quantity `db:"alert_threshold" json:"alertThreshold"`
	IsActive       bool           `db:"is_active" json:"isActive"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// IsLowStock is true when a threshold is set and stock has reached it.
func (m *Material) IsLowStock() bool {
	return m.AlertThreshold > 0 && m.CurrentStock <= m.AlertThreshold
}

// InventoryValue is current stock valued at the average cost.
func (m *Material) InventoryValue() types.Money {
	return m.CurrentStock.Decimal().Mul(m.AverageCost)
}

// Purchase is one material purchase.
type Purchase struct {
	ID                int64          `db:"id" json:"id"`
	UserID            int64          `db:"user_id" json:"-"`
	MaterialID        int64          `db:"material_id" json:"materialId"`
	MaterialName      string         `db:"material_name" json:"materialName"`
	QuantityPurchased types.Quantity `db:"quantity_purchased" json:"quantityPurchased"`
	TotalCost         types.Money    `db:"total_cost" json:"totalCost"`
	PurchaseDate      time.Time      `db:"purchase_date" json:"purchaseDate"`
	Supplier          *string        `db:"supplier" json:"supplier,omitempty"`
	Notes             *string        `db:"notes" json:"notes,omitempty"`
}

// MaterialInput holds the editable descriptive fields of a material.
type MaterialInput struct {
	Name           string
	UnitMeasure    string
	AlertThreshold types.Quantity
	IsActive       *bool
}

// PurchaseInput is a purchase to post.
type PurchaseInput struct {
	MaterialID   int64
	Quantity     types.Quantity
	TotalCost    types.Money
	PurchaseDate time.Time
	Supplier     *string
	Notes        *string
}

// StockOverride replaces stock and average cost outside the weighted average.
type StockOverride struct {
	CurrentStock types.Quantity
	AverageCost  types.Money
}

// BulkDeleteResult reports a bulk material delete.
type BulkDeleteResult struct {
	Deleted    int     `json:"deleted"`
	DeletedIDs []int64 `json:"deletedIds"`
	SkippedIDs []int64 `json:"skippedIds"`
}

// WeightedAverage returns the stock and average cost after buying q units for
// totalCost: (S·A + C) / (S + Q), rounded to four places; zero when the new stock
// is not positive. ok is false when the new stock leaves the storable range.
func WeightedAverage(stock types.Quantity, avg types.Money, q types.Quantity, totalCost types.Money) (types.Quantity, types.Money, bool) {
	newStock, ok := stock.Add(q)
	if !ok {
		return 0, decimal.Zero, false
	}
	if !newStock.IsPositive() {
		return newStock, decimal.Zero, true
	}
	value := stock.Decimal().Mul(avg).Add(totalCost)
	newAvg := value.DivRound(newStock.Decimal(), types.CostPlaces)
	if newAvg.IsNegative() {
		newAvg = decimal.Zero
	}
	return newStock, newAvg, true
}

// MaterialsValue sums current stock × average cost over active materials.
func MaterialsValue(materials []Material) types.Money {
	total := types.Zero()
	for i := range materials {
		if materials[i].IsActive {
			total = total.Add(materials[i].InventoryValue())
		}
	}
	return types.RoundMoney(total)
}

// LowStock filters active materials at or below their threshold.
func LowStock(materials []Material) []Material {
	out := make([]Material, 0)
	for _, m := range materials {
		if m.IsActive && m.IsLowStock() {
			out = append(out, m)
		}
	}
	return out
}
