package inventory

import (
	"context"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/journal"
)

// Repository stores raw materials and their purchases. Every method is scoped by userID.
type Repository interface {
	ListMaterials(ctx context.Context, userID int64, includeInactive bool) ([]Material, error)
	GetMaterial(ctx context.Context, userID, id int64) (*Material, error)
	// GetMaterialForUpdate locks the row until the surrounding transaction ends.
	GetMaterialForUpdate(ctx context.Context, userID, id int64) (*Material, error)
	FindMaterialByName(ctx context.Context, userID int64, name string) (*Material, error)
	CreateMaterial(ctx context.Context, m *Material) error
	UpdateMaterial(ctx context.Context, m *Material) error
	SetMaterialStock(ctx context.Context, userID, id int64, stock types.Quantity, avg types.Money) error

	// MaterialsWithPurchases returns the subset of ids referenced by a purchase.
	MaterialsWithPurchases(ctx context.Context, userID int64, ids []int64) ([]int64, error)
	DeleteMaterials(ctx context.Context, userID int64, ids []int64) (int64, error)

	InsertPurchase(ctx context.Context, p *Purchase) error
	// ListPurchases filters by material when materialID is non-nil; newest first.
	ListPurchases(ctx context.Context, userID int64, materialID *int64, r types.DateRange) ([]Purchase, error)
}

// ProductStock is the product side of sale posting.
type ProductStock interface {
	// GetProductForUpdate locks the product row until the surrounding transaction ends.
	GetProductForUpdate(ctx context.Context, userID, id int64) (*catalog.Product, error)
	UpdateProductStock(ctx context.Context, userID, id int64, stock int64) error
}

// SaleLedger is the sale side of sale posting.
type SaleLedger interface {
	InsertSale(ctx context.Context, s *journal.Sale) error
	GetSale(ctx context.Context, userID, id int64) (*journal.Sale, error)
	DeleteSale(ctx context.Context, userID, id int64) error
}
