package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/tx"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/journal"
	"bizbooks/pkg/logger"
)

// Service posts stock mutations. Every mutation runs in one transaction with the
// affected product or material row locked.
type Service struct {
	repo      Repository
	products  ProductStock
	sales     SaleLedger
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new inventory service.
func NewService(repo Repository, products ProductStock, sales SaleLedger, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		sales:     sales,
		txManager: txManager,
		now:       time.Now,
	}
}

// --- Sales ---

// PostSale sells q units of a product at its current price and cost.
// The stock check happens under the product row lock so concurrent sales
// cannot drive stock negative.
func (s *Service) PostSale(ctx context.Context, p security.Principal, productID int64, q int64) (*journal.Sale, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if q < 1 {
		return nil, apperror.NewInvalidQuantity("quantity must be at least 1")
	}

	var sale journal.Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		prod, err := s.products.GetProductForUpdate(ctx, p.UserID, productID)
		if err != nil {
			return err
		}
		if !prod.IsActive {
			return apperror.NewNotFound("product", productID)
		}
		if q > prod.Stock {
			return apperror.NewInsufficientStock(productID, q, prod.Stock)
		}

		sale = journal.NewSale(p.UserID, prod.ID, q, prod.Price, prod.Cost, s.now().UTC().Truncate(time.Second))
		if sale.TotalAmount.GreaterThan(types.MaxMoney) {
			return apperror.NewOverflow("totalAmount", sale.TotalAmount.String())
		}
		name := prod.Name
		sale.ProductName = &name

		if err := s.sales.InsertSale(ctx, &sale); err != nil {
			return err
		}
		return s.products.UpdateProductStock(ctx, p.UserID, prod.ID, prod.Stock-q)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale posted",
		"sale_id", sale.ID,
		"product_id", productID,
		"quantity", q,
		"total_amount", sale.TotalAmount.String(),
	)
	return &sale, nil
}

// ReverseSale deletes a sale and returns its units to the product when the
// product row still exists.
func (s *Service) ReverseSale(ctx context.Context, p security.Principal, saleID int64) error {
	if err := security.RequireActive(p); err != nil {
		return err
	}

	var restored bool
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.sales.GetSale(ctx, p.UserID, saleID)
		if err != nil {
			return err
		}
		if sale.ProductID != nil {
			prod, err := s.products.GetProductForUpdate(ctx, p.UserID, *sale.ProductID)
			switch {
			case err == nil:
				if err := s.products.UpdateProductStock(ctx, p.UserID, prod.ID, prod.Stock+sale.Quantity); err != nil {
					return err
				}
				restored = true
			case apperror.IsNotFound(err):
			default:
				return err
			}
		}
		return s.sales.DeleteSale(ctx, p.UserID, saleID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "sale_id", saleID, "stock_restored", restored)
	return nil
}

// --- Materials ---

// ListMaterials returns the caller's raw materials.
func (s *Service) ListMaterials(ctx context.Context, p security.Principal, includeInactive bool) ([]Material, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	return s.repo.ListMaterials(ctx, p.UserID, includeInactive)
}

// GetMaterial returns one raw material.
func (s *Service) GetMaterial(ctx context.Context, p security.Principal, id int64) (*Material, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	return s.repo.GetMaterial(ctx, p.UserID, id)
}

// LowStockMaterials lists active materials at or below their alert threshold.
func (s *Service) LowStockMaterials(ctx context.Context, p security.Principal) ([]Material, error) {
	materials, err := s.ListMaterials(ctx, p, false)
	if err != nil {
		return nil, err
	}
	return LowStock(materials), nil
}

func (s *Service) validateMaterial(ctx context.Context, p security.Principal, in *MaterialInput, exceptID int64) error {
	in.Name = catalog.CollapseSpaces(in.Name)
	in.UnitMeasure = strings.TrimSpace(in.UnitMeasure)
	if in.Name == "" {
		return apperror.NewInvalidField("name", "name is required")
	}
	if in.UnitMeasure == "" {
		return apperror.NewInvalidField("unitMeasure", "unit of measure is required")
	}
	if err := catalog.CheckLength("name", in.Name, catalog.MaxMaterialNameLen); err != nil {
		return err
	}
	if err := catalog.CheckLength("unitMeasure", in.UnitMeasure, catalog.MaxUnitMeasureLen); err != nil {
		return err
	}
	if in.AlertThreshold.IsNegative() {
		return apperror.NewInvalidField("alertThreshold", "alert threshold must not be negative")
	}
	if in.AlertThreshold.Overflows() {
		return apperror.NewOverflow("alertThreshold", in.AlertThreshold.String())
	}

	existing, err := s.repo.FindMaterialByName(ctx, p.UserID, in.Name)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("find material: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperror.NewDuplicateName("material", in.Name)
	}
	return nil
}

// CreateMaterial adds a raw material with zero stock and zero average cost.
func (s *Service) CreateMaterial(ctx context.Context, p security.Principal, in MaterialInput) (*Material, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if err := s.validateMaterial(ctx, p, &in, 0); err != nil {
		return nil, err
	}

	m := &Material{
		UserID:         p.UserID,
		Name:           in.Name,
		UnitMeasure:    in.UnitMeasure,
		AverageCost:    types.Zero(),
		AlertThreshold: in.AlertThreshold,
		IsActive:       true,
	}
	if err := s.repo.CreateMaterial(ctx, m); err != nil {
		return nil, err
	}

	logger.Info(ctx, "material created", "material_id", m.ID, "name", m.Name)
	return m, nil
}

// UpdateMaterial changes name, unit, threshold and optionally the active flag.
func (s *Service) UpdateMaterial(ctx context.Context, p security.Principal, id int64, in MaterialInput) (*Material, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	m, err := s.repo.GetMaterial(ctx, p.UserID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateMaterial(ctx, p, &in, id); err != nil {
		return nil, err
	}

	m.Name = in.Name
	m.UnitMeasure = in.UnitMeasure
	m.AlertThreshold = in.AlertThreshold
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if err := s.repo.UpdateMaterial(ctx, m); err != nil {
		return nil, err
	}

	logger.Info(ctx, "material updated", "material_id", id)
	return m, nil
}

// OverrideMaterialStock sets stock and average cost directly, bypassing the
// weighted average. Used for corrections after a physical count.
func (s *Service) OverrideMaterialStock(ctx context.Context, p security.Principal, id int64, o StockOverride) (*Material, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if o.CurrentStock.IsNegative() {
		return nil, apperror.NewInvalidField("currentStock", "stock must not be negative")
	}
	if o.CurrentStock.Overflows() {
		return nil, apperror.NewOverflow("currentStock", o.CurrentStock.String())
	}
	if o.AverageCost.IsNegative() {
		return nil, apperror.NewInvalidField("averageCost", "average cost must not be negative")
	}
	avg := types.RoundCost(o.AverageCost)
	if avg.GreaterThan(types.MaxMoney) {
		return nil, apperror.NewOverflow("averageCost", avg.String())
	}

	var m *Material
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetMaterialForUpdate(ctx, p.UserID, id)
		if err != nil {
			return err
		}
		if err := s.repo.SetMaterialStock(ctx, p.UserID, id, o.CurrentStock, avg); err != nil {
			return err
		}
		m.CurrentStock, m.AverageCost = o.CurrentStock, avg
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "material stock overridden",
		"material_id", id,
		"current_stock", o.CurrentStock.String(),
		"average_cost", avg.String(),
	)
	return m, nil
}

// PostPurchase records a purchase and folds it into the material's moving
// weighted average cost under a row lock.
func (s *Service) PostPurchase(ctx context.Context, p security.Principal, in PurchaseInput) (*Purchase, *Material, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, nil, err
	}
	if in.Quantity.IsZero() {
		return nil, nil, apperror.NewInvalidQuantity("quantity purchased must not be zero")
	}
	if in.Quantity.IsNegative() {
		return nil, nil, apperror.NewInvalidQuantity("quantity purchased must be positive")
	}
	if in.TotalCost.IsNegative() {
		return nil, nil, apperror.NewInvalidField("totalCost", "total cost must not be negative")
	}
	if in.TotalCost.GreaterThan(types.MaxMoney) {
		return nil, nil, apperror.NewOverflow("totalCost", in.TotalCost.String())
	}
	if in.Supplier != nil {
		if err := catalog.CheckLength("supplier", strings.TrimSpace(*in.Supplier), catalog.MaxSupplierLen); err != nil {
			return nil, nil, err
		}
	}
	if in.PurchaseDate.IsZero() {
		in.PurchaseDate = types.TruncateDay(s.now().UTC())
	}

	purchase := &Purchase{
		UserID:            p.UserID,
		MaterialID:        in.MaterialID,
		QuantityPurchased: in.Quantity,
		TotalCost:         types.RoundMoney(in.TotalCost),
		PurchaseDate:      in.PurchaseDate,
		Supplier:          trimOptional(in.Supplier),
		Notes:             trimOptional(in.Notes),
	}

	var m *Material
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetMaterialForUpdate(ctx, p.UserID, in.MaterialID)
		if err != nil {
			return err
		}

		newStock, newAvg, ok := WeightedAverage(m.CurrentStock, m.AverageCost, in.Quantity, purchase.TotalCost)
		if !ok {
			return apperror.NewOverflow("currentStock", m.CurrentStock.String()+" + "+in.Quantity.String())
		}

		purchase.MaterialName = m.Name
		if err := s.repo.InsertPurchase(ctx, purchase); err != nil {
			return err
		}
		if err := s.repo.SetMaterialStock(ctx, p.UserID, m.ID, newStock, newAvg); err != nil {
			return err
		}
		m.CurrentStock, m.AverageCost = newStock, newAvg
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "material purchase posted",
		"purchase_id", purchase.ID,
		"material_id", m.ID,
		"quantity", in.Quantity.String(),
		"new_stock", m.CurrentStock.String(),
		"new_average_cost", m.AverageCost.String(),
	)
	return purchase, m, nil
}

// ListPurchases returns purchases, optionally for a single material.
func (s *Service) ListPurchases(ctx context.Context, p security.Principal, materialID *int64, r types.DateRange) ([]Purchase, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if materialID != nil {
		if _, err := s.repo.GetMaterial(ctx, p.UserID, *materialID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListPurchases(ctx, p.UserID, materialID, r)
}

// DeleteMaterial hard-deletes a material that has no purchase history.
func (s *Service) DeleteMaterial(ctx context.Context, p security.Principal, id int64) error {
	if err := security.RequireActive(p); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetMaterialForUpdate(ctx, p.UserID, id); err != nil {
			return err
		}
		referenced, err := s.repo.MaterialsWithPurchases(ctx, p.UserID, []int64{id})
		if err != nil {
			return err
		}
		if len(referenced) > 0 {
			return apperror.NewDependencyExists("material", referenced)
		}
		_, err = s.repo.DeleteMaterials(ctx, p.UserID, []int64{id})
		return err
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "material deleted", "material_id", id)
	return nil
}

// BulkDeleteMaterials deletes every listed material without purchase history
// and reports the ones skipped because history exists. Unknown ids are ignored;
// an id owned by another tenant aborts the whole call.
func (s *Service) BulkDeleteMaterials(ctx context.Context, p security.Principal, ids []int64) (*BulkDeleteResult, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, apperror.NewInvalidField("ids", "at least one material id is required")
	}

	result := &BulkDeleteResult{DeletedIDs: []int64{}, SkippedIDs: []int64{}}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing := make([]int64, 0, len(ids))
		for _, id := range ids {
			if _, err := s.repo.GetMaterialForUpdate(ctx, p.UserID, id); err != nil {
				if apperror.IsNotFound(err) {
					continue
				}
				return err
			}
			existing = append(existing, id)
		}
		if len(existing) == 0 {
			return nil
		}

		referenced, err := s.repo.MaterialsWithPurchases(ctx, p.UserID, existing)
		if err != nil {
			return err
		}
		skip := make(map[int64]struct{}, len(referenced))
		for _, id := range referenced {
			skip[id] = struct{}{}
		}

		deletable := make([]int64, 0, len(existing))
		for _, id := range existing {
			if _, ok := skip[id]; ok {
				result.SkippedIDs = append(result.SkippedIDs, id)
				continue
			}
			deletable = append(deletable, id)
		}
		if len(deletable) == 0 {
			return nil
		}

		n, err := s.repo.DeleteMaterials(ctx, p.UserID, deletable)
		if err != nil {
			return err
		}
		result.Deleted = int(n)
		result.DeletedIDs = deletable
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "materials bulk deleted", "deleted", result.Deleted, "skipped", len(result.SkippedIDs))
	return result, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
