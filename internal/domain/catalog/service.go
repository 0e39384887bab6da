package catalog

import (
	"context"
	"fmt"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/types"
	"bizbooks/pkg/logger"
)

// Service provides catalog business operations.
type Service struct {
	repo Repository
}

// NewService creates a new catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func checkKind(kind Kind) error {
	if !kind.Valid() {
		return apperror.NewInvalidField("kind", fmt.Sprintf("unknown category kind %q", kind))
	}
	return nil
}

// --- Categories ---

// ListCategories returns the caller's categories of the given kind.
func (s *Service) ListCategories(ctx context.Context, p security.Principal, kind Kind, includeInactive bool) ([]Category, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, p.UserID, kind, includeInactive)
}

func (s *Service) validCategoryName(ctx context.Context, p security.Principal, kind Kind, raw string, exceptID int64) (string, error) {
	name := NormalizeCategoryName(raw)
	if name == "" {
		return "", apperror.NewInvalidField("name", "name is required")
	}
	if err := CheckLength("name", name, MaxCategoryNameLen); err != nil {
		return "", err
	}

	existing, err := s.repo.FindActiveCategory(ctx, p.UserID, kind, name)
	if err != nil && !apperror.IsNotFound(err) {
		return "", fmt.Errorf("find category: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return "", apperror.NewDuplicateName(kind.Entity(), name)
	}
	return name, nil
}

// CreateCategory adds a category with a normalized, tenant-unique name.
func (s *Service) CreateCategory(ctx context.Context, p security.Principal, kind Kind, name string) (*Category, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	normalized, err := s.validCategoryName(ctx, p, kind, name, 0)
	if err != nil {
		return nil, err
	}

	c := &Category{UserID: p.UserID, Name: normalized, IsActive: true, Kind: kind}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	logger.Info(ctx, "category created", "kind", kind, "category_id", c.ID, "name", c.Name)
	return c, nil
}

// RenameCategory changes the name of an active category.
func (s *Service) RenameCategory(ctx context.Context, p security.Principal, kind Kind, id int64, name string) (*Category, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	c, err := s.repo.GetCategory(ctx, p.UserID, kind, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, apperror.NewNotFound(kind.Entity(), id)
	}
	normalized, err := s.validCategoryName(ctx, p, kind, name, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.RenameCategory(ctx, p.UserID, kind, id, normalized); err != nil {
		return nil, err
	}
	c.Name = normalized

	logger.Info(ctx, "category renamed", "kind", kind, "category_id", id, "name", normalized)
	return c, nil
}

// DeleteCategory soft-deletes a category. Historical sales and expenses are untouched.
func (s *Service) DeleteCategory(ctx context.Context, p security.Principal, kind Kind, id int64) error {
	if err := security.RequireActive(p); err != nil {
		return err
	}
	if err := checkKind(kind); err != nil {
		return err
	}
	c, err := s.repo.GetCategory(ctx, p.UserID, kind, id)
	if err != nil {
		return err
	}
	if !c.IsActive {
		return apperror.NewNotFound(kind.Entity(), id)
	}
	if err := s.repo.DeactivateCategory(ctx, p.UserID, kind, id); err != nil {
		return err
	}

	logger.Info(ctx, "category deleted", "kind", kind, "category_id", id)
	return nil
}

// --- Products ---

// ListProducts returns the caller's products, active only unless includeInactive.
func (s *Service) ListProducts(ctx context.Context, p security.Principal, includeInactive bool) ([]Product, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	return s.repo.ListProducts(ctx, p.UserID, includeInactive)
}

// GetProduct returns one active product.
func (s *Service) GetProduct(ctx context.Context, p security.Principal, id int64) (*Product, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	return s.activeProduct(ctx, p.UserID, id)
}

func (s *Service) activeProduct(ctx context.Context, userID, id int64) (*Product, error) {
	prod, err := s.repo.GetProduct(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !prod.IsActive {
		return nil, apperror.NewNotFound("product", id)
	}
	return prod, nil
}

func validateMoney(field string, m types.Money) error {
	if m.IsNegative() {
		return apperror.NewInvalidField(field, field+" must not be negative")
	}
	if m.GreaterThan(types.MaxMoney) {
		return apperror.NewOverflow(field, m.String())
	}
	return nil
}

func (s *Service) validateProduct(ctx context.Context, p security.Principal, in *ProductInput, exceptID int64) error {
	in.Name = NormalizeProductName(in.Name)
	if in.Name == "" {
		return apperror.NewInvalidField("name", "name is required")
	}
	if err := CheckLength("name", in.Name, MaxProductNameLen); err != nil {
		return err
	}
	if err := validateMoney("cost", in.Cost); err != nil {
		return err
	}
	if err := validateMoney("price", in.Price); err != nil {
		return err
	}
	if in.Stock < 0 {
		return apperror.NewInvalidField("stock", "stock must not be negative")
	}
	if in.AlertThreshold < 0 {
		return apperror.NewInvalidField("alertThreshold", "alert threshold must not be negative")
	}
	in.Cost = types.RoundMoney(in.Cost)
	in.Price = types.RoundMoney(in.Price)

	if in.CategoryID != nil {
		c, err := s.repo.GetCategory(ctx, p.UserID, KindProduct, *in.CategoryID)
		if err != nil {
			return err
		}
		if !c.IsActive {
			return apperror.NewNotFound(KindProduct.Entity(), *in.CategoryID)
		}
	}

	existing, err := s.repo.FindActiveProduct(ctx, p.UserID, in.Name)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("find product: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return apperror.NewDuplicateName("product", in.Name)
	}
	return nil
}

// CreateProduct adds a product with non-negative cost, price, stock and threshold.
func (s *Service) CreateProduct(ctx context.Context, p security.Principal, in ProductInput) (*Product, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, p, &in, 0); err != nil {
		return nil, err
	}

	prod := &Product{
		UserID:         p.UserID,
		CategoryID:     in.CategoryID,
		Name:           in.Name,
		Description:    in.Description,
		Cost:           in.Cost,
		Price:          in.Price,
		Stock:          in.Stock,
		AlertThreshold: in.AlertThreshold,
		IsActive:       true,
	}
	if err := s.repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created", "product_id", prod.ID, "name", prod.Name, "stock", prod.Stock)
	return prod, nil
}

// UpdateProduct overwrites the descriptive and pricing fields. Stock is left
// alone; historical sales keep the price and cost captured when they were posted.
func (s *Service) UpdateProduct(ctx context.Context, p security.Principal, id int64, in ProductInput) (*Product, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	prod, err := s.activeProduct(ctx, p.UserID, id)
	if err != nil {
		return nil, err
	}
	in.Stock = prod.Stock
	if err := s.validateProduct(ctx, p, &in, id); err != nil {
		return nil, err
	}

	prod.Name = in.Name
	prod.Description = in.Description
	prod.CategoryID = in.CategoryID
	prod.Cost = in.Cost
	prod.Price = in.Price
	prod.AlertThreshold = in.AlertThreshold
	if err := s.repo.UpdateProduct(ctx, prod); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product updated", "product_id", id)
	return prod, nil
}

// SetProductStock is the manual stock edit. Negative values are refused.
func (s *Service) SetProductStock(ctx context.Context, p security.Principal, id int64, stock int64) (*Product, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, apperror.NewInvalidField("stock", "stock must not be negative")
	}
	prod, err := s.activeProduct(ctx, p.UserID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProductStock(ctx, p.UserID, id, stock); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product stock set", "product_id", id, "old_stock", prod.Stock, "new_stock", stock)
	prod.Stock = stock
	return prod, nil
}

// DeleteProduct soft-deletes a product; its sales keep resolving to it.
func (s *Service) DeleteProduct(ctx context.Context, p security.Principal, id int64) error {
	if err := security.RequireActive(p); err != nil {
		return err
	}
	if _, err := s.activeProduct(ctx, p.UserID, id); err != nil {
		return err
	}
	if err := s.repo.DeactivateProduct(ctx, p.UserID, id); err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "product_id", id)
	return nil
}

// LowStockProducts lists active products at or below their alert threshold.
func (s *Service) LowStockProducts(ctx context.Context, p security.Principal) ([]Product, error) {
	products, err := s.ListProducts(ctx, p, false)
	if err != nil {
		return nil, err
	}
	return LowStock(products), nil
}
