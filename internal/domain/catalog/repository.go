package catalog

import "context"

// Repository is the catalog's storage contract. Every method is scoped by
// userID; a row owned by someone else fails with ACCESS_DENIED and a missing
// row with NOT_FOUND.
type Repository interface {
	ListCategories(ctx context.Context, userID int64, kind Kind, includeInactive bool) ([]Category, error)
	GetCategory(ctx context.Context, userID int64, kind Kind, id int64) (*Category, error)
	// FindActiveCategory matches name case-insensitively among active rows.
	FindActiveCategory(ctx context.Context, userID int64, kind Kind, name string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	RenameCategory(ctx context.Context, userID int64, kind Kind, id int64, name string) error
	// DeactivateCategory soft-deletes; products lose their product category reference.
	DeactivateCategory(ctx context.Context, userID int64, kind Kind, id int64) error

	ListProducts(ctx context.Context, userID int64, includeInactive bool) ([]Product, error)
	GetProduct(ctx context.Context, userID int64, id int64) (*Product, error)
	// FindActiveProduct matches name case-insensitively among active rows.
	FindActiveProduct(ctx context.Context, userID int64, name string) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	UpdateProductStock(ctx context.Context, userID int64, id int64, stock int64) error
	DeactivateProduct(ctx context.Context, userID int64, id int64) error
}
