package journal

import (
	"context"
	"io"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
)

// Repository stores sales and expenses. Every method is scoped by userID.
type Repository interface {
	// ListSales returns sales inside r ordered by sale_date, then id.
	ListSales(ctx context.Context, userID int64, r types.DateRange) ([]Sale, error)
	// ListExpenses returns expenses inside r ordered by expense_date, then id.
	ListExpenses(ctx context.Context, userID int64, r types.DateRange) ([]Expense, error)

	InsertSale(ctx context.Context, s *Sale) error
	GetSale(ctx context.Context, userID, id int64) (*Sale, error)
	DeleteSale(ctx context.Context, userID, id int64) error

	InsertExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, userID, id int64) (*Expense, error)
	DeleteExpense(ctx context.Context, userID, id int64) error

	// BulkInsertSales and BulkInsertExpenses must run inside the caller's transaction.
	BulkInsertSales(ctx context.Context, sales []Sale) (int64, error)
	BulkInsertExpenses(ctx context.Context, expenses []Expense) (int64, error)
}

// CatalogReader resolves product and category references during imports.
type CatalogReader interface {
	ListProducts(ctx context.Context, userID int64, includeInactive bool) ([]catalog.Product, error)
	ListCategories(ctx context.Context, userID int64, kind catalog.Kind, includeInactive bool) ([]catalog.Category, error)
	GetCategory(ctx context.Context, userID int64, kind catalog.Kind, id int64) (*catalog.Category, error)
}

// SheetReader returns the cell text of the first worksheet of an uploaded workbook.
type SheetReader interface {
	ReadRows(r io.Reader) ([][]string, error)
}
