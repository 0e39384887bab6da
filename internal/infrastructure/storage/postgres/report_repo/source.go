// Package report_repo loads the raw rows analytics and reports aggregate.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/infrastructure/storage/postgres"
)

var _ analytics.Source = (*SourceRepo)(nil)

var (
	saleRecordColumns = []string{
		"s.id AS sale_id",
		"s.product_id",
		"p.name AS product_name",
		"p.category_id",
		"c.name AS category_name",
		"p.cost AS product_cost",
		"p.price AS product_price",
		"s.quantity",
		"s.total_amount",
		"s.cogs_total",
		"s.sale_date",
	}
	expenseRecordColumns = []string{
		"e.id AS expense_id",
		"e.expense_category_id",
		"ec.name AS category_name",
		"e.amount",
		"e.description",
		"e.expense_date",
	}
	productColumns = append(
		postgres.Qualify("p", postgres.ExtractDBColumns[catalog.Product]("category_name")),
		"c.name AS category_name",
	)
	materialColumns = postgres.ExtractDBColumns[inventory.Material]()
)

// SourceRepo implements analytics.Source. Callers run it inside one read-only
// snapshot transaction so every load sees the same data.
type SourceRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSourceRepo creates a new analytics source.
func NewSourceRepo(txm *postgres.TxManager) *SourceRepo {
	return &SourceRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func withinRange(qb squirrel.SelectBuilder, column string, r types.DateRange) squirrel.SelectBuilder {
	from, until := r.Bounds()
	if from != nil {
		qb = qb.Where(squirrel.GtOrEq{column: *from})
	}
	if until != nil {
		qb = qb.Where(squirrel.Lt{column: *until})
	}
	return qb
}

func (r *SourceRepo) salesQuery(userID int64, dr types.DateRange) squirrel.SelectBuilder {
	qb := r.builder.Select(saleRecordColumns...).
		From("sales s").
		LeftJoin("products p ON p.id = s.product_id").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(squirrel.Eq{"s.user_id": userID}).
		OrderBy("s.sale_date", "s.id")
	return withinRange(qb, "s.sale_date", dr)
}

// LoadSales returns every sale in the range joined to its product's current row.
func (r *SourceRepo) LoadSales(ctx context.Context, userID int64, dr types.DateRange) ([]analytics.SaleRecord, error) {
	query, args, err := r.salesQuery(userID, dr).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	records := make([]analytics.SaleRecord, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, query, args...); err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return records, nil
}

func (r *SourceRepo) expensesQuery(userID int64, dr types.DateRange) squirrel.SelectBuilder {
	qb := r.builder.Select(expenseRecordColumns...).
		From("expenses e").
		LeftJoin("expense_categories ec ON ec.id = e.expense_category_id").
		Where(squirrel.Eq{"e.user_id": userID}).
		OrderBy("e.expense_date", "e.id")
	return withinRange(qb, "e.expense_date", dr)
}

func (r *SourceRepo) LoadExpenses(ctx context.Context, userID int64, dr types.DateRange) ([]analytics.ExpenseRecord, error) {
	query, args, err := r.expensesQuery(userID, dr).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	records := make([]analytics.ExpenseRecord, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &records, query, args...); err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return records, nil
}

// LoadProducts returns the active products with their category names.
func (r *SourceRepo) LoadProducts(ctx context.Context, userID int64) ([]catalog.Product, error) {
	query, args, err := r.builder.Select(productColumns...).
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id").
		Where(squirrel.Eq{"p.user_id": userID, "p.is_active": true}).
		OrderBy("lower(p.name)", "p.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	products := make([]catalog.Product, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, query, args...); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

// LoadMaterials returns the active raw materials.
func (r *SourceRepo) LoadMaterials(ctx context.Context, userID int64) ([]inventory.Material, error) {
	query, args, err := r.builder.Select(materialColumns...).
		From("raw_materials").
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		OrderBy("lower(name)", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	materials := make([]inventory.Material, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &materials, query, args...); err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	return materials, nil
}
