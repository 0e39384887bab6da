// Package catalog_repo provides the PostgreSQL catalog repository: product
// categories, expense categories and products.
package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/domain/journal"
	"bizbooks/internal/infrastructure/storage/postgres"
)

var (
	_ catalog.Repository     = (*Repo)(nil)
	_ inventory.ProductStock = (*Repo)(nil)
	_ journal.CatalogReader  = (*Repo)(nil)
)

const productsTable = "products"

var (
	categoryColumns = postgres.ExtractDBColumns[catalog.Category]()
	productColumns  = append(
		postgres.Qualify("p", postgres.ExtractDBColumns[catalog.Product]("category_name")),
		"c.name AS category_name",
	)
)

func categoryTable(kind catalog.Kind) string {
	if kind == catalog.KindExpense {
		return "expense_categories"
	}
	return "categories"
}

// Repo implements the catalog storage contracts.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new catalog repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// --- Categories ---

func (r *Repo) ListCategories(ctx context.Context, userID int64, kind catalog.Kind, includeInactive bool) ([]catalog.Category, error) {
	qb := r.builder.Select(categoryColumns...).
		From(categoryTable(kind)).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("lower(name)", "id")
	if !includeInactive {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	categories := make([]catalog.Category, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", categoryTable(kind), err)
	}
	for i := range categories {
		categories[i].Kind = kind
	}
	return categories, nil
}

func (r *Repo) GetCategory(ctx context.Context, userID int64, kind catalog.Kind, id int64) (*catalog.Category, error) {
	query, args, err := r.builder.Select(categoryColumns...).
		From(categoryTable(kind)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c catalog.Category
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(kind.Entity(), id)
		}
		return nil, fmt.Errorf("get %s: %w", kind.Entity(), err)
	}
	if err := postgres.CheckOwner(kind.Entity(), id, c.UserID, userID); err != nil {
		return nil, err
	}
	c.Kind = kind
	return &c, nil
}

func (r *Repo) FindActiveCategory(ctx context.Context, userID int64, kind catalog.Kind, name string) (*catalog.Category, error) {
	query, args, err := r.builder.Select(categoryColumns...).
		From(categoryTable(kind)).
		Where(squirrel.Eq{"user_id": userID, "is_active": true}).
		Where(squirrel.Expr("lower(name) = lower(?)", name)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c catalog.Category
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(kind.Entity(), name)
		}
		return nil, fmt.Errorf("find %s: %w", kind.Entity(), err)
	}
	c.Kind = kind
	return &c, nil
}

func (r *Repo) CreateCategory(ctx context.Context, c *catalog.Category) error {
	query, args, err := r.builder.Insert(categoryTable(c.Kind)).
		SetMap(postgres.StructToMap(c, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert %s: %w", c.Kind.Entity(), postgres.MapError(err))
	}
	return nil
}

func (r *Repo) updateCategory(ctx context.Context, userID int64, kind catalog.Kind, id int64, set map[string]any) error {
	query, args, err := r.builder.Update(categoryTable(kind)).
		SetMap(set).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	q := r.txm.GetQuerier(ctx)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind.Entity(), postgres.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return postgres.MissError(ctx, q, categoryTable(kind), kind.Entity(), id, userID)
	}
	return nil
}

func (r *Repo) RenameCategory(ctx context.Context, userID int64, kind catalog.Kind, id int64, name string) error {
	return r.updateCategory(ctx, userID, kind, id, map[string]any{"name": name})
}

// DeactivateCategory soft-deletes a category. Products drop their reference
// to a deleted product category; expenses keep theirs.
func (r *Repo) DeactivateCategory(ctx context.Context, userID int64, kind catalog.Kind, id int64) error {
	return r.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.updateCategory(ctx, userID, kind, id, map[string]any{"is_active": false}); err != nil {
			return err
		}
		if kind != catalog.KindProduct {
			return nil
		}
		_, err := r.txm.GetQuerier(ctx).Exec(ctx,
			`UPDATE products SET category_id = NULL, updated_at = $3 WHERE category_id = $1 AND user_id = $2`,
			id, userID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("detach products: %w", err)
		}
		return nil
	})
}

// --- Products ---

func (r *Repo) selectProducts() squirrel.SelectBuilder {
	return r.builder.Select(productColumns...).
		From("products p").
		LeftJoin("categories c ON c.id = p.category_id")
}

func (r *Repo) ListProducts(ctx context.Context, userID int64, includeInactive bool) ([]catalog.Product, error) {
	qb := r.selectProducts().Where(squirrel.Eq{"p.user_id": userID}).OrderBy("lower(p.name)", "p.id")
	if !includeInactive {
		qb = qb.Where(squirrel.Eq{"p.is_active": true})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	products := make([]catalog.Product, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &products, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *Repo) getProduct(ctx context.Context, userID, id int64, lock bool) (*catalog.Product, error) {
	qb := r.selectProducts().Where(squirrel.Eq{"p.id": id})
	if lock {
		qb = qb.Suffix("FOR UPDATE OF p")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := postgres.CheckOwner("product", id, p.UserID, userID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetProduct(ctx context.Context, userID int64, id int64) (*catalog.Product, error) {
	return r.getProduct(ctx, userID, id, false)
}

// GetProductForUpdate locks the product row for the rest of the transaction.
func (r *Repo) GetProductForUpdate(ctx context.Context, userID, id int64) (*catalog.Product, error) {
	if r.txm.GetTx(ctx) == nil {
		return nil, fmt.Errorf("GetProductForUpdate requires transaction context")
	}
	return r.getProduct(ctx, userID, id, true)
}

func (r *Repo) FindActiveProduct(ctx context.Context, userID int64, name string) (*catalog.Product, error) {
	query, args, err := r.selectProducts().
		Where(squirrel.Eq{"p.user_id": userID, "p.is_active": true}).
		Where(squirrel.Expr("lower(p.name) = lower(?)", name)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p catalog.Product
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", name)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query, args, err := r.builder.Insert(productsTable).
		SetMap(postgres.StructToMap(p, "id", "category_name", "created_at", "updated_at")).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("insert product: %w", postgres.MapError(err))
	}
	return nil
}

func (r *Repo) updateProduct(ctx context.Context, userID, id int64, set map[string]any) error {
	set["updated_at"] = time.Now().UTC()
	query, args, err := r.builder.Update(productsTable).
		SetMap(set).
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	q := r.txm.GetQuerier(ctx)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", postgres.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return postgres.MissError(ctx, q, productsTable, "product", id, userID)
	}
	return nil
}

func (r *Repo) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return r.updateProduct(ctx, p.UserID, p.ID, map[string]any{
		"name":            p.Name,
		"description":     p.Description,
		"category_id":     p.CategoryID,
		"cost":            p.Cost,
		"price":           p.Price,
		"alert_threshold": p.AlertThreshold,
	})
}

// UpdateProductStock writes the new stock; the CHECK constraint refuses negatives.
func (r *Repo) UpdateProductStock(ctx context.Context, userID int64, id int64, stock int64) error {
	if stock < 0 {
		return apperror.NewInvalidField("stock", "stock must not be negative")
	}
	return r.updateProduct(ctx, userID, id, map[string]any{"stock": stock})
}

func (r *Repo) DeactivateProduct(ctx context.Context, userID int64, id int64) error {
	return r.updateProduct(ctx, userID, id, map[string]any{"is_active": false})
}
