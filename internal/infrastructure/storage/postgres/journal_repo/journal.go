// Package journal_repo provides the PostgreSQL sales and expenses repository.
package journal_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/inventory"
	"bizbooks/internal/domain/journal"
	"bizbooks/internal/infrastructure/storage/postgres"
)

var (
	_ journal.Repository   = (*Repo)(nil)
	_ inventory.SaleLedger = (*Repo)(nil)
)

const (
	salesTable    = "sales"
	expensesTable = "expenses"
)

var (
	saleInsertColumns    = postgres.ExtractDBColumns[journal.Sale]("id", "product_name")
	expenseInsertColumns = postgres.ExtractDBColumns[journal.Expense]("id", "category_name")

	saleColumns = append(
		postgres.Qualify("s", postgres.ExtractDBColumns[journal.Sale]("product_name")),
		"p.name AS product_name",
	)
	expenseColumns = append(
		postgres.Qualify("e", postgres.ExtractDBColumns[journal.Expense]("category_name")),
		"ec.name AS category_name",
	)
)

// Repo implements journal.Repository.
type Repo struct {
	txm     *postgres.TxManager
	copier  *postgres.BatchInserter
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new journal repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		copier:  postgres.NewBatchInserter(txm),
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

// --- Sales ---

func (r *Repo) selectSales() squirrel.SelectBuilder {
	return r.builder.Select(saleColumns...).
		From(salesTable + " s").
		LeftJoin("products p ON p.id = s.product_id")
}

func (r *Repo) salesQuery(userID int64, dr types.DateRange) squirrel.SelectBuilder {
	qb := r.selectSales().Where(squirrel.Eq{"s.user_id": userID}).OrderBy("s.sale_date", "s.id")
	return withinRange(qb, "s.sale_date", dr)
}

func (r *Repo) ListSales(ctx context.Context, userID int64, dr types.DateRange) ([]journal.Sale, error) {
	query, args, err := r.salesQuery(userID, dr).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	sales := make([]journal.Sale, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &sales, query, args...); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (r *Repo) InsertSale(ctx context.Context, s *journal.Sale) error {
	query, args, err := r.builder.Insert(salesTable).
		SetMap(postgres.StructToMap(s, "id", "product_name")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&s.ID); err != nil {
		return fmt.Errorf("insert sale: %w", postgres.MapError(err))
	}
	return nil
}

func (r *Repo) GetSale(ctx context.Context, userID, id int64) (*journal.Sale, error) {
	query, args, err := r.selectSales().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s journal.Sale
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", id)
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := postgres.CheckOwner("sale", id, s.UserID, userID); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) DeleteSale(ctx context.Context, userID, id int64) error {
	return r.delete(ctx, salesTable, "sale", userID, id)
}

// BulkInsertSales copies already validated sales; it needs the caller's transaction.
func (r *Repo) BulkInsertSales(ctx context.Context, sales []journal.Sale) (int64, error) {
	rows := make([][]any, 0, len(sales))
	for i := range sales {
		s := &sales[i]
		rows = append(rows, []any{s.UserID, s.ProductID, s.Quantity, s.TotalAmount, s.CogsTotal, s.SaleDate})
	}
	return r.copier.CopyFromSlice(ctx, salesTable, saleInsertColumns, rows)
}

// --- Expenses ---

func (r *Repo) selectExpenses() squirrel.SelectBuilder {
	return r.builder.Select(expenseColumns...).
		From(expensesTable + " e").
		LeftJoin("expense_categories ec ON ec.id = e.expense_category_id")
}

func (r *Repo) expensesQuery(userID int64, dr types.DateRange) squirrel.SelectBuilder {
	qb := r.selectExpenses().Where(squirrel.Eq{"e.user_id": userID}).OrderBy("e.expense_date", "e.id")
	return withinRange(qb, "e.expense_date", dr)
}

func (r *Repo) ListExpenses(ctx context.Context, userID int64, dr types.DateRange) ([]journal.Expense, error) {
	query, args, err := r.expensesQuery(userID, dr).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	expenses := make([]journal.Expense, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &expenses, query, args...); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

func (r *Repo) InsertExpense(ctx context.Context, e *journal.Expense) error {
	query, args, err := r.builder.Insert(expensesTable).
		SetMap(postgres.StructToMap(e, "id", "category_name")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&e.ID); err != nil {
		return fmt.Errorf("insert expense: %w", postgres.MapError(err))
	}
	return nil
}

func (r *Repo) GetExpense(ctx context.Context, userID, id int64) (*journal.Expense, error) {
	query, args, err := r.selectExpenses().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e journal.Expense
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense", id)
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if err := postgres.CheckOwner("expense", id, e.UserID, userID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) DeleteExpense(ctx context.Context, userID, id int64) error {
	return r.delete(ctx, expensesTable, "expense", userID, id)
}

// BulkInsertExpenses copies already validated expenses; it needs the caller's transaction.
func (r *Repo) BulkInsertExpenses(ctx context.Context, expenses []journal.Expense) (int64, error) {
	rows := make([][]any, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		rows = append(rows, []any{e.UserID, e.ExpenseCategoryID, e.Amount, e.Description, e.ExpenseDate})
	}
	return r.copier.CopyFromSlice(ctx, expensesTable, expenseInsertColumns, rows)
}

func (r *Repo) delete(ctx context.Context, table, entity string, userID, id int64) error {
	query, args, err := r.builder.Delete(table).Where(squirrel.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	q := r.txm.GetQuerier(ctx)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, postgres.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return postgres.MissError(ctx, q, table, entity, id, userID)
	}
	return nil
}
