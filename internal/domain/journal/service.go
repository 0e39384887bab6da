package journal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/tx"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
	"bizbooks/pkg/logger"
)

// Service provides journal operations.
type Service struct {
	repo      Repository
	catalog   CatalogReader
	sheets    SheetReader
	txManager tx.Manager
}

// NewService creates a new journal service.
func NewService(repo Repository, catalog CatalogReader, sheets SheetReader, txManager tx.Manager) *Service {
	return &Service{repo: repo, catalog: catalog, sheets: sheets, txManager: txManager}
}

// ListSales returns the caller's sales in r.
func (s *Service) ListSales(ctx context.Context, p security.Principal, r types.DateRange) ([]Sale, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	return s.repo.ListSales(ctx, p.UserID, r)
}

// ListExpenses returns the caller's expenses in r.
func (s *Service) ListExpenses(ctx context.Context, p security.Principal, r types.DateRange) ([]Expense, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	return s.repo.ListExpenses(ctx, p.UserID, r)
}

func validateAmount(field string, m types.Money) error {
	if m.IsNegative() {
		return apperror.NewInvalidField(field, field+" must not be negative")
	}
	if m.GreaterThan(types.MaxMoney) {
		return apperror.NewOverflow(field, m.String())
	}
	return nil
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

// RecordExpense appends an operating expense.
func (s *Service) RecordExpense(ctx context.Context, p security.Principal, in ExpenseInput) (*Expense, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if in.ExpenseDate.IsZero() {
		return nil, apperror.NewInvalidField("expenseDate", "expense date is required")
	}
	if in.ExpenseCategoryID != nil {
		c, err := s.catalog.GetCategory(ctx, p.UserID, catalog.KindExpense, *in.ExpenseCategoryID)
		if err != nil {
			return nil, err
		}
		if !c.IsActive {
			return nil, apperror.NewNotFound(catalog.KindExpense.Entity(), *in.ExpenseCategoryID)
		}
	}

	e := &Expense{
		UserID:            p.UserID,
		ExpenseCategoryID: in.ExpenseCategoryID,
		Amount:            types.RoundMoney(in.Amount),
		Description:       trimOptional(in.Description),
		ExpenseDate:       in.ExpenseDate,
	}
	if err := s.repo.InsertExpense(ctx, e); err != nil {
		return nil, err
	}

	logger.Info(ctx, "expense recorded", "expense_id", e.ID, "amount", e.Amount.String())
	return e, nil
}

// DeleteExpense removes one of the caller's expenses.
func (s *Service) DeleteExpense(ctx context.Context, p security.Principal, id int64) error {
	if err := security.RequireActive(p); err != nil {
		return err
	}
	if _, err := s.repo.GetExpense(ctx, p.UserID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, p.UserID, id); err != nil {
		return err
	}
	logger.Info(ctx, "expense deleted", "expense_id", id)
	return nil
}

// ImportResult reports a committed bulk import.
type ImportResult struct {
	Inserted int64 `json:"inserted"`
}

// ImportSales validates every row, then inserts them all in one transaction.
// Any invalid row aborts the whole import. Stock is not touched.
func (s *Service) ImportSales(ctx context.Context, p security.Principal, rows []SaleRow) (*ImportResult, error) {
	return s.importSales(ctx, p, rows, 1)
}

// ImportSalesSheet reads rows from an uploaded workbook and imports them.
func (s *Service) ImportSalesSheet(ctx context.Context, p security.Principal, file io.Reader) (*ImportResult, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	cells, err := s.sheets.ReadRows(file)
	if err != nil {
		return nil, apperror.NewInvalidField("file", "could not read spreadsheet").WithCause(err)
	}
	rows, err := SaleRowsFromSheet(cells)
	if err != nil {
		return nil, err
	}
	return s.importSales(ctx, p, rows, 2)
}

func (s *Service) importSales(ctx context.Context, p security.Principal, rows []SaleRow, firstRow int) (*ImportResult, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NewInvalidInput("no rows to import")
	}

	products, err := s.catalog.ListProducts(ctx, p.UserID, true)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	resolver := newProductResolver(products)

	sales := make([]Sale, 0, len(rows))
	var rowErrs []apperror.RowError
	for i, row := range rows {
		sale, errs := row.toSale(p.UserID, firstRow+i, resolver)
		if len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		sales = append(sales, sale)
	}
	if len(rowErrs) > 0 {
		return nil, apperror.NewInvalidRows(rowErrs)
	}

	var inserted int64
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.BulkInsertSales(ctx, sales)
		inserted = n
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("import sales: %w", err)
	}

	logger.Info(ctx, "sales imported", "rows", inserted)
	return &ImportResult{Inserted: inserted}, nil
}

// ImportExpenses validates every row, then inserts them all in one transaction.
func (s *Service) ImportExpenses(ctx context.Context, p security.Principal, rows []ExpenseRow) (*ImportResult, error) {
	return s.importExpenses(ctx, p, rows, 1)
}

// ImportExpensesSheet reads rows from an uploaded workbook and imports them.
func (s *Service) ImportExpensesSheet(ctx context.Context, p security.Principal, file io.Reader) (*ImportResult, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	cells, err := s.sheets.ReadRows(file)
	if err != nil {
		return nil, apperror.NewInvalidField("file", "could not read spreadsheet").WithCause(err)
	}
	rows, err := ExpenseRowsFromSheet(cells)
	if err != nil {
		return nil, err
	}
	return s.importExpenses(ctx, p, rows, 2)
}

func (s *Service) importExpenses(ctx context.Context, p security.Principal, rows []ExpenseRow, firstRow int) (*ImportResult, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NewInvalidInput("no rows to import")
	}

	categories, err := s.catalog.ListCategories(ctx, p.UserID, catalog.KindExpense, false)
	if err != nil {
		return nil, fmt.Errorf("load expense categories: %w", err)
	}
	byName := make(map[string]int64, len(categories))
	for _, c := range categories {
		byName[strings.ToLower(c.Name)] = c.ID
	}

	expenses := make([]Expense, 0, len(rows))
	var rowErrs []apperror.RowError
	for i, row := range rows {
		e, errs := row.toExpense(p.UserID, firstRow+i, byName)
		if len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		expenses = append(expenses, e)
	}
	if len(rowErrs) > 0 {
		return nil, apperror.NewInvalidRows(rowErrs)
	}

	var inserted int64
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.BulkInsertExpenses(ctx, expenses)
		inserted = n
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("import expenses: %w", err)
	}

	logger.Info(ctx, "expenses imported", "rows", inserted)
	return &ImportResult{Inserted: inserted}, nil
}

var importDateLayouts = []string{
	types.DateLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01-02-06",
	"01/02/2006",
}

// parseImportDate accepts ISO dates and the default spreadsheet renderings.
func parseImportDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range importDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return types.TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}
