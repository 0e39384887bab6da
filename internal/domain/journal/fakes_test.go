package journal

import (
	"context"
	"errors"
	"io"
	"sort"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
)

type passThroughTx struct{ calls int }

func (m *passThroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type memJournal struct {
	nextID   int64
	sales    []Sale
	expenses []Expense
}

func (r *memJournal) ListSales(_ context.Context, userID int64, rg types.DateRange) ([]Sale, error) {
	var out []Sale
	for _, s := range r.sales {
		if s.UserID == userID && rg.Contains(s.SaleDate) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SaleDate.Equal(out[j].SaleDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].SaleDate.Before(out[j].SaleDate)
	})
	return out, nil
}

func (r *memJournal) ListExpenses(_ context.Context, userID int64, rg types.DateRange) ([]Expense, error) {
	var out []Expense
	for _, e := range r.expenses {
		if e.UserID == userID && rg.Contains(e.ExpenseDate) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memJournal) InsertSale(_ context.Context, s *Sale) error {
	r.nextID++
	s.ID = r.nextID
	r.sales = append(r.sales, *s)
	return nil
}

func (r *memJournal) GetSale(_ context.Context, userID, id int64) (*Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			if s.UserID != userID {
				return nil, apperror.NewAccessDenied("record belongs to another account")
			}
			return &s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", id)
}

func (r *memJournal) DeleteSale(_ context.Context, _ int64, id int64) error {
	for i, s := range r.sales {
		if s.ID == id {
			r.sales = append(r.sales[:i], r.sales[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memJournal) InsertExpense(_ context.Context, e *Expense) error {
	r.nextID++
	e.ID = r.nextID
	r.expenses = append(r.expenses, *e)
	return nil
}

func (r *memJournal) GetExpense(_ context.Context, userID, id int64) (*Expense, error) {
	for _, e := range r.expenses {
		if e.ID == id {
			if e.UserID != userID {
				return nil, apperror.NewAccessDenied("record belongs to another account")
			}
			return &e, nil
		}
	}
	return nil, apperror.NewNotFound("expense", id)
}

func (r *memJournal) DeleteExpense(_ context.Context, _ int64, id int64) error {
	for i, e := range r.expenses {
		if e.ID == id {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memJournal) BulkInsertSales(ctx context.Context, sales []Sale) (int64, error) {
	for i := range sales {
		_ = r.InsertSale(ctx, &sales[i])
	}
	return int64(len(sales)), nil
}

func (r *memJournal) BulkInsertExpenses(ctx context.Context, expenses []Expense) (int64, error) {
	for i := range expenses {
		_ = r.InsertExpense(ctx, &expenses[i])
	}
	return int64(len(expenses)), nil
}

type memCatalog struct {
	products   []catalog.Product
	categories []catalog.Category
}

func (c *memCatalog) ListProducts(_ context.Context, userID int64, includeInactive bool) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range c.products {
		if p.UserID == userID && (includeInactive || p.IsActive) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *memCatalog) ListCategories(_ context.Context, userID int64, kind catalog.Kind, includeInactive bool) ([]catalog.Category, error) {
	var out []catalog.Category
	for _, cat := range c.categories {
		if cat.UserID == userID && cat.Kind == kind && (includeInactive || cat.IsActive) {
			out = append(out, cat)
		}
	}
	return out, nil
}

func (c *memCatalog) GetCategory(_ context.Context, userID int64, kind catalog.Kind, id int64) (*catalog.Category, error) {
	for _, cat := range c.categories {
		if cat.ID == id && cat.Kind == kind {
			if cat.UserID != userID {
				return nil, apperror.NewAccessDenied("record belongs to another account")
			}
			return &cat, nil
		}
	}
	return nil, apperror.NewNotFound(kind.Entity(), id)
}

// stubSheet returns fixed cells regardless of the input.
type stubSheet struct {
	cells [][]string
	err   error
}

func (s stubSheet) ReadRows(io.Reader) ([][]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cells, nil
}

var errCorrupt = errors.New("zip: not a valid zip file")
