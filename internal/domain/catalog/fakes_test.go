package catalog

import (
	"context"
	"sort"
	"strings"

	"bizbooks/internal/core/apperror"
)

type memRepo struct {
	nextID     int64
	categories map[Kind]map[int64]*Category
	products   map[int64]*Product
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[Kind]map[int64]*Category{KindProduct: {}, KindExpense: {}},
		products:   map[int64]*Product{},
	}
}

func (r *memRepo) id() int64 { r.nextID++; return r.nextID }

func (r *memRepo) ListCategories(_ context.Context, userID int64, kind Kind, includeInactive bool) ([]Category, error) {
	var out []Category
	for _, c := range r.categories[kind] {
		if c.UserID == userID && (includeInactive || c.IsActive) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) GetCategory(_ context.Context, userID int64, kind Kind, id int64) (*Category, error) {
	c, ok := r.categories[kind][id]
	if !ok {
		return nil, apperror.NewNotFound(kind.Entity(), id)
	}
	if c.UserID != userID {
		return nil, apperror.NewAccessDenied("record belongs to another account")
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) FindActiveCategory(_ context.Context, userID int64, kind Kind, name string) (*Category, error) {
	for _, c := range r.categories[kind] {
		if c.UserID == userID && c.IsActive && strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound(kind.Entity(), name)
}

func (r *memRepo) CreateCategory(_ context.Context, c *Category) error {
	c.ID = r.id()
	cp := *c
	r.categories[c.Kind][c.ID] = &cp
	return nil
}

func (r *memRepo) RenameCategory(_ context.Context, _ int64, kind Kind, id int64, name string) error {
	r.categories[kind][id].Name = name
	return nil
}

func (r *memRepo) DeactivateCategory(_ context.Context, _ int64, kind Kind, id int64) error {
	r.categories[kind][id].IsActive = false
	if kind == KindProduct {
		for _, p := range r.products {
			if p.CategoryID != nil && *p.CategoryID == id {
				p.CategoryID = nil
				p.CategoryName = nil
			}
		}
	}
	return nil
}

func (r *memRepo) ListProducts(_ context.Context, userID int64, includeInactive bool) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if p.UserID == userID && (includeInactive || p.IsActive) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) GetProduct(_ context.Context, userID int64, id int64) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product", id)
	}
	if p.UserID != userID {
		return nil, apperror.NewAccessDenied("record belongs to another account")
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) FindActiveProduct(_ context.Context, userID int64, name string) (*Product, error) {
	for _, p := range r.products {
		if p.UserID == userID && p.IsActive && strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", name)
}

func (r *memRepo) withCategoryName(p *Product) {
	p.CategoryName = nil
	if p.CategoryID != nil {
		if c, ok := r.categories[KindProduct][*p.CategoryID]; ok {
			name := c.Name
			p.CategoryName = &name
		}
	}
}

func (r *memRepo) CreateProduct(_ context.Context, p *Product) error {
	p.ID = r.id()
	cp := *p
	r.withCategoryName(&cp)
	r.products[p.ID] = &cp
	return nil
}

func (r *memRepo) UpdateProduct(_ context.Context, p *Product) error {
	cp := *p
	r.withCategoryName(&cp)
	r.products[p.ID] = &cp
	return nil
}

func (r *memRepo) UpdateProductStock(_ context.Context, _ int64, id int64, stock int64) error {
	r.products[id].Stock = stock
	return nil
}

func (r *memRepo) DeactivateProduct(_ context.Context, _ int64, id int64) error {
	r.products[id].IsActive = false
	return nil
}
