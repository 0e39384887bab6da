// Package catalog manages products, product categories and expense categories.
// All three are soft-deleted so historical sales and expenses keep resolving.
package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/types"
)

// UncategorizedLabel is shown wherever a category reference is null.
const UncategorizedLabel = "Uncategorized"

// Kind selects between the two category tables.
type Kind string

const (
	KindProduct Kind = "product"
	KindExpense Kind = "expense"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k == KindProduct || k == KindExpense }

// Entity is the name used in error details.
func (k Kind) Entity() string {
	if k == KindExpense {
		return "expense category"
	}
	return "category"
}

// Category is a product category or an expense category.
type Category struct {
	ID       int64  `db:"id" json:"id"`
	UserID   int64  `db:"user_id" json:"-"`
	Name     string `db:"name" json:"name"`
	IsActive bool   `db:"is_active" json:"isActive"`
	Kind     Kind   `db:"-" json:"kind"`
}

// Product is a sellable item with its own unit stock.
type Product struct {
	ID             int64       `db:"id" json:"id"`
	UserID         int64       `db:"user_id" json:"-"`
	CategoryID     *int64      `db:"category_id" json:"categoryId,omitempty"`
	CategoryName   *string     `db:"category_name" json:"categoryName,omitempty"`
	Name           string      `db:"name" json:"name"`
	Description    *string     `db:"description" json:"description,omitempty"`
	Cost           types.Money `db:"cost" json:"cost"`
	Price          types.Money `db:"price" json:"price"`
	Stock          int64       `db:"stock" json:"stock"`
	AlertThreshold int64       `db:"alert_threshold" json:"alertThreshold"`
	IsActive       bool        `db:"is_active" json:"isActive"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`
}

// IsLowStock is true when an alert threshold is set and stock has reached it.
func (p *Product) IsLowStock() bool {
	return p.AlertThreshold > 0 && p.Stock <= p.AlertThreshold
}

// InventoryValue is stock valued at the current cost.
func (p *Product) InventoryValue() types.Money {
	return p.Cost.Mul(decimal.NewFromInt(p.Stock))
}

// CategoryLabel resolves the display category.
func (p *Product) CategoryLabel() string {
	if p.CategoryName == nil || *p.CategoryName == "" {
		return UncategorizedLabel
	}
	return *p.CategoryName
}

// ProductInput is the editable part of a product.
type ProductInput struct {
	Name           string
	Description    *string
	CategoryID     *int64
	Cost           types.Money
	Price          types.Money
	Stock          int64
	AlertThreshold int64
}

// Column widths, in characters.
const (
	MaxCategoryNameLen = 100
	MaxProductNameLen  = 200
	MaxMaterialNameLen = 200
	MaxUnitMeasureLen  = 50
	MaxSupplierLen     = 200
)

// CollapseSpaces trims and squeezes internal whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeCategoryName trims, squeezes spaces and title-cases.
// A cases.Caser keeps state, so each call gets its own.
func NormalizeCategoryName(name string) string {
	return cases.Title(language.Und).String(CollapseSpaces(name))
}

// CheckLength fails with INVALID_INPUT when value has more than limit characters.
func CheckLength(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return apperror.NewInvalidField(field, fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}

// NormalizeProductName trims and squeezes spaces; case is preserved.
func NormalizeProductName(name string) string {
	return CollapseSpaces(name)
}
