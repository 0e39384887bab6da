// Package analytics is the financial aggregator: it turns a tenant's sales and
// expenses for a period into totals, margins, monthly roll-ups, product
// profitability, expense breakdowns, ABC classes and period comparisons.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
)

// SaleRecord is a sale joined to the current snapshot of its product.
// Product fields are nil when the sale has no product reference.
type SaleRecord struct {
	SaleID       int64        `db:"sale_id" json:"saleId"`
	ProductID    *int64       `db:"product_id" json:"productId,omitempty"`
	ProductName  *string      `db:"product_name" json:"productName,omitempty"`
	CategoryID   *int64       `db:"category_id" json:"categoryId,omitempty"`
	CategoryName *string      `db:"category_name" json:"categoryName,omitempty"`
	ProductCost  *types.Money `db:"product_cost" json:"-"`
	ProductPrice *types.Money `db:"product_price" json:"-"`
	Quantity     int64        `db:"quantity" json:"quantity"`
	TotalAmount  types.Money  `db:"total_amount" json:"totalAmount"`
	CogsTotal    *types.Money `db:"cogs_total" json:"cogsTotal,omitempty"`
	SaleDate     time.Time    `db:"sale_date" json:"saleDate"`
}

// HasProduct reports whether the sale joins to a product row.
func (s *SaleRecord) HasProduct() bool { return s.ProductID != nil && s.ProductName != nil }

// Product returns the product name, or an empty string.
func (s *SaleRecord) Product() string {
	if s.ProductName == nil {
		return ""
	}
	return *s.ProductName
}

// Category returns the product category name or the uncategorized label.
func (s *SaleRecord) Category() string {
	if s.CategoryName == nil || *s.CategoryName == "" {
		return catalog.UncategorizedLabel
	}
	return *s.CategoryName
}

// EffectiveCOGS is the captured cogs_total. Rows without one are recomputed from
// the product's current cost, a best-effort figure that mixes old and new
// costs; rows without a product contribute zero.
func (s *SaleRecord) EffectiveCOGS() types.Money {
	if s.CogsTotal != nil {
		return *s.CogsTotal
	}
	if s.ProductCost != nil {
		return types.RoundMoney(s.ProductCost.Mul(decimal.NewFromInt(s.Quantity)))
	}
	return decimal.Zero
}

// ExpenseRecord is an expense joined to its category.
type ExpenseRecord struct {
	ExpenseID    int64       `db:"expense_id" json:"expenseId"`
	CategoryID   *int64      `db:"expense_category_id" json:"categoryId,omitempty"`
	CategoryName *string     `db:"category_name" json:"categoryName,omitempty"`
	Amount       types.Money `db:"amount" json:"amount"`
	Description  *string     `db:"description" json:"description,omitempty"`
	ExpenseDate  time.Time   `db:"expense_date" json:"expenseDate"`
}

// Category returns the category name or the uncategorized label.
func (e *ExpenseRecord) Category() string {
	if e.CategoryName == nil || *e.CategoryName == "" {
		return catalog.UncategorizedLabel
	}
	return *e.CategoryName
}

// Totals are the scalar results of one aggregation.
type Totals struct {
	TotalRevenue   types.Money `json:"totalRevenue"`
	TotalCOGS      types.Money `json:"totalCogs"`
	GrossProfit    types.Money `json:"grossProfit"`
	TotalExpenses  types.Money `json:"totalExpenses"`
	NetProfit      types.Money `json:"netProfit"`
	NumSales       int64       `json:"numSales"`
	UnitsSold      int64       `json:"unitsSold"`
	AvgTicket      types.Money `json:"avgTicket"`
	GrossMarginPct types.Money `json:"grossMarginPct"`
	NetMarginPct   types.Money `json:"netMarginPct"`
}

// MonthlyRow is one calendar month of the roll-up, keyed by its last day.
type MonthlyRow struct {
	Month     time.Time   `json:"month"`
	Revenue   types.Money `json:"revenue"`
	COGS      types.Money `json:"cogs"`
	Gross     types.Money `json:"gross"`
	Expenses  types.Money `json:"expenses"`
	NetProfit types.Money `json:"netProfit"`
}

// ProductProfit is the per-product profitability line.
type ProductProfit struct {
	Product          string      `json:"product"`
	UnitsSold        int64       `json:"unitsSold"`
	Revenue          types.Money `json:"revenue"`
	Cost             types.Money `json:"cost"`
	Gross            types.Money `json:"gross"`
	ProfitabilityPct types.Money `json:"profitabilityPct"`
}

// CategoryAmount is one line of the expense breakdown.
type CategoryAmount struct {
	Category string      `json:"category"`
	Amount   types.Money `json:"amount"`
}

// ABC classes.
const (
	ClassA    = "A"
	ClassB    = "B"
	ClassC    = "C"
	ClassNone = "-"
)

// ABCRow is one product of the Pareto classification.
type ABCRow struct {
	Product       string      `json:"product"`
	Revenue       types.Money `json:"revenue"`
	CumulativePct types.Money `json:"cumulativePct"`
	Class         string      `json:"class"`
}

// Bundle is the immutable result of one aggregation over a period.
type Bundle struct {
	Period           types.DateRange  `json:"-"`
	Sales            []SaleRecord     `json:"-"`
	Expenses         []ExpenseRecord  `json:"-"`
	Merged           []SaleRecord     `json:"-"`
	Totals           Totals           `json:"totals"`
	Monthly          []MonthlyRow     `json:"monthly"`
	Products         []ProductProfit  `json:"products"`
	ExpenseBreakdown []CategoryAmount `json:"expenseBreakdown"`
	ABC              []ABCRow         `json:"abc"`
}
