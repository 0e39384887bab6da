// Package journal records sales and operating expenses and imports them in bulk.
package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"bizbooks/internal/core/types"
)

// Sale is an immutable record of goods sold. TotalAmount and CogsTotal capture
// price and cost at the moment of posting.
type Sale struct {
	ID          int64        `db:"id" json:"id"`
	UserID      int64        `db:"user_id" json:"-"`
	ProductID   *int64       `db:"product_id" json:"productId,omitempty"`
	ProductName *string      `db:"product_name" json:"productName,omitempty"`
	Quantity    int64        `db:"quantity" json:"quantity"`
	TotalAmount types.Money  `db:"total_amount" json:"totalAmount"`
	CogsTotal   *types.Money `db:"cogs_total" json:"cogsTotal,omitempty"`
	SaleDate    time.Time    `db:"sale_date" json:"saleDate"`
}

// Expense is an operating expense.
type Expense struct {
	ID                int64       `db:"id" json:"id"`
	UserID            int64       `db:"user_id" json:"-"`
	ExpenseCategoryID *int64      `db:"expense_category_id" json:"expenseCategoryId,omitempty"`
	CategoryName      *string     `db:"category_name" json:"categoryName,omitempty"`
	Amount            types.Money `db:"amount" json:"amount"`
	Description       *string     `db:"description" json:"description,omitempty"`
	ExpenseDate       time.Time   `db:"expense_date" json:"expenseDate"`
}

// NewSale prices q units at the given unit price and cost.
func NewSale(userID, productID int64, q int64, price, cost types.Money, at time.Time) Sale {
	qty := decimal.NewFromInt(q)
	cogs := types.RoundMoney(cost.Mul(qty))
	pid := productID
	return Sale{
		UserID:      userID,
		ProductID:   &pid,
		Quantity:    q,
		TotalAmount: types.RoundMoney(price.Mul(qty)),
		CogsTotal:   &cogs,
		SaleDate:    at,
	}
}

// ExpenseInput is the caller-supplied part of an expense.
type ExpenseInput struct {
	ExpenseCategoryID *int64
	Amount            types.Money
	Description       *string
	ExpenseDate       time.Time
}
