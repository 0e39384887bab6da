package dto

import (
	"time"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/journal"
)

// SaleRequest posts a sale against current stock.
type SaleRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int64 `json:"quantity"`
}

// ExpenseRequest records an operating expense. ExpenseDate defaults to now.
type ExpenseRequest struct {
	ExpenseCategoryID *int64      `json:"expenseCategoryId"`
	Amount            types.Money `json:"amount"`
	Description       *string     `json:"description"`
	ExpenseDate       string      `json:"expenseDate"`
}

// ToDomain converts to the domain input.
func (r *ExpenseRequest) ToDomain(now time.Time) (journal.ExpenseInput, error) {
	at, err := ParseTimestamp("expenseDate", r.ExpenseDate, now)
	if err != nil {
		return journal.ExpenseInput{}, err
	}
	return journal.ExpenseInput{
		ExpenseCategoryID: r.ExpenseCategoryID,
		Amount:            r.Amount,
		Description:       r.Description,
		ExpenseDate:       at,
	}, nil
}

// ImportSalesRequest is the JSON form of a historical sales import.
type ImportSalesRequest struct {
	Rows []journal.SaleRow `json:"rows" binding:"required"`
}

// ImportExpensesRequest is the JSON form of a historical expenses import.
type ImportExpensesRequest struct {
	Rows []journal.ExpenseRow `json:"rows" binding:"required"`
}
