package journal_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooks/internal/core/types"
)

func TestInsertColumns_MatchCopyRows(t *testing.T) {
	assert.Equal(t,
		[]string{"user_id", "product_id", "quantity", "total_amount", "cogs_total", "sale_date"},
		saleInsertColumns)
	assert.Equal(t,
		[]string{"user_id", "expense_category_id", "amount", "description", "expense_date"},
		expenseInsertColumns)
}

func TestSalesQuery_InclusiveEndDate(t *testing.T) {
	repo := NewRepo(nil)
	dr, err := types.ParseDateRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)

	sql, args, err := repo.salesQuery(5, dr).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN products p ON p.id = s.product_id")
	assert.Contains(t, sql, "s.sale_date >= $2 AND s.sale_date < $3")
	assert.Contains(t, sql, "ORDER BY s.sale_date, s.id")
	require.Len(t, args, 3)
	assert.Equal(t, int64(5), args[0])
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), args[2])
}

func TestExpensesQuery_OpenRange(t *testing.T) {
	repo := NewRepo(nil)

	sql, args, err := repo.expensesQuery(5, types.AllTime()).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "ec.name AS category_name")
	assert.Contains(t, sql, "LEFT JOIN expense_categories ec ON ec.id = e.expense_category_id")
	assert.NotContains(t, sql, "expense_date >=")
	assert.Equal(t, []any{int64(5)}, args)
}
