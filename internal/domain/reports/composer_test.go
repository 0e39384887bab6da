package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/inventory"
)

func ptr[T any](v T) *T { return &v }

func at(d int, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }

func fixtureSnapshot() *analytics.Snapshot {
	sales := []analytics.SaleRecord{
		{SaleID: 2, ProductID: ptr(int64(1)), ProductName: ptr("Cafe"), Quantity: 3, TotalAmount: types.MustMoney("15.00"), CogsTotal: ptr(types.MustMoney("6.00")), SaleDate: at(5, 9)},
		{SaleID: 1, Quantity: 1, TotalAmount: types.MustMoney("4.00"), SaleDate: at(3, 9)},
	}
	expenses := []analytics.ExpenseRecord{
		{ExpenseID: 1, CategoryName: ptr("Rent"), Amount: types.MustMoney("7.00"), Description: ptr("January"), ExpenseDate: at(5, 9)},
	}
	return &analytics.Snapshot{
		Bundle: analytics.Aggregate(sales, expenses, types.AllTime()),
		Products: []catalog.Product{
			{ID: 1, Name: "Cafe", Cost: types.MustMoney("2.00"), Price: types.MustMoney("5.00"), Stock: 7, IsActive: true},
			{ID: 2, Name: "Gone", Cost: types.MustMoney("1.00"), Stock: 3, IsActive: false},
		},
		Materials: []inventory.Material{
			{ID: 1, Name: "Azucar", UnitMeasure: "kg", CurrentStock: types.NewQuantityFromUnits(20), AverageCost: types.MustMoney("3.0000"), IsActive: true},
		},
	}
}

func TestCompose_SheetOrder(t *testing.T) {
	wb := Compose(fixtureSnapshot(), at(10, 0))

	names := make([]string, 0, len(wb.Sheets))
	for _, s := range wb.Sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, SheetOrder, names)
}

func TestCompose_EmptySnapshotKeepsHeaders(t *testing.T) {
	snap := &analytics.Snapshot{Bundle: analytics.Aggregate(nil, nil, types.AllTime())}

	wb := Compose(snap, at(1, 0))

	require.Len(t, wb.Sheets, len(SheetOrder))
	for _, s := range wb.Sheets {
		require.NotEmpty(t, s.Blocks, s.Name)
		for _, b := range s.Blocks {
			assert.NotEmpty(t, b.Header, s.Name)
		}
	}
	sales, ok := wb.Sheet(SheetSales)
	require.True(t, ok)
	assert.Empty(t, sales.Blocks[0].Rows)
}

func TestCompose_TransactionsDetailSortedByDate(t *testing.T) {
	wb := Compose(fixtureSnapshot(), at(10, 0))
	sheet, ok := wb.Sheet(SheetTransactions)
	require.True(t, ok)

	rows := sheet.Blocks[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "(no product) x1", rows[0][2].Value)
	assert.Equal(t, "Cafe x3", rows[1][2].Value)
	assert.Equal(t, txnExpense, rows[2][1].Value)
	assert.Equal(t, "Rent: January", rows[2][2].Value)
	assert.True(t, rows[2][5].Value.(types.Money).Equal(types.MustMoney("7")))
}

func TestCompose_Dashboard(t *testing.T) {
	wb := Compose(fixtureSnapshot(), at(10, 0))
	sheet, ok := wb.Sheet(SheetDashboard)
	require.True(t, ok)
	require.Len(t, sheet.Blocks, 4)

	summary := sheet.Blocks[0]
	assert.Equal(t, "All history", summary.Rows[0][1].Value)
	revenue := summary.Rows[2][1]
	assert.Equal(t, KindMoney, revenue.Kind)
	assert.True(t, revenue.Value.(types.Money).Equal(types.MustMoney("19")))

	inv := sheet.Blocks[1]
	assert.True(t, inv.Rows[0][1].Value.(types.Money).Equal(types.MustMoney("14")))
	assert.True(t, inv.Rows[1][1].Value.(types.Money).Equal(types.MustMoney("60")))

	require.Len(t, sheet.Blocks[2].Rows, 1)
	assert.Equal(t, "Cafe", sheet.Blocks[2].Rows[0][0].Value)
}

func TestCompose_StockSheetsSkipInactive(t *testing.T) {
	wb := Compose(fixtureSnapshot(), at(10, 0))

	products, _ := wb.Sheet(SheetProductStock)
	require.Len(t, products.Blocks[0].Rows, 1)
	assert.Equal(t, catalog.UncategorizedLabel, products.Blocks[0].Rows[0][1].Value)

	materials, _ := wb.Sheet(SheetMaterialStock)
	require.Len(t, materials.Blocks[0].Rows, 1)
	assert.Equal(t, KindCost, materials.Blocks[0].Rows[0][3].Kind)
}
