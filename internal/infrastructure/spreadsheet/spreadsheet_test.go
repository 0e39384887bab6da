package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/domain/reports"
)

func sampleWorkbook() *reports.Workbook {
	name := "Cafe"
	pid := int64(1)
	cogs := types.MustMoney("6.00")
	sales := []analytics.SaleRecord{{
		SaleID: 1, ProductID: &pid, ProductName: &name, Quantity: 3,
		TotalAmount: types.MustMoney("15.00"), CogsTotal: &cogs,
		SaleDate: time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
	}}
	snap := &analytics.Snapshot{Bundle: analytics.Aggregate(sales, nil, types.AllTime())}
	return reports.Compose(snap, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
}

func writeAndOpen(t *testing.T, wb *reports.Workbook) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWriter_SheetsInOrder(t *testing.T) {
	f := writeAndOpen(t, sampleWorkbook())

	assert.Equal(t, reports.SheetOrder, f.GetSheetList())
}

func TestWriter_HeadersAndRawValues(t *testing.T) {
	f := writeAndOpen(t, sampleWorkbook())

	rows, err := f.GetRows(reports.SheetSales, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Date", "Product", "Quantity", "Amount"}, rows[0])
	assert.Equal(t, "Cafe", rows[1][1])
	assert.Equal(t, "3", rows[1][2])
	assert.Equal(t, "15", rows[1][3])

	empty, err := f.GetRows(reports.SheetExpenses)
	require.NoError(t, err)
	require.Len(t, empty, 1)
	assert.Equal(t, []string{"Date", "Category", "Amount"}, empty[0])
}

func TestWriter_NumberFormats(t *testing.T) {
	f := writeAndOpen(t, sampleWorkbook())

	moneyStyle, err := f.GetCellStyle(reports.SheetSales, "D2")
	require.NoError(t, err)
	style, err := f.GetStyle(moneyStyle)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, moneyFormat, *style.CustomNumFmt)

	formatted, err := f.GetCellValue(reports.SheetSales, "D2")
	require.NoError(t, err)
	assert.Equal(t, "$15.00", formatted)

	// Gross margin on the dashboard is stored as a fraction.
	rows, err := f.GetRows(reports.SheetDashboard, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	var margin string
	for _, r := range rows {
		if len(r) > 1 && r[0] == "Gross Margin" {
			margin = r[1]
		}
	}
	assert.Equal(t, "0.6", margin)
}

func TestWriter_RejectsEmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewWriter().Write(&buf, &reports.Workbook{}))
}

func TestReader_ReadsFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Product", "Quantity", "Date"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Cafe", 2, "2024-01-05"}))
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "ignored"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	rows, err := NewReader().ReadRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Product", "Quantity", "Date"},
		{"Cafe", "2", "2024-01-05"},
	}, rows)
}

func TestReader_RejectsCorruptFile(t *testing.T) {
	_, err := NewReader().ReadRows(strings.NewReader("not a zip archive"))
	assert.Error(t, err)
}
