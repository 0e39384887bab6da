// Package reports composes the downloadable multi-sheet financial workbook.
package reports

import (
	"time"

	"bizbooks/internal/core/types"
)

// Sheet names, in workbook order.
const (
	SheetDashboard     = "Dashboard"
	SheetABC           = "ABC (Pareto)"
	SheetMonthly       = "Monthly Trend"
	SheetTransactions  = "Transactions Detail"
	SheetSales         = "Sales History"
	SheetExpenses      = "Expense History"
	SheetProductStock  = "Product Stock"
	SheetMaterialStock = "Material Stock"
)

// SheetOrder is the fixed order of sheets in every report.
var SheetOrder = []string{
	SheetDashboard,
	SheetABC,
	SheetMonthly,
	SheetTransactions,
	SheetSales,
	SheetExpenses,
	SheetProductStock,
	SheetMaterialStock,
}

// CellKind selects how a writer formats a cell.
type CellKind int

const (
	KindText CellKind = iota
	KindInt
	KindNumber
	KindMoney
	KindCost
	KindPercent
	KindDate
)

// Cell is one typed value. Percent cells hold the percentage (65 means 65%).
type Cell struct {
	Kind  CellKind
	Value any
}

// Cell constructors.
func Text(s string) Cell { return Cell{Kind: KindText, Value: s} }
func Int(v int64) Cell { return Cell{Kind: KindInt, Value: v} }
func Number(v types.Quantity) Cell { return Cell{Kind: KindNumber, Value: v.Decimal()} }
func MoneyCell(v types.Money) Cell { return Cell{Kind: KindMoney, Value: v} }
func CostCell(v types.Money) Cell { return Cell{Kind: KindCost, Value: v} }
func PercentCell(v types.Money) Cell { return Cell{Kind: KindPercent, Value: v} }
func DateCell(t time.Time) Cell { return Cell{Kind: KindDate, Value: t} }

// Block is a titled table inside a sheet.
type Block struct {
	Title  string
	Header []string
	Rows   [][]Cell
}

// Sheet is a named sequence of blocks laid out top to bottom.
type Sheet struct {
	Name   string
	Blocks []Block
}

// Workbook is the format-independent report document.
type Workbook struct {
	Title       string
	GeneratedAt time.Time
	Sheets      []Sheet
}

// Sheet returns the sheet with the given name.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for i := range w.Sheets {
		if w.Sheets[i].Name == name {
			return &w.Sheets[i], true
		}
	}
	return nil, false
}

// Report is a rendered workbook ready for download.
type Report struct {
	Filename    string
	ContentType string
	Data        []byte
}
