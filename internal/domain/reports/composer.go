package reports

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/analytics"
	"bizbooks/internal/domain/catalog"
)

const (
	txnSale    = "Sale"
	txnExpense = "Expense"

	noProductLabel = "(no product)"
)

// Compose lays out the snapshot as the eight report sheets. Sheets without
// data keep their header row.
func Compose(snap *analytics.Snapshot, generatedAt time.Time) *Workbook {
	b := snap.Bundle
	return &Workbook{
		Title:       "Financial report: " + b.Period.Label(),
		GeneratedAt: generatedAt,
		Sheets: []Sheet{
			dashboardSheet(snap, generatedAt),
			abcSheet(b),
			monthlySheet(b),
			transactionsSheet(b),
			salesSheet(b),
			expensesSheet(b),
			productStockSheet(snap.Products),
			materialStockSheet(snap),
		},
	}
}

func dashboardSheet(snap *analytics.Snapshot, generatedAt time.Time) Sheet {
	d := snap.Dashboard()
	t := d.Totals

	summary := Block{
		Title:  "Financial Summary",
		Header: []string{"Metric", "Value"},
		Rows: [][]Cell{
			{Text("Period"), Text(d.PeriodLabel)},
			{Text("Generated"), DateCell(generatedAt)},
			{Text("Total Revenue"), MoneyCell(t.TotalRevenue)},
			{Text("Cost of Goods Sold"), MoneyCell(t.TotalCOGS)},
			{Text("Gross Profit"), MoneyCell(t.GrossProfit)},
			{Text("Operating Expenses"), MoneyCell(t.TotalExpenses)},
			{Text("Net Profit"), MoneyCell(t.NetProfit)},
			{Text("Number of Sales"), Int(t.NumSales)},
			{Text("Units Sold"), Int(t.UnitsSold)},
			{Text("Average Ticket"), MoneyCell(t.AvgTicket)},
			{Text("Gross Margin"), PercentCell(t.GrossMarginPct)},
			{Text("Net Margin"), PercentCell(t.NetMarginPct)},
		},
	}

	inventory := Block{
		Title:  "Inventory",
		Header: []string{"Metric", "Value"},
		Rows: [][]Cell{
			{Text("Product Inventory Value"), MoneyCell(d.ProductInventoryValue)},
			{Text("Material Inventory Value"), MoneyCell(d.MaterialInventoryValue)},
			{Text("Products Low on Stock"), Int(int64(len(d.LowStockProducts)))},
			{Text("Materials Low on Stock"), Int(int64(len(d.LowStockMaterials)))},
		},
	}

	top := Block{
		Title:  fmt.Sprintf("Top %d Products by Gross Profit", analytics.TopN),
		Header: []string{"Product", "Units Sold", "Revenue", "Gross Profit", "Profitability"},
	}
	for _, p := range d.TopProducts {
		top.Rows = append(top.Rows, []Cell{
			Text(p.Product), Int(p.UnitsSold), MoneyCell(p.Revenue), MoneyCell(p.Gross), PercentCell(p.ProfitabilityPct),
		})
	}

	expenses := Block{
		Title:  fmt.Sprintf("Top %d Expense Categories", analytics.TopN),
		Header: []string{"Category", "Amount"},
	}
	for _, e := range d.TopExpenseCategories {
		expenses.Rows = append(expenses.Rows, []Cell{Text(e.Category), MoneyCell(e.Amount)})
	}

	return Sheet{Name: SheetDashboard, Blocks: []Block{summary, inventory, top, expenses}}
}

func abcSheet(b *analytics.Bundle) Sheet {
	block := Block{Header: []string{"Product", "Revenue", "Cumulative %", "Class"}}
	for _, r := range b.ABC {
		block.Rows = append(block.Rows, []Cell{
			Text(r.Product), MoneyCell(r.Revenue), PercentCell(r.CumulativePct), Text(r.Class),
		})
	}
	return Sheet{Name: SheetABC, Blocks: []Block{block}}
}

func monthlySheet(b *analytics.Bundle) Sheet {
	block := Block{Header: []string{"Month", "Revenue", "COGS", "Gross Profit", "Expenses", "Net Profit"}}
	for _, m := range b.Monthly {
		block.Rows = append(block.Rows, []Cell{
			Text(m.Month.Format("2006-01")),
			MoneyCell(m.Revenue),
			MoneyCell(m.COGS),
			MoneyCell(m.Gross),
			MoneyCell(m.Expenses),
			MoneyCell(m.NetProfit),
		})
	}
	return Sheet{Name: SheetMonthly, Blocks: []Block{block}}
}

type transaction struct {
	at    time.Time
	order int
	id    int64
	row   []Cell
}

func transactionsSheet(b *analytics.Bundle) Sheet {
	txns := make([]transaction, 0, len(b.Sales)+len(b.Expenses))
	for _, s := range b.Sales {
		desc := fmt.Sprintf("%s x%d", saleProduct(s), s.Quantity)
		txns = append(txns, transaction{
			at: s.SaleDate,
			id: s.SaleID,
			row: []Cell{
				DateCell(s.SaleDate), Text(txnSale), Text(desc),
				MoneyCell(s.TotalAmount), MoneyCell(s.EffectiveCOGS()), MoneyCell(decimal.Zero),
			},
		})
	}
	for _, e := range b.Expenses {
		desc := e.Category()
		if e.Description != nil && strings.TrimSpace(*e.Description) != "" {
			desc += ": " + strings.TrimSpace(*e.Description)
		}
		txns = append(txns, transaction{
			at:    e.ExpenseDate,
			id:    e.ExpenseID,
			order: 1,
			row: []Cell{
				DateCell(e.ExpenseDate), Text(txnExpense), Text(desc),
				MoneyCell(decimal.Zero), MoneyCell(decimal.Zero), MoneyCell(e.Amount),
			},
		})
	}
	sort.SliceStable(txns, func(i, j int) bool {
		a, c := txns[i], txns[j]
		if !a.at.Equal(c.at) {
			return a.at.Before(c.at)
		}
		if a.order != c.order {
			return a.order < c.order
		}
		return a.id < c.id
	})

	block := Block{Header: []string{"Date", "Type", "Description", "Revenue", "COGS", "Operating Expense"}}
	for _, t := range txns {
		block.Rows = append(block.Rows, t.row)
	}
	return Sheet{Name: SheetTransactions, Blocks: []Block{block}}
}

func saleProduct(s analytics.SaleRecord) string {
	if name := s.Product(); name != "" {
		return name
	}
	return noProductLabel
}

func salesSheet(b *analytics.Bundle) Sheet {
	block := Block{Header: []string{"Date", "Product", "Quantity", "Amount"}}
	for _, s := range b.Sales {
		block.Rows = append(block.Rows, []Cell{
			DateCell(s.SaleDate), Text(saleProduct(s)), Int(s.Quantity), MoneyCell(s.TotalAmount),
		})
	}
	return Sheet{Name: SheetSales, Blocks: []Block{block}}
}

func expensesSheet(b *analytics.Bundle) Sheet {
	block := Block{Header: []string{"Date", "Category", "Amount"}}
	for _, e := range b.Expenses {
		block.Rows = append(block.Rows, []Cell{DateCell(e.ExpenseDate), Text(e.Category()), MoneyCell(e.Amount)})
	}
	return Sheet{Name: SheetExpenses, Blocks: []Block{block}}
}

func productStockSheet(products []catalog.Product) Sheet {
	block := Block{Header: []string{"Name", "Category", "Stock", "Cost", "Price", "Inventory Value"}}
	for i := range products {
		p := &products[i]
		if !p.IsActive {
			continue
		}
		block.Rows = append(block.Rows, []Cell{
			Text(p.Name),
			Text(p.CategoryLabel()),
			Int(p.Stock),
			MoneyCell(p.Cost),
			MoneyCell(p.Price),
			MoneyCell(types.RoundMoney(p.InventoryValue())),
		})
	}
	return Sheet{Name: SheetProductStock, Blocks: []Block{block}}
}

func materialStockSheet(snap *analytics.Snapshot) Sheet {
	block := Block{Header: []string{"Name", "Unit", "Stock", "Average Cost", "Inventory Value"}}
	for i := range snap.Materials {
		m := &snap.Materials[i]
		if !m.IsActive {
			continue
		}
		block.Rows = append(block.Rows, []Cell{
			Text(m.Name),
			Text(m.UnitMeasure),
			Number(m.CurrentStock),
			CostCell(m.AverageCost),
			MoneyCell(types.RoundMoney(m.InventoryValue())),
		})
	}
	return Sheet{Name: SheetMaterialStock, Blocks: []Block{block}}
}
