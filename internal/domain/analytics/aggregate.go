package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bizbooks/internal/core/types"
)

var (
	abcLimitA = decimal.NewFromInt(80)
	abcLimitB = decimal.NewFromInt(95)
)

// Aggregate computes the bundle for period over the given rows. Rows outside
// the period are ignored, so the result only depends on its arguments.
func Aggregate(sales []SaleRecord, expenses []ExpenseRecord, period types.DateRange) *Bundle {
	b := &Bundle{
		Period:           period,
		Sales:            make([]SaleRecord, 0, len(sales)),
		Expenses:         make([]ExpenseRecord, 0, len(expenses)),
		Merged:           make([]SaleRecord, 0, len(sales)),
		Monthly:          []MonthlyRow{},
		Products:         []ProductProfit{},
		ExpenseBreakdown: []CategoryAmount{},
		ABC:              []ABCRow{},
	}

	for _, s := range sales {
		if !period.Contains(s.SaleDate) {
			continue
		}
		b.Sales = append(b.Sales, s)
		if s.HasProduct() {
			b.Merged = append(b.Merged, s)
		}
	}
	for _, e := range expenses {
		if period.Contains(e.ExpenseDate) {
			b.Expenses = append(b.Expenses, e)
		}
	}
	sort.SliceStable(b.Sales, func(i, j int) bool {
		return lessByDate(b.Sales[i].SaleDate, b.Sales[i].SaleID, b.Sales[j].SaleDate, b.Sales[j].SaleID)
	})
	sort.SliceStable(b.Expenses, func(i, j int) bool {
		return lessByDate(b.Expenses[i].ExpenseDate, b.Expenses[i].ExpenseID, b.Expenses[j].ExpenseDate, b.Expenses[j].ExpenseID)
	})

	b.Totals = computeTotals(b.Sales, b.Expenses)
	b.Monthly = monthlyRollup(b.Sales, b.Expenses)
	b.Products = productProfitability(b.Merged)
	b.ExpenseBreakdown = expenseBreakdown(b.Expenses)
	b.ABC = classifyABC(b.Merged)
	return b
}

func lessByDate(a time.Time, aID int64, b time.Time, bID int64) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return aID < bID
}

func computeTotals(sales []SaleRecord, expenses []ExpenseRecord) Totals {
	t := Totals{
		TotalRevenue:   decimal.Zero,
		TotalCOGS:      decimal.Zero,
		TotalExpenses:  decimal.Zero,
		AvgTicket:      decimal.Zero,
		GrossMarginPct: decimal.Zero,
		NetMarginPct:   decimal.Zero,
	}
	for i := range sales {
		t.TotalRevenue = t.TotalRevenue.Add(sales[i].TotalAmount)
		t.TotalCOGS = t.TotalCOGS.Add(sales[i].EffectiveCOGS())
		t.UnitsSold += sales[i].Quantity
	}
	for i := range expenses {
		t.TotalExpenses = t.TotalExpenses.Add(expenses[i].Amount)
	}
	t.NumSales = int64(len(sales))
	t.GrossProfit = t.TotalRevenue.Sub(t.TotalCOGS)
	t.NetProfit = t.GrossProfit.Sub(t.TotalExpenses)
	if t.NumSales > 0 {
		t.AvgTicket = types.RoundMoney(t.TotalRevenue.Div(decimal.NewFromInt(t.NumSales)))
	}
	t.GrossMarginPct = types.RoundMoney(types.Percent(t.GrossProfit, t.TotalRevenue))
	t.NetMarginPct = types.RoundMoney(types.Percent(t.NetProfit, t.TotalRevenue))
	return t
}

func monthlyRollup(sales []SaleRecord, expenses []ExpenseRecord) []MonthlyRow {
	rows := make(map[time.Time]*MonthlyRow)
	get := func(t time.Time) *MonthlyRow {
		key := types.MonthEnd(t.UTC())
		r, ok := rows[key]
		if !ok {
			r = &MonthlyRow{Month: key, Revenue: decimal.Zero, COGS: decimal.Zero, Expenses: decimal.Zero}
			rows[key] = r
		}
		return r
	}
	for i := range sales {
		r := get(sales[i].SaleDate)
		r.Revenue = r.Revenue.Add(sales[i].TotalAmount)
		r.COGS = r.COGS.Add(sales[i].EffectiveCOGS())
	}
	for i := range expenses {
		r := get(expenses[i].ExpenseDate)
		r.Expenses = r.Expenses.Add(expenses[i].Amount)
	}

	out := make([]MonthlyRow, 0, len(rows))
	for _, r := range rows {
		r.Gross = r.Revenue.Sub(r.COGS)
		r.NetProfit = r.Gross.Sub(r.Expenses)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

func productProfitability(merged []SaleRecord) []ProductProfit {
	byName := make(map[string]*ProductProfit)
	order := make([]string, 0)
	for i := range merged {
		name := merged[i].Product()
		p, ok := byName[name]
		if !ok {
			p = &ProductProfit{Product: name, Revenue: decimal.Zero, Cost: decimal.Zero}
			byName[name] = p
			order = append(order, name)
		}
		p.UnitsSold += merged[i].Quantity
		p.Revenue = p.Revenue.Add(merged[i].TotalAmount)
		p.Cost = p.Cost.Add(merged[i].EffectiveCOGS())
	}

	out := make([]ProductProfit, 0, len(order))
	for _, name := range order {
		p := byName[name]
		p.Gross = p.Revenue.Sub(p.Cost)
		p.ProfitabilityPct = types.RoundMoney(types.Percent(p.Gross, p.Revenue))
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Gross.Cmp(out[j].Gross); c != 0 {
			return c > 0
		}
		return strings.ToLower(out[i].Product) < strings.ToLower(out[j].Product)
	})
	return out
}

func expenseBreakdown(expenses []ExpenseRecord) []CategoryAmount {
	byName := make(map[string]types.Money)
	for i := range expenses {
		name := expenses[i].Category()
		cur, ok := byName[name]
		if !ok {
			cur = decimal.Zero
		}
		byName[name] = cur.Add(expenses[i].Amount)
	}
	out := make([]CategoryAmount, 0, len(byName))
	for name, amount := range byName {
		out = append(out, CategoryAmount{Category: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// classifyABC orders products by revenue descending, name ascending on ties,
// and assigns A up to 80% cumulative revenue, B up to 95%, C for the rest.
func classifyABC(merged []SaleRecord) []ABCRow {
	byName := make(map[string]types.Money)
	total := decimal.Zero
	for i := range merged {
		name := merged[i].Product()
		cur, ok := byName[name]
		if !ok {
			cur = decimal.Zero
		}
		byName[name] = cur.Add(merged[i].TotalAmount)
		total = total.Add(merged[i].TotalAmount)
	}

	out := make([]ABCRow, 0, len(byName))
	for name, revenue := range byName {
		out = append(out, ABCRow{Product: name, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Product < out[j].Product
	})

	if !total.IsPositive() {
		for i := range out {
			out[i].CumulativePct = decimal.Zero
			out[i].Class = ClassNone
		}
		return out
	}

	running := decimal.Zero
	for i := range out {
		running = running.Add(out[i].Revenue)
		pct := types.Percent(running, total)
		out[i].CumulativePct = types.RoundMoney(pct)
		switch {
		case pct.LessThanOrEqual(abcLimitA):
			out[i].Class = ClassA
		case pct.LessThanOrEqual(abcLimitB):
			out[i].Class = ClassB
		default:
			out[i].Class = ClassC
		}
	}
	return out
}

// TopProducts returns at most n lines of the profitability table.
func (b *Bundle) TopProducts(n int) []ProductProfit {
	if len(b.Products) <= n {
		return b.Products
	}
	return b.Products[:n]
}

// TopExpenseCategories returns at most n lines of the expense breakdown.
func (b *Bundle) TopExpenseCategories(n int) []CategoryAmount {
	if len(b.ExpenseBreakdown) <= n {
		return b.ExpenseBreakdown
	}
	return b.ExpenseBreakdown[:n]
}
