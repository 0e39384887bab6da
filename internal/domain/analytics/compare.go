package analytics

import (
	"github.com/shopspring/decimal"

	"bizbooks/internal/core/types"
)

// Delta statuses.
const (
	StatusChange = "change"
	StatusNew    = "new"
	StatusFlat   = "flat"
)

// Metric names, in report order.
const (
	MetricTotalRevenue   = "total_revenue"
	MetricTotalCOGS      = "total_cogs"
	MetricGrossProfit    = "gross_profit"
	MetricTotalExpenses  = "total_expenses"
	MetricNetProfit      = "net_profit"
	MetricNumSales       = "num_sales"
	MetricUnitsSold      = "units_sold"
	MetricAvgTicket      = "avg_ticket"
	MetricGrossMarginPct = "gross_margin_pct"
	MetricNetMarginPct   = "net_margin_pct"
)

var hundred = decimal.NewFromInt(100)

// MetricDelta compares one scalar between two periods. PctChange is nil when
// the metric is new in period B.
type MetricDelta struct {
	Metric    string       `json:"metric"`
	ValueA    types.Money  `json:"valueA"`
	ValueB    types.Money  `json:"valueB"`
	Delta     types.Money  `json:"delta"`
	PctChange *types.Money `json:"pctChange"`
	Status    string       `json:"status"`
}

// Comparison is the result of comparing two independently computed bundles.
type Comparison struct {
	PeriodA string        `json:"periodA"`
	PeriodB string        `json:"periodB"`
	TotalsA Totals        `json:"totalsA"`
	TotalsB Totals        `json:"totalsB"`
	Metrics []MetricDelta `json:"metrics"`
}

// Scalar is one named metric of Totals.
type Scalar struct {
	Name  string
	Value types.Money
}

// Scalars lists the comparable metrics of t in report order.
func (t Totals) Scalars() []Scalar {
	return []Scalar{
		{MetricTotalRevenue, t.TotalRevenue},
		{MetricTotalCOGS, t.TotalCOGS},
		{MetricGrossProfit, t.GrossProfit},
		{MetricTotalExpenses, t.TotalExpenses},
		{MetricNetProfit, t.NetProfit},
		{MetricNumSales, decimal.NewFromInt(t.NumSales)},
		{MetricUnitsSold, decimal.NewFromInt(t.UnitsSold)},
		{MetricAvgTicket, t.AvgTicket},
		{MetricGrossMarginPct, t.GrossMarginPct},
		{MetricNetMarginPct, t.NetMarginPct},
	}
}

// Compare produces a delta line per scalar of a against b.
func Compare(a, b Totals) []MetricDelta {
	sa, sb := a.Scalars(), b.Scalars()
	out := make([]MetricDelta, len(sa))
	for i := range sa {
		out[i] = NewMetricDelta(sa[i].Name, sa[i].Value, sb[i].Value)
	}
	return out
}

// NewMetricDelta computes pct_change = (b-a)/|a|*100 with the new, flat and
// -100% special cases.
func NewMetricDelta(metric string, a, b types.Money) MetricDelta {
	d := MetricDelta{Metric: metric, ValueA: a, ValueB: b, Delta: b.Sub(a), Status: StatusChange}
	switch {
	case a.IsZero() && b.IsZero():
		zero := decimal.Zero
		d.PctChange = &zero
		d.Status = StatusFlat
	case a.IsZero():
		d.Status = StatusNew
	case b.IsZero():
		pct := hundred.Neg()
		d.PctChange = &pct
	default:
		pct := types.RoundMoney(d.Delta.Div(a.Abs()).Mul(hundred))
		d.PctChange = &pct
		if d.Delta.IsZero() {
			d.Status = StatusFlat
		}
	}
	return d
}
