package analytics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"bizbooks/internal/core/security"
	"bizbooks/internal/core/tx"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
	"bizbooks/internal/domain/inventory"
	"bizbooks/pkg/logger"
)

var tracer = otel.Tracer("bizbooks/analytics")

// TopN is the size of the dashboard top lists.
const TopN = 5

// Source loads a tenant's rows for aggregation. Sales and expenses are
// filtered by the half-open bounds of r.
type Source interface {
	LoadSales(ctx context.Context, userID int64, r types.DateRange) ([]SaleRecord, error)
	LoadExpenses(ctx context.Context, userID int64, r types.DateRange) ([]ExpenseRecord, error)
	LoadProducts(ctx context.Context, userID int64) ([]catalog.Product, error)
	LoadMaterials(ctx context.Context, userID int64) ([]inventory.Material, error)
}

// Dashboard is the summary shown on the landing page and the report's first sheet.
type Dashboard struct {
	PeriodLabel            string               `json:"periodLabel"`
	Totals                 Totals               `json:"totals"`
	Monthly                []MonthlyRow         `json:"monthly"`
	TopProducts            []ProductProfit      `json:"topProducts"`
	TopExpenseCategories   []CategoryAmount     `json:"topExpenseCategories"`
	ABC                    []ABCRow             `json:"abc"`
	ProductInventoryValue  types.Money          `json:"productInventoryValue"`
	MaterialInventoryValue types.Money          `json:"materialInventoryValue"`
	LowStockProducts       []catalog.Product    `json:"lowStockProducts"`
	LowStockMaterials      []inventory.Material `json:"lowStockMaterials"`
}

// Snapshot is everything derived from one consistent read of a tenant.
type Snapshot struct {
	Bundle    *Bundle
	Products  []catalog.Product
	Materials []inventory.Material
}

// Dashboard assembles the dashboard view of the snapshot.
func (s *Snapshot) Dashboard() *Dashboard {
	return &Dashboard{
		PeriodLabel:            s.Bundle.Period.Label(),
		Totals:                 s.Bundle.Totals,
		Monthly:                s.Bundle.Monthly,
		TopProducts:            s.Bundle.TopProducts(TopN),
		TopExpenseCategories:   s.Bundle.TopExpenseCategories(TopN),
		ABC:                    s.Bundle.ABC,
		ProductInventoryValue:  catalog.ProductsValue(s.Products),
		MaterialInventoryValue: inventory.MaterialsValue(s.Materials),
		LowStockProducts:       catalog.LowStock(s.Products),
		LowStockMaterials:      inventory.LowStock(s.Materials),
	}
}

// Service computes read-only financial views.
type Service struct {
	source Source
	txm    tx.ReadOnlyManager
}

// NewService creates a new analytics service.
func NewService(source Source, txm tx.ReadOnlyManager) *Service {
	return &Service{source: source, txm: txm}
}

// Bundle aggregates the caller's sales and expenses over r.
func (s *Service) Bundle(ctx context.Context, p security.Principal, r types.DateRange) (*Bundle, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	var b *Bundle
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.bundle(ctx, p.UserID, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Snapshot loads the bundle plus the current catalog and material state in
// one read-only transaction.
func (s *Service) Snapshot(ctx context.Context, p security.Principal, r types.DateRange) (*Snapshot, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	var snap *Snapshot
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		snap, err = s.LoadSnapshot(ctx, p.UserID, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadSnapshot reads using the transaction already in ctx, if any.
func (s *Service) LoadSnapshot(ctx context.Context, userID int64, r types.DateRange) (*Snapshot, error) {
	b, err := s.bundle(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	products, err := s.source.LoadProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	materials, err := s.source.LoadMaterials(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	return &Snapshot{Bundle: b, Products: products, Materials: materials}, nil
}

// Dashboard returns the summary view for r.
func (s *Service) Dashboard(ctx context.Context, p security.Principal, r types.DateRange) (*Dashboard, error) {
	snap, err := s.Snapshot(ctx, p, r)
	if err != nil {
		return nil, err
	}
	return snap.Dashboard(), nil
}

// Compare computes both periods independently and returns per-metric deltas.
func (s *Service) Compare(ctx context.Context, p security.Principal, a, b types.DateRange) (*Comparison, error) {
	if err := security.RequireActive(p); err != nil {
		return nil, err
	}
	var ba, bb *Bundle
	err := s.txm.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if ba, err = s.bundle(ctx, p.UserID, a); err != nil {
			return err
		}
		bb, err = s.bundle(ctx, p.UserID, b)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Comparison{
		PeriodA: a.Label(),
		PeriodB: b.Label(),
		TotalsA: ba.Totals,
		TotalsB: bb.Totals,
		Metrics: Compare(ba.Totals, bb.Totals),
	}, nil
}

func (s *Service) bundle(ctx context.Context, userID int64, r types.DateRange) (*Bundle, error) {
	ctx, span := tracer.Start(ctx, "analytics.Aggregate")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.String("period", r.Label()),
	)

	sales, err := s.source.LoadSales(ctx, userID, r)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load sales: %w", err)
	}
	expenses, err := s.source.LoadExpenses(ctx, userID, r)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load expenses: %w", err)
	}

	b := Aggregate(sales, expenses, r)
	span.SetAttributes(
		attribute.Int("sales", len(b.Sales)),
		attribute.Int("expenses", len(b.Expenses)),
	)
	logger.Debug(ctx, "aggregated period", "period", r.Label(), "sales", len(b.Sales), "expenses", len(b.Expenses))
	return b, nil
}
