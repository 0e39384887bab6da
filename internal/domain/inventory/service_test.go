package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/types"
	"bizbooks/internal/domain/catalog"
)

var (
	tenant = security.Principal{UserID: 1, Username: "u"}
	other  = security.Principal{UserID: 2, Username: "o"}
)

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	svc := NewService(store, store, store, store)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 10, 30, 15, 500, time.UTC) }
	return svc, store
}

func cafe(store *memStore, stock int64) int64 {
	return store.addProduct(catalog.Product{
		UserID: tenant.UserID,
		Name:   "Cafe",
		Cost:   types.MustMoney("2.00"),
		Price:  types.MustMoney("5.00"),
		Stock:  stock,
	})
}

func TestPostSale_BasicSale(t *testing.T) {
	svc, store := newTestService()
	id := cafe(store, 10)

	sale, err := svc.PostSale(context.Background(), tenant, id, 3)
	require.NoError(t, err)

	assert.Equal(t, int64(7), store.products[id].Stock)
	assert.True(t, sale.TotalAmount.Equal(types.MustMoney("15.00")))
	require.NotNil(t, sale.CogsTotal)
	assert.True(t, sale.CogsTotal.Equal(types.MustMoney("6.00")))
	assert.Equal(t, time.Date(2024, 5, 2, 10, 30, 15, 0, time.UTC), sale.SaleDate)
	assert.Contains(t, store.locks, id)
	assert.Len(t, store.sales, 1)
}

func TestPostSale_InsufficientStock(t *testing.T) {
	svc, store := newTestService()
	id := cafe(store, 1)

	_, err := svc.PostSale(context.Background(), tenant, id, 2)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(1), appErr.Details["current"])
	assert.Equal(t, int64(1), store.products[id].Stock)
	assert.Empty(t, store.sales)
}

func TestPostSale_Rejections(t *testing.T) {
	svc, store := newTestService()
	id := cafe(store, 5)
	ctx := context.Background()

	_, err := svc.PostSale(ctx, tenant, id, 0)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	_, err = svc.PostSale(ctx, other, id, 1)
	assert.True(t, apperror.HasCode(err, apperror.CodeAccessDenied))

	_, err = svc.PostSale(ctx, tenant, 999, 1)
	assert.True(t, apperror.IsNotFound(err))

	p := store.products[id]
	p.IsActive = false
	store.products[id] = p
	_, err = svc.PostSale(ctx, tenant, id, 1)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPostSale_RollsBackOnInsertFailure(t *testing.T) {
	svc, store := newTestService()
	id := cafe(store, 5)
	store.failNext = errors.New("disk full")

	_, err := svc.PostSale(context.Background(), tenant, id, 2)
	require.Error(t, err)
	assert.Equal(t, int64(5), store.products[id].Stock)
}

func TestStockConservation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	id := cafe(store, 20)

	sold := int64(0)
	for _, q := range []int64{3, 4, 50, 1, 12, 1} {
		if _, err := svc.PostSale(ctx, tenant, id, q); err == nil {
			sold += q
		}
	}
	assert.Equal(t, int64(20)-sold, store.products[id].Stock)
	assert.GreaterOrEqual(t, store.products[id].Stock, int64(0))
}

func TestReverseSale_RestoresStock(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	id := cafe(store, 10)

	sale, err := svc.PostSale(ctx, tenant, id, 4)
	require.NoError(t, err)

	assert.True(t, apperror.HasCode(svc.ReverseSale(ctx, other, sale.ID), apperror.CodeAccessDenied))

	require.NoError(t, svc.ReverseSale(ctx, tenant, sale.ID))
	assert.Equal(t, int64(10), store.products[id].Stock)
	assert.Empty(t, store.sales)

	assert.True(t, apperror.IsNotFound(svc.ReverseSale(ctx, tenant, sale.ID)))
}

func TestPostPurchase_WeightedCost(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, err := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Azucar", UnitMeasure: "kg"})
	require.NoError(t, err)

	_, m, err = svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: types.NewQuantityFromUnits(10), TotalCost: types.MustMoney("20.00")})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromUnits(10), m.CurrentStock)
	assert.Equal(t, "2.0000", m.AverageCost.StringFixed(4))

	_, m, err = svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: types.NewQuantityFromUnits(10), TotalCost: types.MustMoney("40.00")})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromUnits(20), m.CurrentStock)
	assert.Equal(t, "3.0000", m.AverageCost.StringFixed(4))
}

func TestPostPurchase_Rejections(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Harina", UnitMeasure: "kg"})

	_, _, err := svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: 0, TotalCost: types.MustMoney("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuantity))

	_, _, err = svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: 1000, TotalCost: types.MustMoney("-1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	stored := store.materials[m.ID]
	stored.CurrentStock = types.MaxQuantity
	store.materials[m.ID] = stored
	_, _, err = svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: 1000, TotalCost: types.MustMoney("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeOverflow))
	assert.Empty(t, store.purchases)

	_, _, err = svc.PostPurchase(ctx, other, PurchaseInput{MaterialID: m.ID, Quantity: 1000, TotalCost: types.MustMoney("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeAccessDenied))
}

func TestWeightedAverage_PreservesValue(t *testing.T) {
	tests := []struct {
		stock, q   string
		avg, total string
	}{
		{"0", "3", "0", "10"},
		{"7.5", "2.25", "1.3333", "4.10"},
		{"100", "0.001", "12.5", "0.02"},
	}
	for _, tt := range tests {
		s, _ := types.ParseQuantity(tt.stock)
		q, _ := types.ParseQuantity(tt.q)
		avg := types.MustMoney(tt.avg)
		total := types.MustMoney(tt.total)

		newStock, newAvg, ok := WeightedAverage(s, avg, q, total)
		require.True(t, ok)

		want := s.Decimal().Mul(avg).Add(total)
		got := newStock.Decimal().Mul(newAvg)
		tolerance := newStock.Decimal().Mul(types.MustMoney("0.00005"))
		assert.True(t, want.Sub(got).Abs().LessThanOrEqual(tolerance), "want %s got %s", want, got)
	}

	_, avg, ok := WeightedAverage(0, types.Zero(), types.NewQuantityFromUnits(4), types.MustMoney("10"))
	require.True(t, ok)
	assert.Equal(t, "2.5000", avg.StringFixed(4))
}

func TestOverrideMaterialStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Leche", UnitMeasure: "l"})

	_, err := svc.OverrideMaterialStock(ctx, tenant, m.ID, StockOverride{CurrentStock: -1})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	updated, err := svc.OverrideMaterialStock(ctx, tenant, m.ID, StockOverride{
		CurrentStock: types.NewQuantityFromUnits(4),
		AverageCost:  types.MustMoney("1.23456"),
	})
	require.NoError(t, err)
	assert.Equal(t, "1.2346", updated.AverageCost.StringFixed(4))
}

func TestMaterialNamesUnique(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Azucar", UnitMeasure: "kg"})
	require.NoError(t, err)

	_, err = svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "azucar", UnitMeasure: "kg"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateName))

	_, err = svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Sal"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestMaterial_ColumnWidths(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: strings.Repeat("h", catalog.MaxMaterialNameLen+1), UnitMeasure: "kg"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Harina", UnitMeasure: strings.Repeat("k", catalog.MaxUnitMeasureLen+1)})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	m, err := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "Harina", UnitMeasure: "kg"})
	require.NoError(t, err)
	supplier := strings.Repeat("s", catalog.MaxSupplierLen+1)
	_, _, err = svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: 1000, TotalCost: types.MustMoney("1"), Supplier: &supplier})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	assert.Empty(t, store.purchases)
}

func TestBulkDeleteMaterials(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "A", UnitMeasure: "kg"})
	b, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "B", UnitMeasure: "kg"})
	c, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "C", UnitMeasure: "kg"})
	_, _, err := svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: b.ID, Quantity: 1000, TotalCost: types.MustMoney("3")})
	require.NoError(t, err)

	ids := []int64{a.ID, b.ID, c.ID, a.ID, 999}
	res, err := svc.BulkDeleteMaterials(ctx, tenant, ids)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Deleted)
	assert.ElementsMatch(t, []int64{a.ID, c.ID}, res.DeletedIDs)
	assert.Equal(t, []int64{b.ID}, res.SkippedIDs)
	for _, id := range res.DeletedIDs {
		assert.Contains(t, ids, id)
	}
	for _, id := range res.SkippedIDs {
		referenced, _ := store.MaterialsWithPurchases(ctx, tenant.UserID, []int64{id})
		assert.NotEmpty(t, referenced)
	}
	assert.Contains(t, store.materials, b.ID)
}

func TestBulkDeleteMaterials_ForeignIDAborts(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	a, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "A", UnitMeasure: "kg"})
	x, _ := svc.CreateMaterial(ctx, other, MaterialInput{Name: "X", UnitMeasure: "kg"})

	_, err := svc.BulkDeleteMaterials(ctx, tenant, []int64{a.ID, x.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeAccessDenied))
	assert.Contains(t, store.materials, a.ID)
}

func TestDeleteMaterial_DependencyExists(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	m, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "A", UnitMeasure: "kg"})
	_, _, err := svc.PostPurchase(ctx, tenant, PurchaseInput{MaterialID: m.ID, Quantity: 1000, TotalCost: types.MustMoney("3")})
	require.NoError(t, err)

	err = svc.DeleteMaterial(ctx, tenant, m.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeDependencyExists))

	n, _ := svc.CreateMaterial(ctx, tenant, MaterialInput{Name: "B", UnitMeasure: "kg"})
	require.NoError(t, svc.DeleteMaterial(ctx, tenant, n.ID))
	assert.NotContains(t, store.materials, n.ID)
}

func TestLowStockAndValuation(t *testing.T) {
	materials := []Material{
		{Name: "a", CurrentStock: 500, AlertThreshold: 1000, AverageCost: types.MustMoney("2"), IsActive: true},
		{Name: "b", CurrentStock: 5000, AlertThreshold: 1000, AverageCost: types.MustMoney("1.5"), IsActive: true},
		{Name: "c", CurrentStock: 0, AverageCost: types.MustMoney("9"), IsActive: true},
	}
	low := LowStock(materials)
	require.Len(t, low, 1)
	assert.Equal(t, "a", low[0].Name)
	assert.True(t, MaterialsValue(materials).Equal(types.MustMoney("8.5")))
}
