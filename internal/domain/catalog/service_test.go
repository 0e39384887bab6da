package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooks/internal/core/apperror"
	"bizbooks/internal/core/security"
	"bizbooks/internal/core/types"
)

var (
	tenant = security.Principal{UserID: 1, Username: "u"}
	other  = security.Principal{UserID: 2, Username: "o"}
)

func TestNormalizeCategoryName(t *testing.T) {
	assert.Equal(t, "Bebidas Frias", NormalizeCategoryName("  bebidas   FRIAS "))
	assert.Equal(t, "", NormalizeCategoryName("   "))
	assert.Equal(t, "Cafe Latte", NormalizeProductName(" Cafe   Latte"))
}

func TestNormalizeCategoryName_Concurrent(t *testing.T) {
	inputs := []string{"bebidas frias", "  LIMPIEZA  hogar", "éxito total", "café"}
	want := []string{"Bebidas Frias", "Limpieza Hogar", "Éxito Total", "Café"}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 64; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := (g + i) % len(inputs)
				if got := NormalizeCategoryName(inputs[k]); got != want[k] {
					errs <- got
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("unexpected normalized name %q", got)
	}
}

func TestCreateCategory_UniqueCaseInsensitive(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, tenant, KindProduct, "bebidas")
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", c.Name)

	_, err = svc.CreateCategory(ctx, tenant, KindProduct, "BEBIDAS ")
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateName))

	// Separate namespaces per kind and per tenant.
	_, err = svc.CreateCategory(ctx, tenant, KindExpense, "Bebidas")
	assert.NoError(t, err)
	_, err = svc.CreateCategory(ctx, other, KindProduct, "Bebidas")
	assert.NoError(t, err)

	// A soft-deleted name can be reused.
	require.NoError(t, svc.DeleteCategory(ctx, tenant, KindProduct, c.ID))
	_, err = svc.CreateCategory(ctx, tenant, KindProduct, "Bebidas")
	assert.NoError(t, err)
}

func TestCreateCategory_InvalidInput(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.CreateCategory(context.Background(), tenant, KindProduct, "   ")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = svc.CreateCategory(context.Background(), tenant, Kind("misc"), "x")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = svc.CreateCategory(context.Background(), tenant, KindProduct, strings.Repeat("a", MaxCategoryNameLen+1))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestCreateCategory_LengthCountsCharacters(t *testing.T) {
	svc := NewService(newMemRepo())
	// 100 two-byte characters fit the column.
	c, err := svc.CreateCategory(context.Background(), tenant, KindProduct, strings.Repeat("ñ", MaxCategoryNameLen))
	require.NoError(t, err)
	assert.Equal(t, MaxCategoryNameLen, len([]rune(c.Name)))
}

func TestRenameCategory(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	a, _ := svc.CreateCategory(ctx, tenant, KindExpense, "rent")
	_, _ = svc.CreateCategory(ctx, tenant, KindExpense, "power")

	_, err := svc.RenameCategory(ctx, tenant, KindExpense, a.ID, "POWER")
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateName))

	renamed, err := svc.RenameCategory(ctx, tenant, KindExpense, a.ID, "office rent")
	require.NoError(t, err)
	assert.Equal(t, "Office Rent", renamed.Name)

	// Renaming to its own name in a different case is allowed.
	_, err = svc.RenameCategory(ctx, tenant, KindExpense, a.ID, "OFFICE RENT")
	assert.NoError(t, err)
}

func TestCrossTenantAccessDenied(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	c, _ := svc.CreateCategory(ctx, tenant, KindProduct, "Bebidas")

	err := svc.DeleteCategory(ctx, other, KindProduct, c.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeAccessDenied))

	prod, err := svc.CreateProduct(ctx, tenant, ProductInput{Name: "Cafe", Cost: types.MustMoney("2"), Price: types.MustMoney("5"), Stock: 10})
	require.NoError(t, err)
	_, err = svc.SetProductStock(ctx, other, prod.ID, 99)
	assert.True(t, apperror.HasCode(err, apperror.CodeAccessDenied))

	_, err = svc.CreateProduct(ctx, other, ProductInput{Name: "Te", CategoryID: &c.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeAccessDenied))
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		in   ProductInput
		code string
	}{
		{"empty name", ProductInput{Name: " "}, apperror.CodeInvalidInput},
		{"negative cost", ProductInput{Name: "a", Cost: types.MustMoney("-1")}, apperror.CodeInvalidInput},
		{"negative price", ProductInput{Name: "a", Price: types.MustMoney("-0.01")}, apperror.CodeInvalidInput},
		{"negative stock", ProductInput{Name: "a", Stock: -1}, apperror.CodeInvalidInput},
		{"negative threshold", ProductInput{Name: "a", AlertThreshold: -2}, apperror.CodeInvalidInput},
		{"price overflow", ProductInput{Name: "a", Price: types.MustMoney("100000000")}, apperror.CodeOverflow},
		{"name too long", ProductInput{Name: strings.Repeat("x", MaxProductNameLen+1)}, apperror.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tenant, tt.in)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestProduct_DuplicateNameAmongActive(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, tenant, ProductInput{Name: "Cafe"})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, tenant, ProductInput{Name: "cafe"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateName))

	require.NoError(t, svc.DeleteProduct(ctx, tenant, p.ID))
	_, err = svc.CreateProduct(ctx, tenant, ProductInput{Name: "cafe"})
	assert.NoError(t, err)

	_, err = svc.GetProduct(ctx, tenant, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateProduct_KeepsStock(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	p, _ := svc.CreateProduct(ctx, tenant, ProductInput{Name: "Cafe", Cost: types.MustMoney("2"), Price: types.MustMoney("5"), Stock: 10})

	updated, err := svc.UpdateProduct(ctx, tenant, p.ID, ProductInput{Name: "Cafe", Cost: types.MustMoney("2.5"), Price: types.MustMoney("6"), Stock: 999})
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.Stock)
	assert.True(t, updated.Price.Equal(types.MustMoney("6")))
}

func TestSetProductStock(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	p, _ := svc.CreateProduct(ctx, tenant, ProductInput{Name: "Cafe", Stock: 10})

	_, err := svc.SetProductStock(ctx, tenant, p.ID, -1)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	updated, err := svc.SetProductStock(ctx, tenant, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.Stock)
}

func TestDeleteCategory_ProductsBecomeUncategorized(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	c, _ := svc.CreateCategory(ctx, tenant, KindProduct, "Bebidas")
	p, err := svc.CreateProduct(ctx, tenant, ProductInput{Name: "Cafe", CategoryID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", repo.products[p.ID].CategoryLabel())

	require.NoError(t, svc.DeleteCategory(ctx, tenant, KindProduct, c.ID))
	assert.Equal(t, UncategorizedLabel, repo.products[p.ID].CategoryLabel())

	err = svc.DeleteCategory(ctx, tenant, KindProduct, c.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestLowStockAndValuation(t *testing.T) {
	products := []Product{
		{Name: "a", Stock: 2, AlertThreshold: 5, Cost: types.MustMoney("1.50"), IsActive: true},
		{Name: "b", Stock: 5, AlertThreshold: 5, Cost: types.MustMoney("2"), IsActive: true},
		{Name: "c", Stock: 0, AlertThreshold: 0, Cost: types.MustMoney("3"), IsActive: true},
		{Name: "d", Stock: 1, AlertThreshold: 9, Cost: types.MustMoney("100"), IsActive: false},
	}

	low := LowStock(products)
	require.Len(t, low, 2)
	assert.Equal(t, "a", low[0].Name)
	assert.Equal(t, "b", low[1].Name)

	assert.True(t, ProductsValue(products).Equal(types.MustMoney("13")))
}

func TestForcedPasswordChangeBlocksCatalog(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.ListProducts(context.Background(), security.Principal{UserID: 1, MustChangePassword: true}, false)
	assert.True(t, apperror.HasCode(err, apperror.CodePasswordChangeRequired))
}
