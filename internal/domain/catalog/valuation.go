package catalog

import "bizbooks/internal/core/types"

// ProductsValue sums stock × cost over active products.
func ProductsValue(products []Product) types.Money {
	total := types.Zero()
	for i := range products {
		if products[i].IsActive {
			total = total.Add(products[i].InventoryValue())
		}
	}
	return types.RoundMoney(total)
}

// LowStock filters active products at or below their threshold.
func LowStock(products []Product) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.IsActive && p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}
