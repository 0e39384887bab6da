package inventory_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizbooks/internal/core/types"
)

func TestPurchasesQuery_AllHistory(t *testing.T) {
	repo := NewRepo(nil)

	sql, args, err := repo.purchasesQuery(3, nil, types.AllTime()).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "m.name AS material_name")
	assert.Contains(t, sql, "FROM material_purchases mp JOIN raw_materials m ON m.id = mp.material_id")
	assert.Contains(t, sql, "ORDER BY mp.purchase_date DESC, mp.id DESC")
	assert.Equal(t, []any{int64(3)}, args)
}

func TestPurchasesQuery_MaterialAndRange(t *testing.T) {
	repo := NewRepo(nil)
	dr, err := types.ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	materialID := int64(9)

	sql, args, err := repo.purchasesQuery(3, &materialID, dr).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "mp.material_id = $2")
	assert.Contains(t, sql, "mp.purchase_date >= $3")
	assert.Contains(t, sql, "mp.purchase_date < $4")
	require.Len(t, args, 4)
	from, until := dr.Bounds()
	assert.Equal(t, *from, args[2])
	assert.Equal(t, *until, args[3])
}
