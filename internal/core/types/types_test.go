package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_ParseAndString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10", "10.000"},
		{"2.5", "2.500"},
		{"0.0015", "0.001"},
		{"-1.25", "-1.250"},
		{".5", "0.500"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, err := ParseQuantity(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestQuantity_ParseRejectsGarbage(t *testing.T) {
	_, err := ParseQuantity("abc")
	assert.Error(t, err)
	_, err = ParseQuantity("")
	assert.Error(t, err)
	_, err = ParseQuantity("1.x")
	assert.Error(t, err)
	_, err = ParseQuantity("10000000")
	assert.Error(t, err)
}

func TestQuantity_ExponentRange(t *testing.T) {
	q, err := ParseQuantity("1.5e3")
	require.NoError(t, err)
	assert.Equal(t, NewQuantityFromUnits(1500), q)

	for _, in := range []string{"1.8446744073709551617e16", "1e7", "-2E10"} {
		_, err := ParseQuantity(in)
		assert.Error(t, err, in)
	}

	var j Quantity
	assert.Error(t, json.Unmarshal([]byte(`1.8446744073709551617e16`), &j))
	assert.Error(t, j.Scan(float64(1e19)))
}

func TestQuantity_JSON(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`"3.5"`), &q))
	assert.Equal(t, Quantity(3500), q)

	require.NoError(t, json.Unmarshal([]byte(`7`), &q))
	assert.Equal(t, NewQuantityFromUnits(7), q)

	out, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Equal(t, "7.000", string(out))
}

func TestQuantity_AddDetectsOverflow(t *testing.T) {
	sum, ok := NewQuantityFromUnits(10).Add(NewQuantityFromUnits(5))
	assert.True(t, ok)
	assert.Equal(t, NewQuantityFromUnits(15), sum)

	_, ok = MaxQuantity.Add(1)
	assert.False(t, ok)
}

func TestQuantity_Decimal(t *testing.T) {
	q := NewQuantityFromDecimal(decimal.RequireFromString("12.3456"))
	assert.Equal(t, Quantity(12345), q)
	assert.True(t, q.Decimal().Equal(decimal.RequireFromString("12.345")))
}

func TestQuantity_Scan(t *testing.T) {
	var q Quantity
	require.NoError(t, q.Scan("20.000"))
	assert.Equal(t, NewQuantityFromUnits(20), q)
	require.NoError(t, q.Scan(int64(3)))
	assert.Equal(t, NewQuantityFromUnits(3), q)
	assert.Error(t, q.Scan(true))
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(MustMoney("9"), MustMoney("15")).Equal(MustMoney("60")))
	assert.True(t, Percent(MustMoney("9"), Zero()).IsZero())
}

func TestDateRange_Bounds(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)

	from, until := r.Bounds()
	require.NotNil(t, from)
	require.NotNil(t, until)
	assert.Equal(t, "2024-02-01", until.Format(DateLayout))

	assert.True(t, r.Contains(time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)))
}

func TestDateRange_OpenSides(t *testing.T) {
	r, err := ParseDateRange("", "2024-03-10")
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Up to 2024-03-10", r.Label())

	assert.True(t, AllTime().Contains(time.Now()))
	assert.Equal(t, "All history", AllTime().Label())
}

func TestDateRange_Invalid(t *testing.T) {
	_, err := ParseDateRange("2024-13-01", "")
	assert.Error(t, err)

	_, err = ParseDateRange("2024-02-10", "2024-02-01")
	assert.Error(t, err)
}

func TestMonthEnd(t *testing.T) {
	assert.Equal(t, "2024-02-29", MonthEnd(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)).Format(DateLayout))
	assert.Equal(t, "2023-12-31", MonthEnd(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)).Format(DateLayout))
}
