// Package types provides common type aliases and utilities.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

const (
	// MoneyPlaces matches NUMERIC(10,2) columns.
	MoneyPlaces int32 = 2
	// CostPlaces matches the NUMERIC(10,4) material average cost.
	CostPlaces int32 = 4
)

// MaxMoney is the largest value a NUMERIC(10,2) column holds.
var MaxMoney = decimal.RequireFromString("99999999.99")

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds half away from zero to two places.
func RoundMoney(m Money) Money {
	return m.Round(MoneyPlaces)
}

// RoundCost rounds an average cost to four places.
func RoundCost(m Money) Money {
	return m.Round(CostPlaces)
}

// Percent returns part/whole*100, or zero when whole is not positive.
func Percent(part, whole Money) Money {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

// Quantity is a fixed-point quantity with 3 decimal places (scale = 1e3).
//
// Matches the NUMERIC(10,3) material stock columns without floating point errors.
// JSON remains a number with up to 3 decimals.
type Quantity int64

const QuantityScale int64 = 1_000

// MaxQuantity is the largest value a NUMERIC(10,3) column holds.
const MaxQuantity Quantity = 9_999_999_999

func NewQuantityFromInt64Scaled(v int64) Quantity { return Quantity(v) }

// NewQuantityFromUnits builds a whole-unit quantity.
func NewQuantityFromUnits(v int64) Quantity { return Quantity(v * QuantityScale) }

var maxQuantityDecimal = decimal.New(int64(MaxQuantity), -3)

// NewQuantityFromDecimal truncates d to 3 fractional digits. d must already be
// within ±MaxQuantity; use QuantityFromDecimal for untrusted input.
func NewQuantityFromDecimal(d decimal.Decimal) Quantity {
	return Quantity(d.Shift(3).Truncate(0).IntPart())
}

// QuantityFromDecimal is NewQuantityFromDecimal with a range check.
func QuantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	if d.Abs().GreaterThan(maxQuantityDecimal) {
		return 0, fmt.Errorf("quantity %s out of range", d.String())
	}
	return NewQuantityFromDecimal(d), nil
}

// ParseQuantity parses a plain decimal string such as "12.5".
func ParseQuantity(s string) (Quantity, error) {
	return parseQuantityString(s)
}

func (q Quantity) Int64Scaled() int64 { return int64(q) }

// Decimal returns q as an exact decimal.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -3) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

// Overflows reports whether q is outside the storable range.
func (q Quantity) Overflows() bool { return q > MaxQuantity || q < -MaxQuantity }

// Add returns q+o and false when the sum leaves the storable range.
func (q Quantity) Add(o Quantity) (Quantity, bool) {
	sum := q + o
	if (o > 0 && sum < q) || (o < 0 && sum > q) {
		return 0, false
	}
	return sum, !sum.Overflows()
}

// String returns a decimal string with 3 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%03d", intPart, frac)
	}
	return fmt.Sprintf("%d.%03d", intPart, frac)
}

// MarshalJSON encodes Quantity as JSON number (not string), preserving 3 digits.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string and parses to fixed-point (3 digits).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	parsed, err := parseQuantityString(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Scan implements sql.Scanner for NUMERIC columns.
func (q *Quantity) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = 0
		return nil
	case int64:
		*q = NewQuantityFromUnits(v)
		return nil
	case float64:
		parsed, err := QuantityFromDecimal(decimal.NewFromFloat(v))
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	case string:
		parsed, err := parseQuantityString(v)
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	case []byte:
		parsed, err := parseQuantityString(string(v))
		if err != nil {
			return err
		}
		*q = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Quantity", src)
	}
}

// Value implements driver.Valuer.
func (q Quantity) Value() (driver.Value, error) {
	return q.String(), nil
}

func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	// Exponent form only reaches us from spreadsheet cells.
	if strings.ContainsAny(s, "eE") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		return QuantityFromDecimal(d)
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = strings.TrimPrefix(s, "-")
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	parts := strings.SplitN(s, ".", 2)
	intPartStr := parts[0]
	fracStr := ""
	if len(parts) == 2 {
		fracStr = parts[1]
	}

	if intPartStr == "" {
		intPartStr = "0"
	}
	intPart, err := strconv.ParseInt(intPartStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse quantity integer part: %w", err)
	}
	if intPart > int64(MaxQuantity)/QuantityScale {
		return 0, fmt.Errorf("quantity %s out of range", s)
	}

	// Normalize fractional part to 3 digits (pad right, truncate extra digits).
	if len(fracStr) > 3 {
		fracStr = fracStr[:3]
	}
	for len(fracStr) < 3 {
		fracStr += "0"
	}
	frac, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil || frac < 0 {
		return 0, fmt.Errorf("parse quantity fractional part: %q", fracStr)
	}

	return Quantity(sign * (intPart*QuantityScale + frac)), nil
}
