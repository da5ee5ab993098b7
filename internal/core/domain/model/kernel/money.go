package kernel

import (
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Money is a non-negative amount kept at two decimal places. The zero value
// is zero money.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds amount to two places and rejects negatives.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsOutOfRangeError("amount", amount.String(), 0, "unbounded")
	}
	return Money{amount: amount.Round(moneyPlaces)}, nil
}

// MoneyFromInt builds whole-unit money; negative input yields zero.
func MoneyFromInt(units int64) Money {
	if units < 0 {
		return Money{}
	}
	return Money{amount: decimal.NewFromInt(units)}
}

// Amount returns the decimal value.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsEqual compares amounts numerically.
func (m Money) IsEqual(other Money) bool {
	return m.amount.Equal(other.amount)
}

// MulRate multiplies by a factor and rounds to two places; negative results
// clamp to zero.
func (m Money) MulRate(rate decimal.Decimal) Money {
	out := m.amount.Mul(rate).Round(moneyPlaces)
	if out.IsNegative() {
		return Money{}
	}
	return Money{amount: out}
}

// Percent returns pct percent of m, rounded to two places.
func (m Money) Percent(pct decimal.Decimal) Money {
	return m.MulRate(pct.Div(hundred))
}

// String formats with exactly two decimals.
func (m Money) String() string {
	return m.amount.StringFixed(moneyPlaces)
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.StringFixed(moneyPlaces)), nil
}

// UnmarshalJSON accepts numbers and quoted numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	parsed, err := NewMoney(d)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
