package cgt

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact amount in a currency. Arithmetic keeps full precision;
// Round is applied only when a figure leaves the engine.
type Money struct {
	value decimal.Decimal // major units
	cur   string
}

func M[T number](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// GBP returns value in pounds sterling.
func GBP[T number](value T) Money { return M(value, money.GBP) }

// KnownCurrency reports whether code is an ISO 4217 code.
func KnownCurrency(code string) bool { return money.GetCurrency(code) != nil }

func (m Money) currency() money.Currency {
	// money.New never returns a nil currency, unknown codes get a default one.
	return *money.New(0, m.cur).Currency()
}

// String formats the rounded amount with the currency symbol, e.g. £1,275.00.
func (m Money) String() string {
	cur := m.currency()
	dec := m.Round().value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString is String with an explicit + for gains, and "-" for zero.
func (m Money) SignedString() string {
	r := m.Round()
	if r.value.IsZero() {
		return "-"
	}
	if r.value.IsPositive() {
		return "+" + r.String()
	}
	return r.String()
}

func (m Money) Currency() string                { return m.cur }
func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value), cur: m.cur} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value), cur: m.cur} }

// Convert returns m in GBP at rate r, GBP per unit of m's currency.
func (m Money) Convert(r Rate) Money { return Money{value: m.value.Mul(r.value), cur: money.GBP} }

// Share returns m * part / whole, multiplying first so that whole shares of a
// pool split exactly.
func (m Money) Share(part, whole Quantity) Money {
	return Money{value: m.value.Mul(part.value).Div(whole.value), cur: m.cur}
}

// Round rounds to the currency's minor unit, pennies for GBP.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}

// Max returns the larger of m and n.
func (m Money) Max(n Money) Money {
	if n.value.GreaterThan(m.value) {
		return Money{value: n.value, cur: cur(m, n)}
	}
	return Money{value: m.value, cur: cur(m, n)}
}

// Min returns the smaller of m and n.
func (m Money) Min(n Money) Money {
	if n.value.LessThan(m.value) {
		return Money{value: n.value, cur: cur(m, n)}
	}
	return Money{value: m.value, cur: cur(m, n)}
}

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// cur makes the "" currency weak: the zero Money adopts the other side's currency.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

type jsonMoney struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

// MarshalJSON writes the amount rounded to the currency fraction.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonMoney{Amount: m.Round().value, Currency: m.cur})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var j jsonMoney
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*m = Money{value: j.Amount, cur: j.Currency}
	return nil
}
