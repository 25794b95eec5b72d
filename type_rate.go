package cgt

import "github.com/shopspring/decimal"

// rateEpsilon is the tolerance under which two FX rates are the same rate.
var rateEpsilon = decimal.New(1, -4)

// Rate is an exchange rate to GBP: pounds per unit of the original currency.
type Rate struct {
	value decimal.Decimal
}

func R[T number](value T) Rate { return Rate{value: newDecimal(value)} }

// One is the rate of a GBP amount.
var One = Rate{value: decimal.NewFromInt(1)}

func (r Rate) IsValid() bool            { return r.value.IsPositive() }
func (r Rate) IsOne() bool              { return r.value.Equal(One.value) }
func (r Rate) Equal(s Rate) bool        { return r.value.Equal(s.value) }
func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) String() string           { return r.value.String() }

// NearlyEqual reports whether r and s differ by less than 1e-4.
func (r Rate) NearlyEqual(s Rate) bool { return r.value.Sub(s.value).Abs().LessThan(rateEpsilon) }

// Round keeps n decimal places, for display only.
func (r Rate) Round(n int32) Rate { return Rate{value: r.value.Round(n)} }

func (r Rate) MarshalJSON() ([]byte, error)     { return r.value.MarshalJSON() }
func (r *Rate) UnmarshalJSON(data []byte) error { return r.value.UnmarshalJSON(data) }
