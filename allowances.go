package cgt

import (
	"maps"
	"slices"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// Allowances are the statutory amounts of one tax year.
type Allowances struct {
	AnnualExemption   Money     // CGT annual exempt amount
	DividendAllowance Money     // dividend income taxed at 0%
	RateChangeDate    date.Date // CGT rates changed for disposals from this day, zero if none
}

// AllowanceTable holds the allowances of every supported tax year.
type AllowanceTable map[date.TaxYear]Allowances

// Years returns the supported tax years in order.
func (t AllowanceTable) Years() []date.TaxYear {
	return slices.SortedFunc(maps.Keys(t), func(a, b date.TaxYear) int { return a.StartYear() - b.StartYear() })
}

// DefaultAllowances returns the HMRC amounts from 2016-17 to 2025-26.
func DefaultAllowances() AllowanceTable {
	t := AllowanceTable{}
	for _, a := range []struct {
		year      int
		exemption int64
		dividend  int64
	}{
		{2016, 11100, 5000},
		{2017, 11300, 5000},
		{2018, 11700, 2000},
		{2019, 12000, 2000},
		{2020, 12300, 2000},
		{2021, 12300, 2000},
		{2022, 12300, 2000},
		{2023, 6000, 1000},
		{2024, 3000, 500},
		{2025, 3000, 500},
	} {
		t[date.NewTaxYear(a.year)] = Allowances{AnnualExemption: GBP(a.exemption), DividendAllowance: GBP(a.dividend)}
	}
	y := t[date.NewTaxYear(2024)]
	y.RateChangeDate = date.MustParse("2024-10-30")
	t[date.NewTaxYear(2024)] = y
	return t
}
