package cgt

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// Rejection is a transaction left out of the calculation, with the reason.
type Rejection struct {
	ID     string    `json:"id"`
	Date   date.Date `json:"date"`
	Kind   Kind      `json:"kind"`
	Reason string    `json:"reason"`
}

// IncompleteSecurity is a security whose disposals are missing from the
// summary because its history could not be matched.
type IncompleteSecurity struct {
	Security SecurityKey `json:"security"`
	Reason   string      `json:"reason"`
}

// TaxYearSummary is the result of one calculation run. All money is GBP.
type TaxYearSummary struct {
	TaxYear date.TaxYear `json:"tax_year"`

	DisposalCount   int       `json:"disposal_count"`
	Proceeds        Money     `json:"total_proceeds_gbp"`
	AllowableCosts  Money     `json:"total_allowable_costs_gbp"`
	Gains           Money     `json:"total_gains_gbp"`
	Losses          Money     `json:"total_losses_gbp"`
	NetGain         Money     `json:"net_gain_gbp"`
	AnnualExemption Money     `json:"annual_exemption_gbp"`
	ExemptionUsed   Money     `json:"annual_exemption_used_gbp"`
	TaxableGain     Money     `json:"taxable_gain_gbp"`
	FXGain          Money     `json:"total_fx_gain_gbp"`
	CGTGain         Money     `json:"total_cgt_gain_gbp"`
	RateChangeDate  date.Date `json:"rate_change_date,omitzero"`
	NetGainBefore   *Money    `json:"net_gain_before_rate_change_gbp,omitempty"`
	NetGainAfter    *Money    `json:"net_gain_after_rate_change_gbp,omitempty"`

	DividendsGross        Money `json:"dividends_gross_gbp"`
	DividendWithholding   Money `json:"dividends_withholding_tax_gbp"`
	DividendsNet          Money `json:"dividends_net_gbp"`
	DividendAllowance     Money `json:"dividend_allowance_gbp"`
	DividendAllowanceUsed Money `json:"dividend_allowance_used_gbp"`
	TaxableDividends      Money `json:"taxable_dividends_gbp"`

	CurrencyGain Money `json:"currency_exchange_gain_gbp"`
	Fees         Money `json:"standalone_fees_gbp"`

	Disposals     []Disposal           `json:"disposals"`
	Dividends     []DividendEvent      `json:"dividends"`
	CurrencyGains []CurrencyGain       `json:"currency_gains"`
	Rejected      []Rejection          `json:"rejected,omitempty"`
	Incomplete    []IncompleteSecurity `json:"incomplete,omitempty"`
}

// Complete reports whether every security could be processed.
func (s *TaxYearSummary) Complete() bool { return len(s.Incomplete) == 0 }

// Clone returns a deep copy of s.
func (s *TaxYearSummary) Clone() *TaxYearSummary {
	c := *s
	c.Disposals = slices.Clone(s.Disposals)
	for i := range c.Disposals {
		c.Disposals[i].Lots = slices.Clone(c.Disposals[i].Lots)
	}
	c.Dividends = slices.Clone(s.Dividends)
	c.CurrencyGains = slices.Clone(s.CurrencyGains)
	c.Rejected = slices.Clone(s.Rejected)
	c.Incomplete = slices.Clone(s.Incomplete)
	if s.NetGainBefore != nil {
		v := *s.NetGainBefore
		c.NetGainBefore = &v
	}
	if s.NetGainAfter != nil {
		v := *s.NetGainAfter
		c.NetGainAfter = &v
	}
	return &c
}

// summarize fills the totals from the disposals and dividends.
func (s *TaxYearSummary) summarize(a Allowances, divs DividendSummary, cash CurrencySummary) {
	s.Proceeds, s.AllowableCosts = GBP(0), GBP(0)
	s.Gains, s.Losses = GBP(0), GBP(0)
	s.FXGain, s.CGTGain = GBP(0), GBP(0)
	before, after := GBP(0), GBP(0)
	for _, d := range s.Disposals {
		s.Proceeds = s.Proceeds.Add(d.ProceedsGBP)
		s.AllowableCosts = s.AllowableCosts.Add(d.CostGBP).Add(d.SellCommission)
		if d.TotalGain.IsPositive() {
			s.Gains = s.Gains.Add(d.TotalGain)
		} else {
			s.Losses = s.Losses.Sub(d.TotalGain)
		}
		s.FXGain = s.FXGain.Add(d.FXGain)
		s.CGTGain = s.CGTGain.Add(d.CGTGain)
		if !a.RateChangeDate.IsZero() && d.Date.Before(a.RateChangeDate) {
			before = before.Add(d.TotalGain)
		} else {
			after = after.Add(d.TotalGain)
		}
	}
	s.DisposalCount = len(s.Disposals)
	s.NetGain = s.Gains.Sub(s.Losses)
	s.AnnualExemption = a.AnnualExemption
	s.ExemptionUsed = s.NetGain.Max(GBP(0)).Min(a.AnnualExemption)
	s.TaxableGain = s.NetGain.Sub(a.AnnualExemption).Max(GBP(0))
	if !a.RateChangeDate.IsZero() {
		s.RateChangeDate = a.RateChangeDate
		s.NetGainBefore, s.NetGainAfter = &before, &after
	}

	s.Dividends = divs.Events
	s.DividendsGross = divs.GrossGBP
	s.DividendWithholding = divs.WithholdingGBP
	s.DividendsNet = divs.NetGBP
	s.DividendAllowance = a.DividendAllowance
	s.DividendAllowanceUsed = divs.GrossGBP.Min(a.DividendAllowance)
	s.TaxableDividends = divs.GrossGBP.Sub(a.DividendAllowance).Max(GBP(0))

	s.CurrencyGains = cash.Gains
	s.CurrencyGain = cash.GainGBP
}

// sortDisposals orders disposals by date, security, sell and rule, so two
// runs over the same input give the same output.
func sortDisposals(ds []Disposal) {
	slices.SortStableFunc(ds, func(a, b Disposal) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := strings.Compare(string(a.Security.Key()), string(b.Security.Key())); c != 0 {
			return c
		}
		if a.seq != b.seq {
			return a.seq - b.seq
		}
		return a.Rule.order() - b.Rule.order()
	})
}

// DisposalRecord is the flat form of a disposal consumed by reports.
// Amounts are rounded to the currency's minor unit.
type DisposalRecord struct {
	ID                 string          `json:"id"`
	Date               date.Date       `json:"disposal_date"`
	Symbol             string          `json:"symbol"`
	Name               string          `json:"name"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostOriginal       decimal.Decimal `json:"cost_original_amount"`
	CostCurrency       string          `json:"cost_currency"`
	CostFXRate         decimal.Decimal `json:"cost_fx_rate"`
	CostGBP            decimal.Decimal `json:"cost_gbp"`
	CostCommission     decimal.Decimal `json:"cost_commission_gbp"`
	ProceedsOriginal   decimal.Decimal `json:"proceeds_original_amount"`
	ProceedsCurrency   string          `json:"proceeds_currency"`
	ProceedsFXRate     decimal.Decimal `json:"proceeds_fx_rate"`
	ProceedsGBP        decimal.Decimal `json:"proceeds_gbp"`
	ProceedsCommission decimal.Decimal `json:"proceeds_commission_gbp"`
	WithholdingTax     decimal.Decimal `json:"withholding_tax_gbp"`
	FXGain             decimal.Decimal `json:"fx_gain_loss_gbp"`
	CGTGain            decimal.Decimal `json:"cgt_gain_loss_gbp"`
	TotalGain          decimal.Decimal `json:"total_gain_loss_gbp"`
	MatchingRule       MatchRule       `json:"matching_rule"`
	AcquisitionDate    date.Date       `json:"acquisition_date,omitzero"`
}

// Record flattens d.
func (d Disposal) Record() DisposalRecord {
	return DisposalRecord{
		ID:                 d.ID,
		Date:               d.Date,
		Symbol:             d.Security.Symbol,
		Name:               d.Security.DisplayName(),
		Quantity:           d.Quantity.Decimal(),
		CostOriginal:       d.Cost.Round().Decimal(),
		CostCurrency:       d.Cost.Currency(),
		CostFXRate:         d.CostRate.Decimal(),
		CostGBP:            d.CostGBP.Round().Decimal(),
		CostCommission:     d.BuyCommission.Round().Decimal(),
		ProceedsOriginal:   d.Proceeds.Round().Decimal(),
		ProceedsCurrency:   d.Proceeds.Currency(),
		ProceedsFXRate:     d.ProceedsRate.Decimal(),
		ProceedsGBP:        d.ProceedsGBP.Round().Decimal(),
		ProceedsCommission: d.SellCommission.Round().Decimal(),
		WithholdingTax:     decimal.Zero,
		FXGain:             d.FXGain.Round().Decimal(),
		CGTGain:            d.CGTGain.Round().Decimal(),
		TotalGain:          d.TotalGain.Round().Decimal(),
		MatchingRule:       d.Rule,
		AcquisitionDate:    d.AcquisitionDate,
	}
}

// Records flattens every disposal of the summary.
func (s *TaxYearSummary) Records() []DisposalRecord {
	out := make([]DisposalRecord, 0, len(s.Disposals))
	for _, d := range s.Disposals {
		out = append(out, d.Record())
	}
	return out
}
