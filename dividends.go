package cgt

import (
	"slices"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// DividendEvent is one dividend payment converted to GBP.
type DividendEvent struct {
	ID             string    `json:"id"`
	Date           date.Date `json:"date"`
	Security       Security  `json:"security"`
	Gross          Money     `json:"gross"` // trade currency
	Withholding    Money     `json:"withholding_tax"`
	FXRate         Rate      `json:"fx_rate"`
	GrossGBP       Money     `json:"gross_gbp"`
	WithholdingGBP Money     `json:"withholding_tax_gbp"`
	NetGBP         Money     `json:"net_gbp"`
}

// DividendSummary is the dividend income of a tax year.
type DividendSummary struct {
	Events         []DividendEvent
	GrossGBP       Money
	WithholdingGBP Money
	NetGBP         Money
}

// DividendProcessor aggregates dividend payments. It shares nothing with the
// disposal engine.
type DividendProcessor struct{}

func NewDividendProcessor() *DividendProcessor { return &DividendProcessor{} }

// Process returns the dividends paid during year, in date order.
func (p *DividendProcessor) Process(txs []Transaction, year date.TaxYear) DividendSummary {
	s := DividendSummary{GrossGBP: GBP(0), WithholdingGBP: GBP(0), NetGBP: GBP(0)}
	for _, tx := range txs {
		d, ok := tx.(Dividend)
		if !ok || !year.Contains(d.Date) {
			continue
		}
		e := newDividendEvent(d)
		s.Events = append(s.Events, e)
		s.GrossGBP = s.GrossGBP.Add(e.GrossGBP)
		s.WithholdingGBP = s.WithholdingGBP.Add(e.WithholdingGBP)
		s.NetGBP = s.NetGBP.Add(e.NetGBP)
	}
	slices.SortStableFunc(s.Events, func(a, b DividendEvent) int { return a.Date.Compare(b.Date) })
	return s
}

func newDividendEvent(d Dividend) DividendEvent {
	gross := M(d.Gross, d.Currency)
	withheld := M(d.Withholding, d.Currency)
	e := DividendEvent{
		ID:             d.ID(),
		Date:           d.Date,
		Security:       d.Security,
		Gross:          gross,
		Withholding:    withheld,
		FXRate:         d.FXRate,
		GrossGBP:       gross.Convert(d.FXRate),
		WithholdingGBP: withheld.Convert(d.FXRate),
	}
	e.NetGBP = e.GrossGBP.Sub(e.WithholdingGBP)
	return e
}
