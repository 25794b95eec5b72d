package cgt

import (
	"context"
	"log/slog"
	"slices"

	"github.com/Rhymond/go-money"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

// CurrencyGain is the gain on disposing of foreign cash acquired at one
// historical rate.
type CurrencyGain struct {
	ID             string    `json:"id"` // exchange transaction
	Date           date.Date `json:"date"`
	Amount         Money     `json:"amount"`
	CurrentRate    Rate      `json:"current_fx_rate"`
	HistoricalRate Rate      `json:"historical_fx_rate"`
	AcquiredOn     date.Date `json:"acquired_on,omitzero"`
	GainGBP        Money     `json:"gain_gbp"`
}

// CurrencySummary lists the currency gains of a tax year.
type CurrencySummary struct {
	Gains   []CurrencyGain
	GainGBP Money
}

// cashLot is foreign cash bought at one rate.
type cashLot struct {
	on     date.Date
	amount Money
	rate   Rate
}

// CurrencyExchangeProcessor tracks foreign cash in FIFO lots, fed only by
// currency exchange transactions.
type CurrencyExchangeProcessor struct {
	lots map[string][]cashLot
	log  *slog.Logger
}

func NewCurrencyExchangeProcessor() *CurrencyExchangeProcessor {
	return &CurrencyExchangeProcessor{lots: make(map[string][]cashLot)}
}

// Process replays every exchange in txs and reports the gains dated in year.
// Warnings go to the logger carried by ctx. It may be called once per
// processor.
func (p *CurrencyExchangeProcessor) Process(ctx context.Context, txs []Transaction, year date.TaxYear) CurrencySummary {
	p.log = logger.FromContext(ctx)
	var xs []CurrencyExchange
	for _, tx := range txs {
		if x, ok := tx.(CurrencyExchange); ok && !x.Date.After(year.End()) {
			xs = append(xs, x)
		}
	}
	slices.SortStableFunc(xs, func(a, b CurrencyExchange) int { return a.Date.Compare(b.Date) })

	s := CurrencySummary{GainGBP: GBP(0)}
	for _, x := range xs {
		var gains []CurrencyGain
		if x.FromCurrency != money.GBP {
			gains = p.dispose(x)
		}
		if x.ToCurrency != money.GBP {
			p.acquire(x.Date, x.To(), x.ToRate)
		}
		if !year.Contains(x.Date) {
			continue
		}
		for _, g := range gains {
			s.Gains = append(s.Gains, g)
			s.GainGBP = s.GainGBP.Add(g.GainGBP)
		}
	}
	return s
}

func (p *CurrencyExchangeProcessor) acquire(on date.Date, amount Money, rate Rate) {
	c := amount.Currency()
	p.lots[c] = append(p.lots[c], cashLot{on: on, amount: amount, rate: rate})
}

// dispose consumes the lots of the currency sold, earliest first.
func (p *CurrencyExchangeProcessor) dispose(x CurrencyExchange) []CurrencyGain {
	c := x.FromCurrency
	want := x.From()
	var gains []CurrencyGain
	for len(p.lots[c]) > 0 && want.IsPositive() {
		l := &p.lots[c][0]
		n := l.amount.Min(want)
		gains = append(gains, CurrencyGain{
			ID:             x.ID(),
			Date:           x.Date,
			Amount:         n,
			CurrentRate:    x.FromRate,
			HistoricalRate: l.rate,
			AcquiredOn:     l.on,
			GainGBP:        cashExchangeGainLoss(p.log, n, x.FromRate, l.rate),
		})
		want = want.Sub(n)
		l.amount = l.amount.Sub(n)
		if l.amount.IsZero() {
			p.lots[c] = p.lots[c][1:]
		}
	}
	if want.IsPositive() {
		// no recorded acquisition: cost it at today's rate, no gain
		p.log.Warn("currency disposed of without a recorded acquisition",
			"id", x.ID(), "date", x.Date, "currency", c, "uncovered", want.Decimal())
		gains = append(gains, CurrencyGain{
			ID:             x.ID(),
			Date:           x.Date,
			Amount:         want,
			CurrentRate:    x.FromRate,
			HistoricalRate: x.FromRate,
			GainGBP:        GBP(0),
		})
	}
	return gains
}
