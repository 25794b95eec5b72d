package cgt

import (
	"bytes"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

var (
	aapl = Security{Symbol: "AAPL", Exchange: "NASDAQ", ISIN: "US0378331005", Name: "Apple"}
	tsla = Security{Symbol: "TSLA", Exchange: "NASDAQ", Name: "Tesla"}
	vod  = Security{Symbol: "VOD", Exchange: "LSE", Name: "Vodafone"}
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to parse a date from const
func day(s string) date.Date { return date.MustParse(s) }

func buy(id, on string, sec Security, q float64, price Money, rate float64) Buy {
	return NewBuy(id, day(on), sec, Q(q), price, R(rate), decimal.Zero)
}

func sell(id, on string, sec Security, q float64, price Money, rate float64) Sell {
	return NewSell(id, day(on), sec, Q(q), price, R(rate), decimal.Zero)
}

// scenario1 buys 300 shares in two lots at 0.75 and sells half at 0.80.
func scenario1() []Transaction {
	return []Transaction{
		buy("b1", "2024-05-01", aapl, 100, USD(10), 0.75),
		buy("b2", "2024-05-02", aapl, 200, USD(12), 0.75),
		sell("s1", "2024-07-01", aapl, 150, USD(14), 0.80),
	}
}

// captureLog returns a logger writing text records to the returned buffer.
func captureLog() (*slog.Logger, *bytes.Buffer) {
	var b bytes.Buffer
	return slog.New(slog.NewTextHandler(&b, nil)), &b
}
