package cgt

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

// CalculateDisposalFXGainLoss returns the part of a disposal's GBP gain due
// to the exchange rate moving between acquisition and disposal:
//
//	costOriginal * (proceedsRate - costRate)
//
// It is zero when the two rates are within 1e-4 of each other or both 1. A
// rate that is not positive yields zero and a warning, never an error, so a
// bad row cannot stop the CGT figure from being produced.
func CalculateDisposalFXGainLoss(costOriginal Money, costRate Rate, proceedsOriginal Money, proceedsRate Rate) Money {
	return disposalFXGainLoss(logger.L, costOriginal, costRate, proceedsOriginal, proceedsRate)
}

func disposalFXGainLoss(log *slog.Logger, costOriginal Money, costRate Rate, proceedsOriginal Money, proceedsRate Rate) Money {
	if !costRate.IsValid() || !proceedsRate.IsValid() {
		log.Warn("fx rate not positive, fx gain set to zero",
			"cost", costOriginal.Decimal(), "cost_rate", costRate, "proceeds", proceedsOriginal.Decimal(), "proceeds_rate", proceedsRate)
		return GBP(0)
	}
	return rateMovement(costOriginal, costRate, proceedsRate)
}

// lotsFXGainLoss is the FX gain of a cost made of parts bought at their own
// rates: Σ part * (proceedsRate - rate). The weighted average rate only
// decides whether the rates moved at all.
func lotsFXGainLoss(log *slog.Logger, parts []RatedAmount, avgRate, proceedsRate Rate) Money {
	if !avgRate.IsValid() || !proceedsRate.IsValid() {
		log.Warn("fx rate not positive, fx gain set to zero", "cost_rate", avgRate, "proceeds_rate", proceedsRate)
		return GBP(0)
	}
	if avgRate.NearlyEqual(proceedsRate) || (avgRate.IsOne() && proceedsRate.IsOne()) {
		return GBP(0)
	}
	sum := decimal.Zero
	for _, p := range parts {
		sum = sum.Add(p.Amount.Mul(proceedsRate.value.Sub(p.Rate.value)))
	}
	return GBP(sum)
}

// CalculateCashExchangeGainLoss is the cash equivalent: the GBP gain on
// disposing of amount of a foreign currency acquired at historicalRate.
func CalculateCashExchangeGainLoss(amount Money, currentRate, historicalRate Rate) Money {
	return cashExchangeGainLoss(logger.L, amount, currentRate, historicalRate)
}

func cashExchangeGainLoss(log *slog.Logger, amount Money, currentRate, historicalRate Rate) Money {
	if !currentRate.IsValid() || !historicalRate.IsValid() {
		log.Warn("fx rate not positive, currency gain set to zero",
			"amount", amount.Decimal(), "currency", amount.Currency(), "current_rate", currentRate, "historical_rate", historicalRate)
		return GBP(0)
	}
	return rateMovement(amount, historicalRate, currentRate)
}

func rateMovement(amount Money, from, to Rate) Money {
	if from.NearlyEqual(to) || (from.IsOne() && to.IsOne()) {
		return GBP(0)
	}
	return GBP(amount.Decimal().Mul(to.value.Sub(from.value)))
}

// RatedAmount is an amount in a foreign currency and the rate it was
// converted at.
type RatedAmount struct {
	Amount decimal.Decimal
	Rate   Rate
}

// CalculateWeightedAverageFXRate returns Σ(amount*rate)/Σamount, or 1 when
// the amounts sum to zero.
func CalculateWeightedAverageFXRate(amounts []RatedAmount) Rate {
	total, weighted := decimal.Zero, decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.Amount)
		weighted = weighted.Add(a.Amount.Mul(a.Rate.value))
	}
	if total.IsZero() {
		return One
	}
	return Rate{value: weighted.Div(total)}
}
