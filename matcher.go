package cgt

import (
	"context"
	"fmt"
	"slices"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

// bedAndBreakfastDays is how far after a disposal a buy is still matched to it.
const bedAndBreakfastDays = 30

// MatchResult is the outcome of matching one security's history.
type MatchResult struct {
	Security  Security
	Disposals []Disposal // chronological, FX not yet decomposed
	Pool      *Pool      // state after the last processed transaction
}

// sale is a sell and the buys reserved for it.
type sale struct {
	sell    Sell
	seq     int
	sameDay []reservation
	bnb     []reservation
}

func (s *sale) matched() Quantity {
	var q Quantity
	for _, r := range s.sameDay {
		q = q.Add(r.quantity)
	}
	for _, r := range s.bnb {
		q = q.Add(r.quantity)
	}
	return q
}

// MatchSecurity costs every sell of a single security's history.
//
// Sells are identified with buys on the same day first, then with buys in the
// 30 days after the sell, then with the Section 104 pool. Within the first two
// rules buys are consumed earliest first. Same-day reservations are made for
// all sells before any 30-day reservation, so a later sell's same-day buy is
// never taken by an earlier sell's 30-day rule.
//
// Sells after until are only used for same-day and 30-day reservations; no
// disposal is produced for them. A zero until processes everything. Splits
// are not supported: one that can change a disposal fails the security with
// ErrCorporateAction, one wholly after until is ignored.
func MatchSecurity(ctx context.Context, history []Transaction, until date.Date) (MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return MatchResult{}, err
	}
	txs := slices.Clone(history)
	slices.SortStableFunc(txs, func(a, b Transaction) int { return a.When().Compare(b.When()) })

	var (
		res    MatchResult
		buys   lots
		sales  []*sale
		splits []Split
	)
	ids := make(map[string]bool, len(txs))
	for _, tx := range txs {
		if ids[tx.ID()] {
			return MatchResult{}, &MalformedTransactionError{ID: tx.ID(), Date: tx.When(), Kind: tx.What(), Reason: "duplicate transaction id"}
		}
		ids[tx.ID()] = true
		switch v := tx.(type) {
		case Buy:
			res.Security = v.Security
			buys = append(buys, &lot{buy: v, remaining: v.Shares()})
		case Sell:
			res.Security = v.Security
			sales = append(sales, &sale{sell: v, seq: len(sales)})
		case Split:
			splits = append(splits, v)
		}
	}
	log := logger.FromContext(ctx)
	for _, sp := range splits {
		if splitAffects(sp, buys, sales, until) {
			return MatchResult{}, fmt.Errorf("%s: %w: split %d:%d %q on %s", sp.Security.Key(), ErrCorporateAction, sp.Numerator, sp.Denominator, sp.ID(), sp.Date)
		}
		log.Info("split after the matching cutoff ignored", "security", sp.Security.Key(), "id", sp.ID(), "date", sp.Date, "until", until)
	}
	key := res.Security.Key()
	res.Pool = NewPool(key)

	for _, s := range sales {
		on := s.sell.Date
		s.sameDay = buys.reserve(s.sell.Shares(), func(d date.Date) bool { return d == on })
	}
	for _, s := range sales {
		on, last := s.sell.Date, s.sell.Date.Add(bedAndBreakfastDays)
		want := s.sell.Shares().Sub(s.matched())
		s.bnb = buys.reserve(want, func(d date.Date) bool { return d.After(on) && !d.After(last) })
	}

	// Chronological pass: on a given day, buys feed the pool before sells draw on it.
	i := 0
	for _, s := range sales {
		if !until.IsZero() && s.sell.Date.After(until) {
			break
		}
		for ; i < len(buys) && !buys[i].buy.Date.After(s.sell.Date); i++ {
			if err := pool(res.Pool, buys[i]); err != nil {
				return MatchResult{}, err
			}
		}
		ds, err := dispose(key, res.Pool, s)
		if err != nil {
			return MatchResult{}, err
		}
		res.Disposals = append(res.Disposals, ds...)
	}
	for ; i < len(buys); i++ {
		if !until.IsZero() && buys[i].buy.Date.After(until) {
			break
		}
		if err := pool(res.Pool, buys[i]); err != nil {
			return MatchResult{}, err
		}
	}
	log.Debug("security matched", "security", key, "sells", len(sales), "disposals", len(res.Disposals))
	return res, nil
}

// splitAffects reports whether sp changes the share count of anything that
// produces a disposal. A split after until only matters when a buy on or
// after it falls in the 30-day window of a sell disposed of by until.
func splitAffects(sp Split, buys lots, sales []*sale, until date.Date) bool {
	if until.IsZero() || !sp.Date.After(until) {
		return true
	}
	for _, s := range sales {
		if s.sell.Date.After(until) {
			break
		}
		last := s.sell.Date.Add(bedAndBreakfastDays)
		for _, l := range buys {
			if !l.buy.Date.Before(sp.Date) && !l.buy.Date.After(last) {
				return true
			}
		}
	}
	return false
}

// pool adds the unreserved part of a buy to the pool.
func pool(p *Pool, l *lot) error {
	q := l.remaining
	if q.IsZero() {
		return nil
	}
	b, shares := l.buy, l.buy.Shares()
	return p.AddAcquisition(Acquisition{
		Quantity:     q,
		CostGBP:      b.CostGBP().Share(q, shares),
		CostOriginal: b.Cost().Share(q, shares),
		FeesGBP:      b.Fees().Convert(b.FXRate).Share(q, shares),
	})
}

// dispose produces the disposals of a sell, one per rule used.
func dispose(key SecurityKey, p *Pool, s *sale) ([]Disposal, error) {
	var out []Disposal
	if len(s.sameDay) > 0 {
		out = append(out, matchedDisposal(key, s, SameDay, s.sameDay))
	}
	if len(s.bnb) > 0 {
		out = append(out, matchedDisposal(key, s, BedAndBreakfast, s.bnb))
	}

	matched := s.matched()
	rest := s.sell.Shares().Sub(matched)
	if !rest.IsPositive() {
		return out, nil
	}
	d := newDisposal(key, s, Section104, rest)
	pd, err := p.ComputeDisposal(rest, d.ProceedsGBP, d.Date)
	if err != nil {
		return nil, &UnmatchedDisposalError{Security: key, SellID: s.sell.ID(), Date: s.sell.Date, Quantity: s.sell.Shares(), Matched: matched, Err: err}
	}
	d.Cost = pd.CostOriginal
	d.CostRate = pd.CostRate
	d.CostGBP = pd.CostGBP
	d.BuyCommission = pd.FeesGBP
	d.mixed = pd.Mixed
	return append(out, d), nil
}

// newDisposal allocates q shares' share of the sell's proceeds and commission.
func newDisposal(key SecurityKey, s *sale, rule MatchRule, q Quantity) Disposal {
	sell, sold := s.sell, s.sell.Shares()
	proceeds := sell.Gross().Share(q, sold)
	return Disposal{
		ID:             disposalID(key, sell.ID(), rule),
		SellID:         sell.ID(),
		Date:           sell.Date,
		Security:       sell.Security,
		Rule:           rule,
		Quantity:       q,
		Proceeds:       proceeds,
		ProceedsRate:   sell.FXRate,
		ProceedsGBP:    proceeds.Convert(sell.FXRate),
		SellCommission: sell.Fees().Share(q, sold).Convert(sell.FXRate),
		seq:            s.seq,
	}
}

// matchedDisposal costs reservations at the actual prices of the buys.
func matchedDisposal(key SecurityKey, s *sale, rule MatchRule, res []reservation) Disposal {
	var q Quantity
	for _, r := range res {
		q = q.Add(r.quantity)
	}
	d := newDisposal(key, s, rule, q)
	d.AcquisitionDate = res[0].lot.buy.Date

	cost, fees := GBP(0), GBP(0)
	amounts := make([]RatedAmount, 0, len(res))
	currency, mixed := res[0].lot.buy.Currency, false
	var original Money
	for _, r := range res {
		b, shares := r.lot.buy, r.lot.buy.Shares()
		slice := r.lot.slice(r.quantity)
		d.Lots = append(d.Lots, slice)
		cost = cost.Add(slice.CostGBP)
		fees = fees.Add(b.Fees().Convert(b.FXRate).Share(r.quantity, shares))
		if b.Currency != currency {
			mixed = true
			continue
		}
		part := b.Cost().Share(r.quantity, shares)
		original = original.Add(part)
		amounts = append(amounts, RatedAmount{Amount: part.Decimal(), Rate: b.FXRate})
	}
	d.CostGBP = cost
	d.BuyCommission = fees
	d.mixed = mixed
	if !mixed {
		d.Cost = original
		d.CostRate = CalculateWeightedAverageFXRate(amounts)
		d.costParts = amounts
	}
	return d
}
