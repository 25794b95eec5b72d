package cgt

import "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"

// lot is a buy as seen by the same-day and 30-day rules. Quantity reserved
// by those rules never reaches the Section 104 pool.
type lot struct {
	buy       Buy
	remaining Quantity // not yet reserved
}

// take reserves up to q shares and returns the quantity reserved.
func (l *lot) take(q Quantity) Quantity {
	n := l.remaining.Min(q)
	l.remaining = l.remaining.Sub(n)
	return n
}

// slice is the matched part of the lot, costed at the buy's actual price.
func (l *lot) slice(q Quantity) MatchedLot {
	return MatchedLot{
		BuyID:    l.buy.ID(),
		Date:     l.buy.Date,
		Quantity: q,
		CostGBP:  l.buy.CostGBP().Share(q, l.buy.Shares()),
	}
}

// lots are kept in date then entry order, which is the FIFO-within-rule order.
type lots []*lot

// reserve consumes lots accepted by match, earliest first, until want is
// covered. It returns the reservations made.
func (ls lots) reserve(want Quantity, match func(on date.Date) bool) []reservation {
	var res []reservation
	for _, l := range ls {
		if !want.IsPositive() {
			break
		}
		if l.remaining.IsZero() || !match(l.buy.Date) {
			continue
		}
		n := l.take(want)
		want = want.Sub(n)
		res = append(res, reservation{lot: l, quantity: n})
	}
	return res
}

// reservation is a quantity of a lot promised to one sell.
type reservation struct {
	lot      *lot
	quantity Quantity
}
