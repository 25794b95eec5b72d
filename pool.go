package cgt

import (
	"fmt"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// Acquisition is the part of a buy that enters a Section 104 pool.
type Acquisition struct {
	Quantity     Quantity
	CostGBP      Money // allowable cost, commission included
	CostOriginal Money // same cost in the trade currency
	FeesGBP      Money // commission part of CostGBP
}

// Pool is the Section 104 holding of one security: a single running lot
// whose cost is the sum of every pooled acquisition, less what disposals took
// out.
type Pool struct {
	Security SecurityKey
	quantity Quantity
	cost     Money // GBP
	original Money // trade currency
	fees     Money // GBP
	mixed    bool  // acquisitions in more than one currency
}

func NewPool(key SecurityKey) *Pool {
	return &Pool{Security: key, cost: GBP(0), fees: GBP(0)}
}

func (p *Pool) Quantity() Quantity { return p.quantity }
func (p *Pool) Cost() Money        { return p.cost }

// AverageCost is the GBP cost per pooled share, zero for an empty pool.
func (p *Pool) AverageCost() Money {
	if p.quantity.IsZero() {
		return GBP(0)
	}
	return p.cost.Div(p.quantity)
}

// CostRate is the weighted average rate of the pooled cost, GBP cost over
// original cost. It is unknown when acquisitions were made in different
// currencies.
func (p *Pool) CostRate() (Rate, bool) {
	if p.mixed || p.original.IsZero() {
		return Rate{}, false
	}
	return Rate{value: p.cost.value.Div(p.original.value)}, true
}

// AddAcquisition adds shares and their cost to the pool.
func (p *Pool) AddAcquisition(a Acquisition) error {
	if !a.Quantity.IsPositive() {
		return fmt.Errorf("pool %s: acquisition quantity must be positive, got %s", p.Security, a.Quantity)
	}
	p.quantity = p.quantity.Add(a.Quantity)
	p.cost = p.cost.Add(a.CostGBP)
	p.fees = p.fees.Add(a.FeesGBP)
	switch {
	case p.mixed:
	case p.original.Currency() == "" || p.original.Currency() == a.CostOriginal.Currency():
		p.original = p.original.Add(a.CostOriginal)
	default:
		p.mixed = true
	}
	return nil
}

// PoolDisposal is the pool's side of a disposal.
type PoolDisposal struct {
	Quantity     Quantity
	CostGBP      Money
	CostOriginal Money // zero when the pool mixes currencies
	CostRate     Rate  // invalid when the pool mixes currencies
	Mixed        bool  // the pool mixes currencies
	FeesGBP      Money // buy commission carried in CostGBP
	AverageCost  Money // per share, before the disposal
	ProceedsGBP  Money
}

// Gain is proceeds less cost basis.
func (d PoolDisposal) Gain() Money { return d.ProceedsGBP.Sub(d.CostGBP) }

// ComputeDisposal removes quantity shares from the pool at average cost.
// The cost basis is evaluated before removal as cost*quantity/poolQuantity and
// subtracted as is, so the pool's cost always equals what remains of it.
func (p *Pool) ComputeDisposal(quantity Quantity, proceedsGBP Money, on date.Date) (PoolDisposal, error) {
	if !quantity.IsPositive() {
		return PoolDisposal{}, fmt.Errorf("pool %s: disposal quantity must be positive, got %s", p.Security, quantity)
	}
	if quantity.GreaterThan(p.quantity) {
		return PoolDisposal{}, &InsufficientPoolError{Security: p.Security, Date: on, Requested: quantity, Available: p.quantity}
	}

	d := PoolDisposal{
		Quantity:    quantity,
		CostGBP:     p.cost.Share(quantity, p.quantity),
		FeesGBP:     p.fees.Share(quantity, p.quantity),
		AverageCost: p.AverageCost(),
		ProceedsGBP: proceedsGBP,
		Mixed:       p.mixed,
	}
	if rate, ok := p.CostRate(); ok {
		d.CostRate = rate
		d.CostOriginal = p.original.Share(quantity, p.quantity)
	}

	if quantity.Equal(p.quantity) {
		// an emptied pool starts afresh, currency included
		*p = *NewPool(p.Security)
		return d, nil
	}
	p.quantity = p.quantity.Sub(quantity)
	p.cost = p.cost.Sub(d.CostGBP)
	p.fees = p.fees.Sub(d.FeesGBP)
	if !d.CostOriginal.IsZero() {
		p.original = p.original.Sub(d.CostOriginal)
	}
	return d, nil
}

// Pools holds the pools of one calculation run.
type Pools map[SecurityKey]*Pool

// Get returns the pool of key, creating an empty one.
func (ps Pools) Get(key SecurityKey) *Pool {
	p, ok := ps[key]
	if !ok {
		p = NewPool(key)
		ps[key] = p
	}
	return p
}
