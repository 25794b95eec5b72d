package cgt

import (
	"errors"
	"testing"
)

func TestPool_AddAcquisition(t *testing.T) {
	p := NewPool(aapl.Key())
	for _, a := range []Acquisition{
		{Quantity: Q(100), CostGBP: GBP(750), CostOriginal: USD(1000), FeesGBP: GBP(0)},
		{Quantity: Q(200), CostGBP: GBP(1800), CostOriginal: USD(2400), FeesGBP: GBP(0)},
	} {
		if err := p.AddAcquisition(a); err != nil {
			t.Fatalf("AddAcquisition() error = %v", err)
		}
	}

	if got, want := p.Quantity(), Q(300); !got.Equal(want) {
		t.Errorf("Quantity() = %v, want %v", got, want)
	}
	if got, want := p.Cost(), GBP(2550); !got.Equal(want) {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
	if got, want := p.AverageCost(), GBP(8.5); !got.Equal(want) {
		t.Errorf("AverageCost() = %v, want %v", got, want)
	}
	rate, ok := p.CostRate()
	if !ok || !rate.Equal(R(0.75)) {
		t.Errorf("CostRate() = %v, %v, want 0.75, true", rate, ok)
	}
}

func TestPool_AddAcquisitionRejectsNonPositive(t *testing.T) {
	p := NewPool(aapl.Key())
	if err := p.AddAcquisition(Acquisition{Quantity: Q(0), CostGBP: GBP(1)}); err == nil {
		t.Error("AddAcquisition(0) succeeded, want an error")
	}
}

func TestPool_ComputeDisposal(t *testing.T) {
	p := NewPool(aapl.Key())
	p.AddAcquisition(Acquisition{Quantity: Q(300), CostGBP: GBP(2550), CostOriginal: USD(3400), FeesGBP: GBP(3)})

	d, err := p.ComputeDisposal(Q(150), GBP(1680), day("2024-07-01"))
	if err != nil {
		t.Fatalf("ComputeDisposal() error = %v", err)
	}
	if got, want := d.CostGBP, GBP(1275); !got.Equal(want) {
		t.Errorf("CostGBP = %v, want %v", got, want)
	}
	if got, want := d.CostOriginal, USD(1700); !got.Equal(want) {
		t.Errorf("CostOriginal = %v, want %v", got, want)
	}
	if got, want := d.FeesGBP, GBP(1.5); !got.Equal(want) {
		t.Errorf("FeesGBP = %v, want %v", got, want)
	}
	if got, want := d.AverageCost, GBP(8.5); !got.Equal(want) {
		t.Errorf("AverageCost = %v, want %v", got, want)
	}
	if got, want := d.Gain(), GBP(405); !got.Equal(want) {
		t.Errorf("Gain() = %v, want %v", got, want)
	}

	if got, want := p.Quantity(), Q(150); !got.Equal(want) {
		t.Errorf("pool Quantity() = %v, want %v", got, want)
	}
	if got, want := p.Cost(), GBP(1275); !got.Equal(want) {
		t.Errorf("pool Cost() = %v, want %v", got, want)
	}
	if got, want := p.AverageCost(), GBP(8.5); !got.Equal(want) {
		t.Errorf("average cost changed by a disposal: %v, want %v", got, want)
	}
}

func TestPool_CostIsConserved(t *testing.T) {
	p := NewPool(vod.Key())
	p.AddAcquisition(Acquisition{Quantity: Q(3), CostGBP: GBP(100), CostOriginal: GBP(100), FeesGBP: GBP(0)})

	total := GBP(0)
	for range 3 {
		d, err := p.ComputeDisposal(Q(1), GBP(0), day("2024-07-01"))
		if err != nil {
			t.Fatalf("ComputeDisposal() error = %v", err)
		}
		total = total.Add(d.CostGBP)
	}
	if !total.Equal(GBP(100)) {
		t.Errorf("sum of disposal costs = %s, want exactly 100", total.Decimal())
	}
	if !p.Quantity().IsZero() || !p.Cost().IsZero() {
		t.Errorf("emptied pool holds %v shares for %v", p.Quantity(), p.Cost())
	}
	if _, ok := p.CostRate(); ok {
		t.Error("emptied pool still has a cost rate")
	}
}

func TestPool_InsufficientShares(t *testing.T) {
	p := NewPool(aapl.Key())
	p.AddAcquisition(Acquisition{Quantity: Q(30), CostGBP: GBP(300), CostOriginal: USD(400), FeesGBP: GBP(0)})

	_, err := p.ComputeDisposal(Q(50), GBP(500), day("2024-07-01"))
	if !errors.Is(err, ErrInsufficientPool) {
		t.Fatalf("ComputeDisposal() error = %v, want ErrInsufficientPool", err)
	}
	var ipe *InsufficientPoolError
	if !errors.As(err, &ipe) || !ipe.Available.Equal(Q(30)) || !ipe.Requested.Equal(Q(50)) {
		t.Errorf("error = %#v, want 50 requested and 30 available", err)
	}
	if got := p.Quantity(); !got.Equal(Q(30)) {
		t.Errorf("failed disposal changed the pool to %v shares", got)
	}
}

func TestPool_MixedCurrencies(t *testing.T) {
	p := NewPool(aapl.Key())
	p.AddAcquisition(Acquisition{Quantity: Q(10), CostGBP: GBP(75), CostOriginal: USD(100), FeesGBP: GBP(0)})
	p.AddAcquisition(Acquisition{Quantity: Q(10), CostGBP: GBP(85), CostOriginal: M(100, "EUR"), FeesGBP: GBP(0)})

	if _, ok := p.CostRate(); ok {
		t.Error("CostRate() known for a pool mixing USD and EUR")
	}
	d, err := p.ComputeDisposal(Q(10), GBP(100), day("2024-07-01"))
	if err != nil {
		t.Fatalf("ComputeDisposal() error = %v", err)
	}
	if !d.CostGBP.Equal(GBP(80)) || d.CostRate.IsValid() || !d.CostOriginal.IsZero() {
		t.Errorf("disposal = %+v, want a GBP cost of 80 and no original cost", d)
	}
}

func TestPools_Get(t *testing.T) {
	ps := Pools{}
	a := ps.Get(aapl.Key())
	if b := ps.Get(NewSecurityKey("aapl", "nasdaq")); a != b {
		t.Error("Get() returned different pools for the same security")
	}
	if ps.Get(vod.Key()) == a {
		t.Error("Get() shared a pool between securities")
	}
}
