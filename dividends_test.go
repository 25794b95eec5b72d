package cgt

import "testing"

func TestDividendProcessor_Process(t *testing.T) {
	txs := []Transaction{
		NewDividend("d2", day("2024-09-01"), vod, GBP(20), GBP(0), One),
		NewDividend("d1", day("2024-08-01"), aapl, USD(100), USD(15), R(0.8)),
		NewDividend("d0", day("2024-04-05"), aapl, USD(100), USD(15), R(0.8)), // previous tax year
		buy("b1", "2024-08-01", aapl, 1, USD(1), 0.8),
	}
	s := NewDividendProcessor().Process(txs, ty2024)

	if len(s.Events) != 2 || s.Events[0].ID != "d1" || s.Events[1].ID != "d2" {
		t.Fatalf("Events = %+v, want d1 then d2", s.Events)
	}
	e := s.Events[0]
	if !e.Gross.Equal(USD(100)) || !e.GrossGBP.Equal(GBP(80)) || !e.WithholdingGBP.Equal(GBP(12)) || !e.NetGBP.Equal(GBP(68)) {
		t.Errorf("d1 = %+v, want 80 gross, 12 withheld and 68 net in GBP", e)
	}
	for _, c := range []struct {
		name      string
		got, want Money
	}{
		{"GrossGBP", s.GrossGBP, GBP(100)},
		{"WithholdingGBP", s.WithholdingGBP, GBP(12)},
		{"NetGBP", s.NetGBP, GBP(88)},
	} {
		if !c.got.Equal(c.want) {
			t.Errorf("%s = %s, want %s", c.name, c.got.Decimal(), c.want.Decimal())
		}
	}
}

func TestDividendProcessor_Empty(t *testing.T) {
	s := NewDividendProcessor().Process(nil, ty2024)
	if len(s.Events) != 0 || !s.GrossGBP.IsZero() || s.GrossGBP.Currency() != "GBP" {
		t.Errorf("Process(nil) = %+v, want zero GBP totals", s)
	}
}
