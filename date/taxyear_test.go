package date

import "testing"

func TestTaxYearOf(t *testing.T) {
	tests := []struct {
		on   string
		want string
	}{
		{"2024-04-05", "2023-24"},
		{"2024-04-06", "2024-25"},
		{"2024-12-31", "2024-25"},
		{"2025-01-01", "2024-25"},
		{"2025-04-05", "2024-25"},
		{"1999-06-01", "1999-00"},
	}
	for _, tt := range tests {
		if got := TaxYearOf(MustParse(tt.on)).String(); got != tt.want {
			t.Errorf("TaxYearOf(%s) = %s, want %s", tt.on, got, tt.want)
		}
	}
}

func TestParseTaxYear(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2024-25", 2024, false},
		{"2024/25", 2024, false},
		{" 2023 ", 2023, false},
		{"1999-00", 1999, false},
		{"2024-26", 0, true},
		{"24-25", 0, true},
		{"twenty", 0, true},
		{"2024-2025", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTaxYear(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTaxYear(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got.StartYear() != tt.want {
				t.Errorf("ParseTaxYear(%q) = %d, want %d", tt.in, got.StartYear(), tt.want)
			}
		})
	}
}

func TestTaxYearBoundaries(t *testing.T) {
	ty := MustParseTaxYear("2024-25")
	if got, want := ty.Start(), MustParse("2024-04-06"); got != want {
		t.Errorf("Start() = %v, want %v", got, want)
	}
	if got, want := ty.End(), MustParse("2025-04-05"); got != want {
		t.Errorf("End() = %v, want %v", got, want)
	}
	if got, want := ty.Next().String(), "2025-26"; got != want {
		t.Errorf("Next() = %s, want %s", got, want)
	}
	if got, want := ty.Prev().String(), "2023-24"; got != want {
		t.Errorf("Prev() = %s, want %s", got, want)
	}
	// every day of the year maps back to it
	for d := ty.Start(); !d.After(ty.End()); d = d.Add(1) {
		if TaxYearOf(d) != ty {
			t.Fatalf("TaxYearOf(%s) = %s, want %s", d, TaxYearOf(d), ty)
		}
	}
}
