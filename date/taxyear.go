package date

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaxYear is a UK tax year, running from 6 April to 5 April the following
// calendar year. It is identified by the calendar year it starts in.
type TaxYear struct{ start int }

// NewTaxYear returns the tax year starting on 6 April of startYear.
func NewTaxYear(startYear int) TaxYear { return TaxYear{startYear} }

// TaxYearOf returns the tax year d belongs to.
func TaxYearOf(d Date) TaxYear {
	if d.Before(New(d.Year(), time.April, 6)) {
		return TaxYear{d.Year() - 1}
	}
	return TaxYear{d.Year()}
}

// ParseTaxYear parses "2024-25", "2024/25" or "2024".
func ParseTaxYear(str string) (TaxYear, error) {
	s := strings.TrimSpace(str)
	head, tail, split := strings.Cut(strings.ReplaceAll(s, "/", "-"), "-")
	y, err := strconv.Atoi(head)
	if err != nil || len(head) != 4 {
		return TaxYear{}, fmt.Errorf("invalid tax year %q want format %q", str, "2024-25")
	}
	if split {
		end, err := strconv.Atoi(tail)
		if err != nil || len(tail) != 2 || end != (y+1)%100 {
			return TaxYear{}, fmt.Errorf("invalid tax year %q: %q does not follow %d", str, tail, y)
		}
	}
	return TaxYear{y}, nil
}

// MustParseTaxYear is like ParseTaxYear but panics on error.
func MustParseTaxYear(str string) TaxYear {
	t, err := ParseTaxYear(str)
	if err != nil {
		panic(err.Error())
	}
	return t
}

func (t TaxYear) StartYear() int { return t.start }
func (t TaxYear) IsZero() bool   { return t.start == 0 }

// Start returns 6 April of the starting year.
func (t TaxYear) Start() Date { return New(t.start, time.April, 6) }

// End returns 5 April of the following year.
func (t TaxYear) End() Date { return New(t.start+1, time.April, 5) }

func (t TaxYear) Range() Range  { return Range{t.Start(), t.End()} }
func (t TaxYear) Next() TaxYear { return TaxYear{t.start + 1} }
func (t TaxYear) Prev() TaxYear { return TaxYear{t.start - 1} }

func (t TaxYear) Contains(d Date) bool { return t.Range().Contains(d) }

func (t TaxYear) String() string { return fmt.Sprintf("%d-%02d", t.start, (t.start+1)%100) }

func (t *TaxYear) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	v, err := ParseTaxYear(str)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t TaxYear) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }
