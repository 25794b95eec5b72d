package cgt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// SecurityKey identifies a security for pooling: the normalized symbol and
// exchange, e.g. "VOD@LSE". Two transactions share a pool iff their keys match.
type SecurityKey string

// Security is reference data about a share or ETF. Only Symbol and Exchange
// take part in its identity.
type Security struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange,omitempty"`
	ISIN     string `json:"isin,omitempty"`
	Name     string `json:"name,omitempty"`
	Country  string `json:"country,omitempty"`
}

// NewSecurityKey normalizes a symbol and exchange into a key.
func NewSecurityKey(symbol, exchange string) SecurityKey {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if e := strings.ToUpper(strings.TrimSpace(exchange)); e != "" {
		s += "@" + e
	}
	return SecurityKey(s)
}

func (s Security) Key() SecurityKey { return NewSecurityKey(s.Symbol, s.Exchange) }

// DisplayName is the name when known, the symbol otherwise.
func (s Security) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Symbol
}

// Validate checks the symbol is present and, if given, that the ISIN is well formed.
func (s Security) Validate() error {
	if strings.TrimSpace(s.Symbol) == "" {
		return errors.New("security symbol is empty")
	}
	if s.ISIN != "" {
		if err := ValidateISIN(s.ISIN); err != nil {
			return fmt.Errorf("security %q: invalid ISIN: %w", s.Symbol, err)
		}
	}
	return nil
}

// ValidateISIN checks the ISO 6166 format and Luhn check digit of isin.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return errors.New("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// letters expand to two digits (A=10 .. Z=35) before the Luhn sum
	digits := make([]int, 0, 22)
	for _, c := range isin[:11] {
		if c >= 'A' && c <= 'Z' {
			v := int(c-'A') + 10
			digits = append(digits, v/10, v%10)
		} else {
			digits = append(digits, int(c-'0'))
		}
	}

	sum := 0
	double := true // the rightmost payload digit is doubled
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
		}
		sum += d/10 + d%10
		double = !double
	}

	want := (10 - sum%10) % 10
	if got := int(isin[11] - '0'); got != want {
		return fmt.Errorf("invalid check digit: expected %d, got %d", want, got)
	}
	return nil
}
