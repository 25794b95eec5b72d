// Package service memoizes tax year calculations for callers that run many
// of them, such as one per uploaded export.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

const (
	DefaultExpiration = 15 * time.Minute
	CleanupInterval   = 30 * time.Minute
)

// Calculator is what the service memoizes; *cgt.Calculator implements it.
type Calculator interface {
	Calculate(ctx context.Context, txs []cgt.Transaction, year date.TaxYear) (*cgt.TaxYearSummary, error)
}

// Service caches summaries by the content of their input.
type Service struct {
	calc  Calculator
	cache *cache.Cache
}

// NewCache returns a cache with the default expiration.
func NewCache() *cache.Cache { return cache.New(DefaultExpiration, CleanupInterval) }

func New(calc Calculator, c *cache.Cache) *Service {
	return &Service{calc: calc, cache: c}
}

// Calculate returns the summary of year over txs, computing it only if the
// same transactions were not calculated for the same year recently. The
// caller owns the returned summary. Failed calculations are not cached.
func (s *Service) Calculate(ctx context.Context, txs []cgt.Transaction, year date.TaxYear) (*cgt.TaxYearSummary, error) {
	key, err := cacheKey(txs, year)
	if err != nil {
		return nil, err
	}
	if cached, found := s.cache.Get(key); found {
		logger.L.Debug("cache hit for tax year summary", "tax_year", year.String(), "key", key)
		return cached.(*cgt.TaxYearSummary).Clone(), nil
	}

	summary, err := s.calc.Calculate(ctx, txs, year)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, summary, cache.DefaultExpiration)
	return summary.Clone(), nil
}

// cacheKey hashes the JSONL encoding of txs with the tax year.
func cacheKey(txs []cgt.Transaction, year date.TaxYear) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", year)
	if err := cgt.EncodeTransactions(h, txs); err != nil {
		return "", fmt.Errorf("cannot hash transactions: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
