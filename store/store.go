// Package store persists tax year results in a sqlite database, as the flat
// records reporting tools read.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS summaries (
		tax_year TEXT PRIMARY KEY,
		disposal_count INTEGER NOT NULL,
		proceeds_gbp TEXT NOT NULL,
		gains_gbp TEXT NOT NULL,
		losses_gbp TEXT NOT NULL,
		net_gain_gbp TEXT NOT NULL,
		exemption_used_gbp TEXT NOT NULL,
		taxable_gain_gbp TEXT NOT NULL,
		dividends_gross_gbp TEXT NOT NULL,
		taxable_dividends_gbp TEXT NOT NULL,
		complete INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS disposals (
		tax_year TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		disposal_date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		cost_original TEXT NOT NULL,
		cost_currency TEXT NOT NULL,
		cost_fx_rate TEXT NOT NULL,
		cost_gbp TEXT NOT NULL,
		cost_commission_gbp TEXT NOT NULL,
		proceeds_original TEXT NOT NULL,
		proceeds_currency TEXT NOT NULL,
		proceeds_fx_rate TEXT NOT NULL,
		proceeds_gbp TEXT NOT NULL,
		proceeds_commission_gbp TEXT NOT NULL,
		fx_gain_gbp TEXT NOT NULL,
		cgt_gain_gbp TEXT NOT NULL,
		total_gain_gbp TEXT NOT NULL,
		matching_rule TEXT NOT NULL,
		acquisition_date TEXT NOT NULL,
		PRIMARY KEY (tax_year, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS dividends (
		tax_year TEXT NOT NULL,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		symbol TEXT NOT NULL,
		currency TEXT NOT NULL,
		fx_rate TEXT NOT NULL,
		gross_gbp TEXT NOT NULL,
		withholding_gbp TEXT NOT NULL,
		net_gbp TEXT NOT NULL,
		PRIMARY KEY (tax_year, seq)
	)`,
}

const (
	deleteDisposalsSQL = "DELETE FROM disposals WHERE tax_year = ?"
	deleteDividendsSQL = "DELETE FROM dividends WHERE tax_year = ?"
	upsertSummarySQL   = "INSERT OR REPLACE INTO summaries (tax_year, disposal_count, proceeds_gbp, gains_gbp, losses_gbp, net_gain_gbp, exemption_used_gbp, taxable_gain_gbp, dividends_gross_gbp, taxable_dividends_gbp, complete) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	insertDisposalSQL  = "INSERT INTO disposals (tax_year, seq, id, disposal_date, symbol, name, quantity, cost_original, cost_currency, cost_fx_rate, cost_gbp, cost_commission_gbp, proceeds_original, proceeds_currency, proceeds_fx_rate, proceeds_gbp, proceeds_commission_gbp, fx_gain_gbp, cgt_gain_gbp, total_gain_gbp, matching_rule, acquisition_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	insertDividendSQL  = "INSERT INTO dividends (tax_year, seq, id, payment_date, symbol, currency, fx_rate, gross_gbp, withholding_gbp, net_gbp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	selectDisposalsSQL = "SELECT id, disposal_date, symbol, name, quantity, cost_original, cost_currency, cost_fx_rate, cost_gbp, cost_commission_gbp, proceeds_original, proceeds_currency, proceeds_fx_rate, proceeds_gbp, proceeds_commission_gbp, fx_gain_gbp, cgt_gain_gbp, total_gain_gbp, matching_rule, acquisition_date FROM disposals WHERE tax_year = ? ORDER BY seq"
)

// Store writes and reads tax year results.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

// Open opens the sqlite database at path and creates the tables.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", path, err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("cannot create schema: %w", err)
		}
	}
	return nil
}

// SaveSummary replaces the stored results of the summary's tax year.
func (s *Store) SaveSummary(ctx context.Context, sum *cgt.TaxYearSummary) (err error) {
	year := sum.TaxYear.String()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range []string{deleteDisposalsSQL, deleteDividendsSQL} {
		if _, err = tx.ExecContext(ctx, stmt, year); err != nil {
			return fmt.Errorf("cannot clear tax year %s: %w", year, err)
		}
	}

	complete := 0
	if sum.Complete() {
		complete = 1
	}
	if _, err = tx.ExecContext(ctx, upsertSummarySQL, year, sum.DisposalCount,
		amount(sum.Proceeds), amount(sum.Gains), amount(sum.Losses), amount(sum.NetGain),
		amount(sum.ExemptionUsed), amount(sum.TaxableGain), amount(sum.DividendsGross), amount(sum.TaxableDividends),
		complete); err != nil {
		return fmt.Errorf("cannot save summary %s: %w", year, err)
	}

	for i, r := range sum.Records() {
		acquired := ""
		if !r.AcquisitionDate.IsZero() {
			acquired = r.AcquisitionDate.String()
		}
		if _, err = tx.ExecContext(ctx, insertDisposalSQL, year, i, r.ID, r.Date.String(), r.Symbol, r.Name,
			r.Quantity.String(), r.CostOriginal.String(), r.CostCurrency, r.CostFXRate.String(), r.CostGBP.String(), r.CostCommission.String(),
			r.ProceedsOriginal.String(), r.ProceedsCurrency, r.ProceedsFXRate.String(), r.ProceedsGBP.String(), r.ProceedsCommission.String(),
			r.FXGain.String(), r.CGTGain.String(), r.TotalGain.String(), string(r.MatchingRule), acquired); err != nil {
			return fmt.Errorf("cannot save disposal %q: %w", r.ID, err)
		}
	}

	for i, d := range sum.Dividends {
		if _, err = tx.ExecContext(ctx, insertDividendSQL, year, i, d.ID, d.Date.String(), d.Security.Symbol,
			d.Gross.Currency(), d.FXRate.String(), amount(d.GrossGBP), amount(d.WithholdingGBP), amount(d.NetGBP)); err != nil {
			return fmt.Errorf("cannot save dividend %q: %w", d.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit tax year %s: %w", year, err)
	}
	logger.L.Info("saved tax year results", "tax_year", year, "disposals", sum.DisposalCount, "dividends", len(sum.Dividends))
	return nil
}

// Disposals reads back the disposal records of year, in saved order.
func (s *Store) Disposals(ctx context.Context, year date.TaxYear) ([]cgt.DisposalRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectDisposalsSQL, year.String())
	if err != nil {
		return nil, fmt.Errorf("cannot query disposals of %s: %w", year, err)
	}
	defer rows.Close()

	var out []cgt.DisposalRecord
	for rows.Next() {
		var (
			r                                                  cgt.DisposalRecord
			on, acquired, rule                                 string
			qty, costOrig, costRate, costGBP, costFee           string
			procOrig, procRate, procGBP, procFee, fx, cg, total string
		)
		if err := rows.Scan(&r.ID, &on, &r.Symbol, &r.Name, &qty, &costOrig, &r.CostCurrency, &costRate, &costGBP, &costFee,
			&procOrig, &r.ProceedsCurrency, &procRate, &procGBP, &procFee, &fx, &cg, &total, &rule, &acquired); err != nil {
			return nil, fmt.Errorf("cannot read disposal: %w", err)
		}
		if r.Date, err = date.Parse(on); err != nil {
			return nil, fmt.Errorf("disposal %q: %w", r.ID, err)
		}
		if acquired != "" {
			if r.AcquisitionDate, err = date.Parse(acquired); err != nil {
				return nil, fmt.Errorf("disposal %q: %w", r.ID, err)
			}
		}
		r.MatchingRule = cgt.MatchRule(rule)
		r.WithholdingTax = decimal.Zero
		for _, f := range []struct {
			dst *decimal.Decimal
			src string
		}{
			{&r.Quantity, qty}, {&r.CostOriginal, costOrig}, {&r.CostFXRate, costRate}, {&r.CostGBP, costGBP},
			{&r.CostCommission, costFee}, {&r.ProceedsOriginal, procOrig}, {&r.ProceedsFXRate, procRate},
			{&r.ProceedsGBP, procGBP}, {&r.ProceedsCommission, procFee}, {&r.FXGain, fx}, {&r.CGTGain, cg}, {&r.TotalGain, total},
		} {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("disposal %q: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read disposals: %w", err)
	}
	return out, nil
}

// amount is the rounded decimal text of m.
func amount(m cgt.Money) string { return m.Round().Decimal().String() }
