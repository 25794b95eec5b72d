package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

var vod = cgt.Security{Symbol: "VOD", Exchange: "LSE", Name: "Vodafone"}

// summary computes a 2024-25 summary with one pool disposal and one dividend.
func summary(t *testing.T) *cgt.TaxYearSummary {
	t.Helper()
	txs := []cgt.Transaction{
		cgt.NewBuy("b1", date.MustParse("2024-05-01"), vod, cgt.Q(100), cgt.GBP(1), cgt.One, decimal.Zero),
		cgt.NewSell("s1", date.MustParse("2024-07-01"), vod, cgt.Q(50), cgt.GBP(2), cgt.One, decimal.Zero),
		cgt.NewDividend("d1", date.MustParse("2024-08-01"), vod, cgt.GBP(10), cgt.GBP(0), cgt.One),
	}
	s, err := cgt.NewCalculator(cgt.DefaultAllowances()).Calculate(context.Background(), txs, date.MustParseTaxYear("2024-25"))
	require.NoError(t, err)
	require.Len(t, s.Disposals, 1)
	return s
}

func TestSaveSummary(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	sum := summary(t)
	d := sum.Disposals[0]

	mock.ExpectBegin()
	mock.ExpectExec(deleteDisposalsSQL).WithArgs("2024-25").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteDividendsSQL).WithArgs("2024-25").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(upsertSummarySQL).
		WithArgs("2024-25", 1, "100", "50", "0", "50", "50", "0", "10", "0", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertDisposalSQL).
		WithArgs("2024-25", 0, d.ID, "2024-07-01", "VOD", "Vodafone",
			"50", sqlmock.AnyArg(), "GBP", sqlmock.AnyArg(), "50", "0",
			"100", "GBP", "1", "100", "0",
			"0", "50", "50", "SECTION_104", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insertDividendSQL).
		WithArgs("2024-25", 0, "d1", "2024-08-01", "VOD", "GBP", "1", "10", "0", "10").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, New(db).SaveSummary(context.Background(), sum))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSummaryRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(deleteDisposalsSQL).WithArgs("2024-25").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = New(db).SaveSummary(context.Background(), summary(t))
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisposals(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	columns := []string{"id", "disposal_date", "symbol", "name", "quantity", "cost_original", "cost_currency", "cost_fx_rate",
		"cost_gbp", "cost_commission_gbp", "proceeds_original", "proceeds_currency", "proceeds_fx_rate", "proceeds_gbp",
		"proceeds_commission_gbp", "fx_gain_gbp", "cgt_gain_gbp", "total_gain_gbp", "matching_rule", "acquisition_date"}
	mock.ExpectQuery(selectDisposalsSQL).WithArgs("2024-25").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("x1", "2024-07-01", "AAPL", "Apple", "150", "1700", "USD", "0.75", "1275", "0",
				"2100", "USD", "0.8", "1680", "0", "85", "320", "405", "SECTION_104", "").
			AddRow("x2", "2024-07-02", "AAPL", "Apple", "10", "100", "USD", "0.75", "75", "1",
				"120", "USD", "0.8", "96", "0", "5", "16", "21", "SAME_DAY", "2024-07-02"))

	recs, err := New(db).Disposals(context.Background(), date.MustParseTaxYear("2024-25"))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "x1", recs[0].ID)
	assert.True(t, recs[0].TotalGain.Equal(decimal.NewFromInt(405)))
	assert.True(t, recs[0].AcquisitionDate.IsZero())
	assert.Equal(t, cgt.SameDay, recs[1].MatchingRule)
	assert.Equal(t, date.MustParse("2024-07-02"), recs[1].AcquisitionDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisposalsBadRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	row := []driver.Value{"x1", "not a date", "AAPL", "Apple", "1", "1", "USD", "1", "1", "0", "1", "USD", "1", "1", "0", "0", "0", "0", "SECTION_104", ""}
	cols := []string{"id", "disposal_date", "symbol", "name", "quantity", "cost_original", "cost_currency", "cost_fx_rate",
		"cost_gbp", "cost_commission_gbp", "proceeds_original", "proceeds_currency", "proceeds_fx_rate", "proceeds_gbp",
		"proceeds_commission_gbp", "fx_gain_gbp", "cgt_gain_gbp", "total_gain_gbp", "matching_rule", "acquisition_date"}
	mock.ExpectQuery(selectDisposalsSQL).WithArgs("2024-25").WillReturnRows(sqlmock.NewRows(cols).AddRow(row...))

	_, err = New(db).Disposals(context.Background(), date.MustParseTaxYear("2024-25"))
	assert.Error(t, err)
}
