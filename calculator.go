package cgt

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

// Stage is a step of a calculation run.
type Stage int

const (
	Initialized Stage = iota
	ParsingInput
	MatchingDisposals
	ComputingFX
	AggregatingDividends
	Summarizing
	Done
	Failed
)

func (s Stage) String() string {
	switch s {
	case Initialized:
		return "INITIALIZED"
	case ParsingInput:
		return "PARSING_INPUT"
	case MatchingDisposals:
		return "MATCHING_DISPOSALS"
	case ComputingFX:
		return "COMPUTING_FX"
	case AggregatingDividends:
		return "AGGREGATING_DIVIDENDS"
	case Summarizing:
		return "SUMMARIZING"
	case Done:
		return "DONE"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Calculator computes tax year summaries. It holds configuration only; each
// call to Calculate works on its own pools, so a Calculator may be shared by
// concurrent callers.
type Calculator struct {
	allowances AllowanceTable
	workers    int
	log        *slog.Logger
}

type Option func(*Calculator)

// WithWorkers bounds the number of securities matched in parallel.
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger runs derive theirs from.
func WithLogger(l *slog.Logger) Option { return func(c *Calculator) { c.log = l } }

func NewCalculator(allowances AllowanceTable, opts ...Option) *Calculator {
	c := &Calculator{allowances: allowances, workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate runs a full calculation of year over txs.
func (c *Calculator) Calculate(ctx context.Context, txs []Transaction, year date.TaxYear) (*TaxYearSummary, error) {
	return c.Start(year).Execute(ctx, txs)
}

// Run is a single calculation. It moves through the stages in order and
// ends in Done or Failed.
type Run struct {
	calc   *Calculator
	year   date.TaxYear
	stage  Stage
	stages []Stage
	log    *slog.Logger
}

// Start returns a run of year in the Initialized stage.
func (c *Calculator) Start(year date.TaxYear) *Run {
	l := c.log
	if l == nil {
		l = logger.L
	}
	return &Run{
		calc:   c,
		year:   year,
		stage:  Initialized,
		stages: []Stage{Initialized},
		log:    l.With("run", uuid.NewString(), "tax_year", year.String()),
	}
}

// Stage returns the current stage.
func (r *Run) Stage() Stage { return r.stage }

// Stages returns every stage the run went through.
func (r *Run) Stages() []Stage { return slices.Clone(r.stages) }

func (r *Run) enter(s Stage) {
	r.log.Debug("calculation stage", "from", r.stage, "to", s)
	r.stage = s
	r.stages = append(r.stages, s)
}

func (r *Run) fail(err error) error {
	at := r.stage
	r.enter(Failed)
	r.log.Error("calculation failed", "stage", at, "error", err)
	return &StageError{Stage: at, Err: err}
}

// input is the validated transaction list, split by concern.
type input struct {
	securities map[SecurityKey][]Transaction // buys, sells and splits
	keys       []SecurityKey                 // sorted
	cash       []Transaction                 // dividends, exchanges and fees
	rejected   []Rejection
	tainted    map[SecurityKey]string // security -> reason
}

// matched is one security's matching outcome.
type matched struct {
	key       SecurityKey
	disposals []Disposal
	err       error
}

// Execute performs the run. A run can be executed once.
func (r *Run) Execute(ctx context.Context, txs []Transaction) (*TaxYearSummary, error) {
	if r.stage != Initialized {
		return nil, errors.New("calculation run already executed")
	}
	ctx = logger.ToContext(ctx, r.log)

	allowances, ok := r.calc.allowances[r.year]
	if !ok {
		return nil, r.fail(&InvalidTaxYearError{Year: r.year, Supported: r.calc.allowances.Years()})
	}

	r.enter(ParsingInput)
	in := r.parse(txs)
	if err := ctx.Err(); err != nil {
		return nil, r.fail(err)
	}

	r.enter(MatchingDisposals)
	results, err := r.match(ctx, in)
	if err != nil {
		return nil, r.fail(err)
	}

	r.enter(ComputingFX)
	s := &TaxYearSummary{TaxYear: r.year}
	for _, m := range results {
		if m.err != nil {
			r.log.Warn("security incomplete", "security", m.key, "error", m.err)
			s.Incomplete = append(s.Incomplete, IncompleteSecurity{Security: m.key, Reason: m.err.Error()})
			continue
		}
		for _, d := range m.disposals {
			if !r.year.Contains(d.Date) {
				continue
			}
			d.decompose(r.log)
			s.Disposals = append(s.Disposals, d)
		}
	}
	sortDisposals(s.Disposals)

	r.enter(AggregatingDividends)
	divs := NewDividendProcessor().Process(in.cash, r.year)
	cash := NewCurrencyExchangeProcessor().Process(ctx, in.cash, r.year)
	s.Fees = GBP(0)
	for _, tx := range in.cash {
		if f, ok := tx.(Fee); ok && r.year.Contains(f.Date) {
			s.Fees = s.Fees.Add(f.AmountGBP())
		}
	}

	r.enter(Summarizing)
	s.Rejected = in.rejected
	s.summarize(allowances, divs, cash)

	r.enter(Done)
	r.log.Info("calculation done", "disposals", s.DisposalCount, "net_gain", s.NetGain.Round().Decimal(),
		"rejected", len(s.Rejected), "incomplete", len(s.Incomplete))
	return s, nil
}

// parse validates txs and groups them. A malformed transaction, or a later
// one reusing an id, is rejected on its own, except that a malformed buy, sell or split leaves its
// security's pool unknowable, so the whole security is marked incomplete.
func (r *Run) parse(txs []Transaction) input {
	in := input{securities: make(map[SecurityKey][]Transaction), tainted: make(map[SecurityKey]string)}
	// Sells up to 30 days after the year end can still take buys from the
	// year's 30-day rule; anything later has no effect.
	cutoff := r.year.End().Add(bedAndBreakfastDays)
	seen := make(map[string]bool)
	for _, tx := range txs {
		if tx == nil || tx.When().After(cutoff) {
			continue
		}
		err := tx.Validate()
		if err == nil && seen[tx.ID()] {
			err = &MalformedTransactionError{ID: tx.ID(), Date: tx.When(), Kind: tx.What(), Reason: "duplicate transaction id"}
		}
		if tx.ID() != "" {
			seen[tx.ID()] = true
		}
		if err != nil {
			r.log.Warn("transaction rejected", "id", tx.ID(), "date", tx.When(), "kind", tx.What(), "error", err)
			rej := Rejection{ID: tx.ID(), Date: tx.When(), Kind: tx.What(), Reason: err.Error()}
			var mte *MalformedTransactionError
			if errors.As(err, &mte) {
				rej.Reason = mte.Reason
			}
			in.rejected = append(in.rejected, rej)
			if sec, ok := SecurityOf(tx); ok && affectsPool(tx.What()) {
				key := sec.Key()
				if _, seen := in.tainted[key]; !seen {
					in.tainted[key] = err.Error()
				}
				if _, seen := in.securities[key]; !seen {
					in.securities[key] = nil
				}
			}
			continue
		}
		switch tx.(type) {
		case Buy, Sell, Split:
			sec, _ := SecurityOf(tx)
			key := sec.Key()
			in.securities[key] = append(in.securities[key], tx)
		default:
			in.cash = append(in.cash, tx)
		}
	}
	for key := range in.securities {
		in.keys = append(in.keys, key)
	}
	slices.Sort(in.keys)
	return in
}

func affectsPool(k Kind) bool { return k == KindBuy || k == KindSell || k == KindSplit }

// match runs MatchSecurity for every security, in parallel. Failures of a
// security are kept in its result; only cancellation fails the run.
func (r *Run) match(ctx context.Context, in input) ([]matched, error) {
	results := make([]matched, len(in.keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.calc.workers)
	for i, key := range in.keys {
		results[i].key = key
		if reason, ok := in.tainted[key]; ok {
			results[i].err = errors.New("malformed transaction in history: " + reason)
			continue
		}
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := MatchSecurity(gctx, in.securities[key], r.year.End())
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i].disposals, results[i].err = res.Disposals, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
