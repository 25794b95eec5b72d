package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/renderer"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/store"
)

// calculateCmd holds the flags for the 'calculate' subcommand.
type calculateCmd struct {
	year     string
	json     bool
	database string
}

func (*calculateCmd) Name() string     { return "calculate" }
func (*calculateCmd) Synopsis() string { return "compute the capital gains and dividends of a tax year" }
func (*calculateCmd) Usage() string {
	return `ukcgt calculate [-y <tax year>] [-json] [-db <file>]

  Matches every disposal of the tax year against same day, 30 day and
  Section 104 acquisitions, splits each gain into its FX and share price
  parts, and totals dividends against the yearly allowances.

Usage Examples:
$ ukcgt -input export.jsonl calculate -y 2024-25
$ ukcgt calculate -y 2024 -json > summary.json
`
}

func (c *calculateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", defaultYear(), "Tax year, as 2024-25 or 2024")
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON")
	f.StringVar(&c.database, "db", "", "Also save the results in this sqlite file. Defaults to the configured database.")
}

func (c *calculateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, summary, status := calculate(ctx, c.year)
	if status != subcommands.ExitSuccess {
		return status
	}

	database := c.database
	if database == "" {
		database = cfg.Database
	}
	if database != "" {
		if err := save(ctx, database, summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving results to %q: %v\n", database, err)
			return subcommands.ExitFailure
		}
	}

	if c.json {
		if err := cgt.EncodeSummary(stdout, summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing summary: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.SummaryMarkdown(summary))
	return subcommands.ExitSuccess
}

func save(ctx context.Context, path string, summary *cgt.TaxYearSummary) error {
	db, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveSummary(ctx, summary)
}
