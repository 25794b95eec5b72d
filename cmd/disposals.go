package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/renderer"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/store"
)

// disposalsCmd holds the flags for the 'disposals' subcommand.
type disposalsCmd struct {
	year     string
	jsonl    bool
	database string
}

func (*disposalsCmd) Name() string     { return "disposals" }
func (*disposalsCmd) Synopsis() string { return "list the matched disposals of a tax year" }
func (*disposalsCmd) Usage() string {
	return `ukcgt disposals [-y <tax year>] [-jsonl] [-db <file>]

  Lists every disposal of the tax year with its matching rule, cost,
  proceeds and gain. With -db, the disposals saved by a previous
  'calculate' are read back instead of recomputed.
`
}

func (c *disposalsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", defaultYear(), "Tax year, as 2024-25 or 2024")
	f.BoolVar(&c.jsonl, "jsonl", false, "Print one flat JSON record per disposal")
	f.StringVar(&c.database, "db", "", "Read the disposals saved in this sqlite file")
}

func (c *disposalsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.database != "" {
		return c.fromDatabase(ctx)
	}

	_, summary, status := calculate(ctx, c.year)
	if status != subcommands.ExitSuccess {
		return status
	}
	if c.jsonl {
		if err := cgt.EncodeRecords(stdout, summary); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing disposals: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.DisposalsMarkdown(summary))
	return subcommands.ExitSuccess
}

func (c *disposalsCmd) fromDatabase(ctx context.Context) subcommands.ExitStatus {
	year, err := date.ParseTaxYear(c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing tax year: %v\n", err)
		return subcommands.ExitUsageError
	}
	db, err := store.Open(ctx, c.database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.database, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	records, err := db.Disposals(ctx, year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading disposals: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := writeJSONL(stdout, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing disposals: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
