package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/subcommands"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
)

// queryCmd holds the flags for the 'query' subcommand.
type queryCmd struct {
	year string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "extract values from a tax year summary with JSONPath" }
func (*queryCmd) Usage() string {
	return `ukcgt query [-y <tax year>] <jsonpath>...

  Evaluates each JSONPath expression against the JSON summary of the tax
  year and prints the results, one per line.

Usage Examples:
$ ukcgt query '$.taxable_gain_gbp.amount'
$ ukcgt query -y 2024-25 '$.disposals[?(@.rule == "BED_AND_BREAKFAST_30DAY")].id'
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", defaultYear(), "Tax year, as 2024-25 or 2024")
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "query requires at least one JSONPath expression")
		return subcommands.ExitUsageError
	}

	_, summary, status := calculate(ctx, c.year)
	if status != subcommands.ExitSuccess {
		return status
	}

	doc, err := summaryDocument(summary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding summary: %v\n", err)
		return subcommands.ExitFailure
	}

	enc := json.NewEncoder(stdout)
	for _, path := range f.Args() {
		val, err := jsonpath.Get(path, doc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error evaluating %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		if err := enc.Encode(val); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// summaryDocument is the summary as generic JSON values, the way jsonpath
// walks them.
func summaryDocument(s *cgt.TaxYearSummary) (any, error) {
	var b bytes.Buffer
	if err := cgt.EncodeSummary(&b, s); err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b.Bytes(), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
