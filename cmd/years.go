package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

type yearsCmd struct{}

func (*yearsCmd) Name() string     { return "years" }
func (*yearsCmd) Synopsis() string { return "list the supported tax years and their allowances" }
func (*yearsCmd) Usage() string {
	return `ukcgt years

  Lists the tax years ukcgt can calculate, with the annual exempt amount,
  the dividend allowance and the date CGT rates changed, if any. Years
  can be added or overridden in the configuration file.
`
}

func (c *yearsCmd) SetFlags(f *flag.FlagSet) {}

func (c *yearsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	table, err := cfg.Allowances()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configured allowances: %v\n", err)
		return subcommands.ExitFailure
	}

	var b strings.Builder
	fmt.Fprint(&b, "# Supported Tax Years\n\n")
	fmt.Fprintln(&b, "| Tax Year | From | To | Annual Exemption | Dividend Allowance | Rate Change |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|:---|")
	for _, y := range table.Years() {
		a := table[y]
		change := ""
		if !a.RateChangeDate.IsZero() {
			change = a.RateChangeDate.String()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", y, y.Start(), y.End(), a.AnnualExemption, a.DividendAllowance, change)
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
