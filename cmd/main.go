// Package cmd implements the ukcgt command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/config"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

// Commands are the subcommands of ukcgt, registered by the main package.
var Commands = []subcommands.Command{
	&calculateCmd{},
	&disposalsCmd{},
	&queryCmd{},
	&yearsCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var inputFile = flag.String("input", "transactions.jsonl", "Path to the transactions file (JSONL format), - for stdin")
var configFile = flag.String("config", "", "Path to the configuration file. Defaults to ukcgt.yaml if one exists.")
var rawMarkdown = flag.Bool("raw", false, "Print reports as plain markdown, without terminal styling")

// stdout receives the command output.
var stdout io.Writer = os.Stdout

// loadConfig reads the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	logger.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// decodeInput reads the transactions of the input file.
func decodeInput() ([]cgt.Transaction, error) {
	if *inputFile == "-" {
		return cgt.DecodeTransactions(os.Stdin)
	}
	f, err := os.Open(*inputFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cgt.DecodeTransactions(f)
}

// calculate runs the tax year calculation the way every reporting command
// needs it: config, input, then the calculator. A process calculates once, so
// it does not go through the service cache.
func calculate(ctx context.Context, year string) (*config.Config, *cgt.TaxYearSummary, subcommands.ExitStatus) {
	ty, err := date.ParseTaxYear(year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing tax year: %v\n", err)
		return nil, nil, subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	allowances, err := cfg.Allowances()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configured allowances: %v\n", err)
		return nil, nil, subcommands.ExitFailure
	}
	txs, err := decodeInput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions %q: %v\n", *inputFile, err)
		return nil, nil, subcommands.ExitFailure
	}

	calc := cgt.NewCalculator(allowances, cgt.WithWorkers(cfg.Workers))
	summary, err := calc.Calculate(ctx, txs, ty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating tax year %s: %v\n", ty, err)
		return nil, nil, subcommands.ExitFailure
	}
	return cfg, summary, subcommands.ExitSuccess
}

// defaultYear is the tax year that ended most recently.
func defaultYear() string { return date.TaxYearOf(date.Today()).Prev().String() }
