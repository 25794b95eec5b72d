package cmd

import (
	"flag"

	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/docs"
)

// Completion describes the command line of ukcgt for shell completion: the
// global flags, each subcommand and its flags.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		root.Sub[c.Name()] = &complete.Command{Flags: flagPredictors(fs)}
	}
	if topics, err := docs.AllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	m := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			m[f.Name] = predict.Files("*.jsonl")
		case "config":
			m[f.Name] = predict.Files("*.yaml")
		case "db":
			m[f.Name] = predict.Files("*.db")
		case "y":
			m[f.Name] = predict.Set(taxYears())
		default:
			if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
				m[f.Name] = predict.Nothing
			} else {
				m[f.Name] = predict.Something
			}
		}
	})
	return m
}

func taxYears() []string {
	var years []string
	for _, y := range cgt.DefaultAllowances().Years() {
		years = append(years, y.String())
	}
	return years
}
