package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/logger"
)

// printMarkdown prints md styled for the terminal, or as is with -raw.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(160))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	logger.L.Warn("cannot style markdown, printing it raw", "error", err)
	fmt.Fprint(stdout, md)
}

// writeJSONL writes each value on its own line.
func writeJSONL[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
