package renderer

import (
	"fmt"
	"io"
)

// sectionPrinter prints a section header only once a row is about to be
// written, so empty sections are left out.
type sectionPrinter struct {
	headerFunc func(io.Writer)
	printed    bool
}

func header(f func(io.Writer)) *sectionPrinter { return &sectionPrinter{headerFunc: f} }

// printHeader prints the header on the first call only.
func (p *sectionPrinter) printHeader(w io.Writer) {
	if p.printed {
		return
	}
	p.printed = true
	p.headerFunc(w)
}

// printFooter ends the section with a blank line, if it was started.
func (p *sectionPrinter) printFooter(w io.Writer) {
	if p.printed {
		fmt.Fprintln(w)
	}
}
