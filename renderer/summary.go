// Package renderer formats tax year summaries as markdown.
package renderer

import (
	"fmt"
	"io"
	"strings"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
)

// SummaryMarkdown renders the whole report of a tax year.
func SummaryMarkdown(s *cgt.TaxYearSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tax Year %s\n\n", s.TaxYear)
	fmt.Fprintf(&b, "From %s to %s\n\n", s.TaxYear.Start(), s.TaxYear.End())
	if !s.Complete() {
		fmt.Fprint(&b, "**Incomplete**: some securities could not be processed, see below.\n\n")
	}

	fmt.Fprint(&b, "## Capital Gains\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Disposals | %d |\n", s.DisposalCount)
	fmt.Fprintf(&b, "| Disposal proceeds | %s |\n", s.Proceeds)
	fmt.Fprintf(&b, "| Allowable costs | %s |\n", s.AllowableCosts)
	fmt.Fprintf(&b, "| Gains | %s |\n", s.Gains)
	fmt.Fprintf(&b, "| Losses | %s |\n", s.Losses)
	fmt.Fprintf(&b, "| Net gain | %s |\n", s.NetGain.SignedString())
	fmt.Fprintf(&b, "| Annual exemption used | %s of %s |\n", s.ExemptionUsed, s.AnnualExemption)
	fmt.Fprintf(&b, "| **Taxable gain** | **%s** |\n", s.TaxableGain)
	if s.NetGainBefore != nil && s.NetGainAfter != nil {
		fmt.Fprintf(&b, "| Net gain before %s | %s |\n", s.RateChangeDate, s.NetGainBefore.SignedString())
		fmt.Fprintf(&b, "| Net gain from %s | %s |\n", s.RateChangeDate, s.NetGainAfter.SignedString())
	}
	fmt.Fprintf(&b, "| of which FX | %s |\n", s.FXGain.SignedString())
	fmt.Fprintf(&b, "| of which share price | %s |\n", s.CGTGain.SignedString())
	fmt.Fprintln(&b)

	fmt.Fprint(&b, "## Dividends\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Gross | %s |\n", s.DividendsGross)
	fmt.Fprintf(&b, "| Withholding tax | %s |\n", s.DividendWithholding)
	fmt.Fprintf(&b, "| Net | %s |\n", s.DividendsNet)
	fmt.Fprintf(&b, "| Allowance used | %s of %s |\n", s.DividendAllowanceUsed, s.DividendAllowance)
	fmt.Fprintf(&b, "| **Taxable dividends** | **%s** |\n", s.TaxableDividends)
	fmt.Fprintln(&b)

	if !s.CurrencyGain.IsZero() || len(s.CurrencyGains) > 0 {
		fmt.Fprintf(&b, "Currency exchange gain: %s\n\n", s.CurrencyGain.SignedString())
	}
	if !s.Fees.IsZero() {
		fmt.Fprintf(&b, "Standalone fees: %s\n\n", s.Fees)
	}

	writeDisposals(&b, s.Disposals)
	writeDividends(&b, s.Dividends)
	writeCurrencyGains(&b, s.CurrencyGains)
	writeProblems(&b, s)
	return b.String()
}

// DisposalsMarkdown renders the disposals table only.
func DisposalsMarkdown(s *cgt.TaxYearSummary) string {
	var b strings.Builder
	writeDisposals(&b, s.Disposals)
	return b.String()
}

func writeDisposals(w io.Writer, ds []cgt.Disposal) {
	p := header(func(w io.Writer) {
		fmt.Fprint(w, "## Disposals\n\n")
		fmt.Fprintln(w, "| Date | Security | Rule | Quantity | Proceeds | Cost | FX | CGT | Gain | Acquired |")
		fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|:---|")
	})
	for _, d := range ds {
		p.printHeader(w)
		acquired := ""
		if !d.AcquisitionDate.IsZero() {
			acquired = d.AcquisitionDate.String()
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			d.Date, d.Security.Symbol, ruleName(d.Rule), d.Quantity,
			d.ProceedsGBP, d.CostGBP.Add(d.SellCommission),
			d.FXGain.SignedString(), d.CGTGain.SignedString(), d.TotalGain.SignedString(), acquired)
	}
	p.printFooter(w)
}

func writeDividends(w io.Writer, ds []cgt.DividendEvent) {
	p := header(func(w io.Writer) {
		fmt.Fprint(w, "## Dividend Payments\n\n")
		fmt.Fprintln(w, "| Date | Security | Gross | Rate | Gross (GBP) | Withheld (GBP) | Net (GBP) |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|---:|---:|---:|")
	})
	for _, d := range ds {
		p.printHeader(w)
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			d.Date, d.Security.Symbol, d.Gross, d.FXRate.Round(4), d.GrossGBP, d.WithholdingGBP, d.NetGBP)
	}
	p.printFooter(w)
}

func writeCurrencyGains(w io.Writer, gs []cgt.CurrencyGain) {
	p := header(func(w io.Writer) {
		fmt.Fprint(w, "## Currency Exchanges\n\n")
		fmt.Fprintln(w, "| Date | Amount | Rate | Acquired at | Gain |")
		fmt.Fprintln(w, "|:---|---:|---:|---:|---:|")
	})
	for _, g := range gs {
		p.printHeader(w)
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			g.Date, g.Amount, g.CurrentRate.Round(4), g.HistoricalRate.Round(4), g.GainGBP.SignedString())
	}
	p.printFooter(w)
}

func writeProblems(w io.Writer, s *cgt.TaxYearSummary) {
	p := header(func(w io.Writer) { fmt.Fprint(w, "## Incomplete Securities\n\n") })
	for _, inc := range s.Incomplete {
		p.printHeader(w)
		fmt.Fprintf(w, "- %s: %s\n", inc.Security, escape(inc.Reason))
	}
	p.printFooter(w)

	p = header(func(w io.Writer) { fmt.Fprint(w, "## Rejected Transactions\n\n") })
	for _, r := range s.Rejected {
		p.printHeader(w)
		fmt.Fprintf(w, "- %s %s %q: %s\n", r.Date, r.Kind, r.ID, escape(r.Reason))
	}
	p.printFooter(w)
}

func ruleName(r cgt.MatchRule) string {
	switch r {
	case cgt.SameDay:
		return "Same day"
	case cgt.BedAndBreakfast:
		return "30 days"
	case cgt.Section104:
		return "S104 pool"
	default:
		return string(r)
	}
}

// escape keeps free text from breaking the markdown layout.
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ", "*", `\*`, "_", `\_`).Replace(s)
}
