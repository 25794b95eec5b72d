package cgt

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// MatchRule is the share identification rule that costed a disposal.
type MatchRule string

const (
	SameDay         MatchRule = "SAME_DAY"
	BedAndBreakfast MatchRule = "BED_AND_BREAKFAST_30DAY"
	Section104      MatchRule = "SECTION_104"
)

// order is the precedence of the rule.
func (r MatchRule) order() int {
	switch r {
	case SameDay:
		return 0
	case BedAndBreakfast:
		return 1
	default:
		return 2
	}
}

// disposalNamespace seeds the name-based disposal IDs.
var disposalNamespace = uuid.MustParse("3d0c7f52-9a41-4b8e-8f0d-6c2b1e7a9d35")

// MatchedLot is the part of a buy matched to a disposal by the same-day or
// 30-day rule.
type MatchedLot struct {
	BuyID    string    `json:"buy_id"`
	Date     date.Date `json:"date"`
	Quantity Quantity  `json:"quantity"`
	CostGBP  Money     `json:"cost_gbp"`
}

// Disposal is the part of a sell costed under one matching rule. A sell
// covered by several rules yields one Disposal per rule.
type Disposal struct {
	ID       string    `json:"id"`
	SellID   string    `json:"sell_id"`
	Date     date.Date `json:"date"`
	Security Security  `json:"security"`
	Rule     MatchRule `json:"rule"`
	Quantity Quantity  `json:"quantity"`

	Proceeds       Money `json:"proceeds"` // gross, trade currency
	ProceedsRate   Rate  `json:"proceeds_fx_rate"`
	ProceedsGBP    Money `json:"proceeds_gbp"`
	SellCommission Money `json:"sell_commission_gbp"`

	Cost            Money        `json:"cost"` // commission included, trade currency
	CostRate        Rate         `json:"cost_fx_rate"`
	CostGBP         Money        `json:"cost_gbp"`
	BuyCommission   Money        `json:"buy_commission_gbp"` // included in CostGBP
	AcquisitionDate date.Date    `json:"acquisition_date,omitzero"`
	Lots            []MatchedLot `json:"lots,omitempty"`

	FXGain    Money `json:"fx_gain_gbp"`
	CGTGain   Money `json:"cgt_gain_gbp"`
	TotalGain Money `json:"total_gain_gbp"`

	seq       int           // sell order within its security
	mixed     bool          // cost in more than one currency
	costParts []RatedAmount // matched buys' original costs at their own rates
}

func disposalID(key SecurityKey, sellID string, rule MatchRule) string {
	return uuid.NewSHA1(disposalNamespace, []byte(string(key)+"/"+sellID+"/"+string(rule))).String()
}

// decompose sets the FX, CGT and total gains. FX comes from the rate
// movement on the original cost; CGT is the rest of proceeds less cost; the
// total also deducts the sell commission.
func (d *Disposal) decompose(log *slog.Logger) {
	gain := d.ProceedsGBP.Sub(d.CostGBP)
	switch {
	case d.mixed && d.Rule == Section104:
		log.Warn("pool mixes currencies, fx gain set to zero", "disposal", d.ID, "sell", d.SellID, "security", d.Security.Key())
		d.FXGain = GBP(0)
	case d.mixed:
		log.Warn("matched buys mix currencies, fx gain set to zero", "disposal", d.ID, "sell", d.SellID, "rule", d.Rule)
		d.FXGain = GBP(0)
	case d.Cost.Currency() != "" && d.Cost.Currency() != d.Proceeds.Currency():
		log.Warn("cost and proceeds in different currencies, fx gain set to zero",
			"disposal", d.ID, "sell", d.SellID, "cost_currency", d.Cost.Currency(), "proceeds_currency", d.Proceeds.Currency())
		d.FXGain = GBP(0)
	case len(d.costParts) > 0:
		d.FXGain = lotsFXGainLoss(log, d.costParts, d.CostRate, d.ProceedsRate)
	default:
		d.FXGain = disposalFXGainLoss(log, d.Cost, d.CostRate, d.Proceeds, d.ProceedsRate)
	}
	d.CGTGain = gain.Sub(d.FXGain)
	d.TotalGain = gain.Sub(d.SellCommission)
}

// IsGain reports whether the disposal made a gain after commission.
func (d Disposal) IsGain() bool { return d.TotalGain.IsPositive() }
