package cgt

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// Kind discriminates transaction variants.
type Kind string

const (
	KindBuy              Kind = "BUY"
	KindSell             Kind = "SELL"
	KindDividend         Kind = "DIVIDEND"
	KindCurrencyExchange Kind = "CURRENCY_EXCHANGE"
	KindFee              Kind = "FEE"
	KindSplit            Kind = "SPLIT"
)

// Transaction is one normalized row of a brokerage export.
type Transaction interface {
	ID() string       // stable identifier, used for deterministic output
	What() Kind       // variant
	When() date.Date  // trade or payment date
	Validate() error  // *MalformedTransactionError on failure
}

type baseTx struct {
	Kind Kind      `json:"kind"`
	TxID string    `json:"id"`
	Date date.Date `json:"date"`
	Memo string    `json:"memo,omitempty"`
}

func (t baseTx) ID() string      { return t.TxID }
func (t baseTx) What() Kind      { return t.Kind }
func (t baseTx) When() date.Date { return t.Date }

func (t baseTx) malformed(format string, args ...any) error {
	return &MalformedTransactionError{ID: t.TxID, Date: t.Date, Kind: t.Kind, Reason: fmt.Sprintf(format, args...)}
}

func (t baseTx) validate() error {
	if strings.TrimSpace(t.TxID) == "" {
		return t.malformed("transaction id is missing")
	}
	if t.Date.IsZero() {
		return t.malformed("transaction date is missing")
	}
	return nil
}

// secTx is the part shared by transactions about a single security.
type secTx struct {
	baseTx
	Security Security `json:"security"`
}

func (t secTx) security() Security { return t.Security }

func (t secTx) validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if err := t.Security.Validate(); err != nil {
		return t.malformed("%v", err)
	}
	return nil
}

// validateRate enforces a known currency and a positive rate, exactly 1 for GBP.
func (t baseTx) validateRate(currency string, rate Rate) error {
	if !KnownCurrency(currency) {
		return t.malformed("unknown currency %q", currency)
	}
	if !rate.IsValid() {
		return t.malformed("fx rate must be positive, got %s", rate)
	}
	if currency == money.GBP && !rate.IsOne() {
		return t.malformed("fx rate of a GBP amount must be 1, got %s", rate)
	}
	return nil
}

// SecurityOf returns the security tx is about, if any.
func SecurityOf(tx Transaction) (Security, bool) {
	switch v := tx.(type) {
	case interface{ security() Security }:
		return v.security(), true
	case Fee:
		if v.Security != nil {
			return *v.Security, true
		}
	}
	return Security{}, false
}

// trade holds the pricing of a buy or a sell.
type trade struct {
	Quantity   Quantity        `json:"quantity"`
	Price      decimal.Decimal `json:"price"` // per share, original currency
	Currency   string          `json:"currency"`
	FXRate     Rate            `json:"fx_rate"`
	Commission decimal.Decimal `json:"commission"` // original currency
}

// Shares is the unsigned number of shares traded.
func (t trade) Shares() Quantity { return t.Quantity.Abs() }

// Gross is shares times price, in the original currency.
func (t trade) Gross() Money { return M(t.Price, t.Currency).Mul(t.Shares()) }

// Fees is the commission in the original currency.
func (t trade) Fees() Money { return M(t.Commission, t.Currency) }

func (t trade) validate(b baseTx) error {
	if err := b.validateRate(t.Currency, t.FXRate); err != nil {
		return err
	}
	if t.Price.IsNegative() {
		return b.malformed("price must not be negative, got %s", t.Price)
	}
	if t.Commission.IsNegative() {
		return b.malformed("commission must not be negative, got %s", t.Commission)
	}
	return nil
}

// Buy is an acquisition of shares.
type Buy struct {
	secTx
	trade
}

// NewBuy creates a Buy of quantity shares at price per share.
func NewBuy(id string, on date.Date, sec Security, quantity Quantity, price Money, rate Rate, commission decimal.Decimal) Buy {
	return Buy{
		secTx: secTx{baseTx: baseTx{Kind: KindBuy, TxID: id, Date: on}, Security: sec},
		trade: trade{Quantity: quantity, Price: price.Decimal(), Currency: price.Currency(), FXRate: rate, Commission: commission},
	}
}

// Cost is the allowable cost in the original currency: gross plus commission.
func (t Buy) Cost() Money { return t.Gross().Add(t.Fees()) }

// CostGBP is Cost converted at the buy's rate.
func (t Buy) CostGBP() Money { return t.Cost().Convert(t.FXRate) }

func (t Buy) Validate() error {
	if err := t.secTx.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return t.malformed("buy quantity must be positive, got %s", t.Quantity)
	}
	return t.trade.validate(t.baseTx)
}

// Sell is a disposal of shares. Its quantity is negative.
type Sell struct {
	secTx
	trade
}

// NewSell creates a Sell of quantity shares; the sign of quantity is ignored
// and the stored quantity is negative.
func NewSell(id string, on date.Date, sec Security, quantity Quantity, price Money, rate Rate, commission decimal.Decimal) Sell {
	return Sell{
		secTx: secTx{baseTx: baseTx{Kind: KindSell, TxID: id, Date: on}, Security: sec},
		trade: trade{Quantity: quantity.Abs().Neg(), Price: price.Decimal(), Currency: price.Currency(), FXRate: rate, Commission: commission},
	}
}

func (t Sell) Validate() error {
	if err := t.secTx.validate(); err != nil {
		return err
	}
	if !t.Quantity.IsNegative() {
		return t.malformed("sell quantity must be negative, got %s", t.Quantity)
	}
	return t.trade.validate(t.baseTx)
}

// Dividend is a cash distribution on a security.
type Dividend struct {
	secTx
	Gross       decimal.Decimal `json:"gross"`
	Withholding decimal.Decimal `json:"withholding_tax"`
	Currency    string          `json:"currency"`
	FXRate      Rate            `json:"fx_rate"`
}

func NewDividend(id string, on date.Date, sec Security, gross, withholding Money, rate Rate) Dividend {
	return Dividend{
		secTx:       secTx{baseTx: baseTx{Kind: KindDividend, TxID: id, Date: on}, Security: sec},
		Gross:       gross.Decimal(),
		Withholding: withholding.Decimal(),
		Currency:    gross.Currency(),
		FXRate:      rate,
	}
}

func (t Dividend) Validate() error {
	if err := t.secTx.validate(); err != nil {
		return err
	}
	if err := t.validateRate(t.Currency, t.FXRate); err != nil {
		return err
	}
	if !t.Gross.IsPositive() {
		return t.malformed("dividend gross amount must be positive, got %s", t.Gross)
	}
	if t.Withholding.IsNegative() || t.Withholding.GreaterThan(t.Gross) {
		return t.malformed("withholding tax must be between 0 and %s, got %s", t.Gross, t.Withholding)
	}
	return nil
}

// CurrencyExchange converts cash from one currency to another.
type CurrencyExchange struct {
	baseTx
	FromCurrency string          `json:"from_currency"`
	FromAmount   decimal.Decimal `json:"from_amount"`
	FromRate     Rate            `json:"from_fx_rate"`
	ToCurrency   string          `json:"to_currency"`
	ToAmount     decimal.Decimal `json:"to_amount"`
	ToRate       Rate            `json:"to_fx_rate"`
}

func NewCurrencyExchange(id string, on date.Date, from Money, fromRate Rate, to Money, toRate Rate) CurrencyExchange {
	return CurrencyExchange{
		baseTx:       baseTx{Kind: KindCurrencyExchange, TxID: id, Date: on},
		FromCurrency: from.Currency(),
		FromAmount:   from.Decimal(),
		FromRate:     fromRate,
		ToCurrency:   to.Currency(),
		ToAmount:     to.Decimal(),
		ToRate:       toRate,
	}
}

func (t CurrencyExchange) From() Money { return M(t.FromAmount, t.FromCurrency) }
func (t CurrencyExchange) To() Money   { return M(t.ToAmount, t.ToCurrency) }

func (t CurrencyExchange) Validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if err := t.validateRate(t.FromCurrency, t.FromRate); err != nil {
		return err
	}
	if err := t.validateRate(t.ToCurrency, t.ToRate); err != nil {
		return err
	}
	if t.FromCurrency == t.ToCurrency {
		return t.malformed("exchange from %s to itself", t.FromCurrency)
	}
	if !t.FromAmount.IsPositive() || !t.ToAmount.IsPositive() {
		return t.malformed("exchanged amounts must be positive, got %s and %s", t.FromAmount, t.ToAmount)
	}
	return nil
}

// Fee is a standalone charge not attached to a trade.
type Fee struct {
	baseTx
	Security *Security      `json:"security,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	FXRate   Rate            `json:"fx_rate"`
}

func NewFee(id string, on date.Date, amount Money, rate Rate) Fee {
	return Fee{
		baseTx:   baseTx{Kind: KindFee, TxID: id, Date: on},
		Amount:   amount.Decimal(),
		Currency: amount.Currency(),
		FXRate:   rate,
	}
}

func (t Fee) AmountGBP() Money { return M(t.Amount, t.Currency).Convert(t.FXRate) }

func (t Fee) Validate() error {
	if err := t.baseTx.validate(); err != nil {
		return err
	}
	if t.Security != nil {
		if err := t.Security.Validate(); err != nil {
			return t.malformed("%v", err)
		}
	}
	if err := t.validateRate(t.Currency, t.FXRate); err != nil {
		return err
	}
	if t.Amount.IsNegative() {
		return t.malformed("fee must not be negative, got %s", t.Amount)
	}
	return nil
}

// Split is a share split or consolidation. The engine does not apply
// corporate actions: a security with a Split is reported incomplete.
type Split struct {
	secTx
	Numerator   int64 `json:"num"`
	Denominator int64 `json:"den"`
}

func NewSplit(id string, on date.Date, sec Security, num, den int64) Split {
	return Split{
		secTx:       secTx{baseTx: baseTx{Kind: KindSplit, TxID: id, Date: on}, Security: sec},
		Numerator:   num,
		Denominator: den,
	}
}

func (t Split) Validate() error {
	if err := t.secTx.validate(); err != nil {
		return err
	}
	if t.Numerator <= 0 || t.Denominator <= 0 {
		return t.malformed("split ratio must be positive, got %d:%d", t.Numerator, t.Denominator)
	}
	return nil
}
