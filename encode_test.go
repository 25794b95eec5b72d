package cgt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

const transactionsJSONL = `{"kind":"BUY","id":"b1","date":"2024-05-01","security":{"symbol":"AAPL","exchange":"NASDAQ"},"quantity":"100","price":"10","currency":"USD","fx_rate":"0.75","commission":"0"}

{"kind":"sell","id":"s1","date":"2024-09-01","security":{"symbol":"AAPL","exchange":"NASDAQ"},"quantity":-50,"price":14,"currency":"USD","fx_rate":0.8,"commission":1}
{"kind":"DIVIDEND","id":"d1","date":"2024-08-15","security":{"symbol":"AAPL","exchange":"NASDAQ"},"gross":"25","withholding_tax":"3.75","currency":"USD","fx_rate":"0.78"}
{"kind":"CURRENCY_EXCHANGE","id":"x1","date":"2024-04-10","from_currency":"GBP","from_amount":"750","from_fx_rate":"1","to_currency":"USD","to_amount":"1000","to_fx_rate":"0.75"}
{"kind":"FEE","id":"f1","date":"2024-12-31","amount":"5","currency":"GBP","fx_rate":"1"}
{"kind":"SPLIT","id":"x2","date":"2025-01-02","security":{"symbol":"AAPL","exchange":"NASDAQ"},"num":4,"den":1}
`

func TestDecodeTransactions(t *testing.T) {
	txs, err := DecodeTransactions(strings.NewReader(transactionsJSONL))
	if err != nil {
		t.Fatalf("DecodeTransactions() error = %v", err)
	}
	wantKinds := []Kind{KindBuy, KindSell, KindDividend, KindCurrencyExchange, KindFee, KindSplit}
	if len(txs) != len(wantKinds) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(wantKinds))
	}
	for i, tx := range txs {
		if tx.What() != wantKinds[i] {
			t.Errorf("transaction %d: What() = %s, want %s", i, tx.What(), wantKinds[i])
		}
		if err := tx.Validate(); err != nil {
			t.Errorf("transaction %d: Validate() error = %v", i, err)
		}
	}

	s, ok := txs[1].(Sell)
	if !ok {
		t.Fatalf("transaction 1 is a %T, want Sell", txs[1])
	}
	if !s.Shares().Equal(Q(50)) || !s.Fees().Equal(USD(1)) || !s.FXRate.Equal(R(0.8)) {
		t.Errorf("sell = %+v", s)
	}
	if d := txs[2].(Dividend); !d.Withholding.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("dividend withholding = %s, want 3.75", d.Withholding)
	}
}

func TestTransactions_RoundTrip(t *testing.T) {
	txs, err := DecodeTransactions(strings.NewReader(transactionsJSONL))
	if err != nil {
		t.Fatal(err)
	}
	var first, second bytes.Buffer
	if err := EncodeTransactions(&first, txs); err != nil {
		t.Fatal(err)
	}
	again, err := DecodeTransactions(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("cannot decode encoded transactions: %v\n%s", err, first.String())
	}
	if err := EncodeTransactions(&second, again); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("round trip changed the transactions:\n%s\nwant\n%s", second.String(), first.String())
	}
}

func TestDecodeTransactions_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"not json", "{\"kind\":\"BUY\"}\nnope\n", "line 2"},
		{"unknown kind", `{"kind":"TRANSFER","id":"t1"}`, `unknown transaction kind "TRANSFER"`},
		{"bad field", `{"kind":"BUY","id":"b1","date":"2024-13-01"}`, "invalid BUY transaction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransactions(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("DecodeTransactions() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestEncodeRecords(t *testing.T) {
	s := calculate(t, ty2024, scenario1()...)
	var b bytes.Buffer
	if err := EncodeRecords(&b, s); err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := json.Unmarshal(b.Bytes(), &rec); err != nil {
		t.Fatalf("invalid record %q: %v", b.String(), err)
	}
	for k, want := range map[string]any{
		"symbol":               "AAPL",
		"matching_rule":        "SECTION_104",
		"cost_original_amount": "1700",
		"cost_fx_rate":         "0.75",
		"proceeds_gbp":         "1680",
		"fx_gain_loss_gbp":     "85",
		"cgt_gain_loss_gbp":    "320",
		"total_gain_loss_gbp":  "405",
	} {
		if rec[k] != want {
			t.Errorf("record[%q] = %v, want %v", k, rec[k], want)
		}
	}
	if _, ok := rec["acquisition_date"]; ok {
		t.Error("pool disposal record has an acquisition date")
	}
}
