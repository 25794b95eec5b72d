package cgt

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DecodeTransactions reads JSONL transactions, one per line, dispatching on
// the "kind" property. Transactions are returned in input order; they are
// not validated here.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		tx, err := decodeTransaction(data)
		if err != nil {
			return nil, fmt.Errorf("parse error line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transactions: %w", err)
	}
	return txs, nil
}

func decodeTransaction(data []byte) (Transaction, error) {
	var identifier struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &identifier); err != nil {
		return nil, fmt.Errorf("not a correct json: %w", err)
	}

	var (
		tx  Transaction
		err error
	)
	switch Kind(strings.ToUpper(string(identifier.Kind))) {
	case KindBuy:
		var v Buy
		err = json.Unmarshal(data, &v)
		tx = v
	case KindSell:
		var v Sell
		err = json.Unmarshal(data, &v)
		tx = v
	case KindDividend:
		var v Dividend
		err = json.Unmarshal(data, &v)
		tx = v
	case KindCurrencyExchange:
		var v CurrencyExchange
		err = json.Unmarshal(data, &v)
		tx = v
	case KindFee:
		var v Fee
		err = json.Unmarshal(data, &v)
		tx = v
	case KindSplit:
		var v Split
		err = json.Unmarshal(data, &v)
		tx = v
	default:
		return nil, fmt.Errorf("unknown transaction kind %q", identifier.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s transaction: %w", identifier.Kind, err)
	}
	return normalizeKind(tx), nil
}

// normalizeKind upper-cases the kind read from the input.
func normalizeKind(tx Transaction) Transaction {
	k := Kind(strings.ToUpper(string(tx.What())))
	switch v := tx.(type) {
	case Buy:
		v.Kind = k
		return v
	case Sell:
		v.Kind = k
		return v
	case Dividend:
		v.Kind = k
		return v
	case CurrencyExchange:
		v.Kind = k
		return v
	case Fee:
		v.Kind = k
		return v
	case Split:
		v.Kind = k
		return v
	}
	return tx
}

// EncodeTransactions writes txs as JSONL.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		data, err := json.Marshal(tx)
		if err != nil {
			return fmt.Errorf("cannot marshal transaction %q: %w", tx.ID(), err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("cannot write transaction: %w", err)
		}
	}
	return nil
}

// EncodeSummary writes s as indented JSON.
func EncodeSummary(w io.Writer, s *TaxYearSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("cannot encode summary: %w", err)
	}
	return nil
}

// EncodeRecords writes the flat disposal records of s as JSONL.
func EncodeRecords(w io.Writer, s *TaxYearSummary) error {
	enc := json.NewEncoder(w)
	for _, rec := range s.Records() {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("cannot encode disposal %q: %w", rec.ID, err)
		}
	}
	return nil
}
