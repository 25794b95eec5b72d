// Package cgt computes UK Capital Gains Tax, dividend and currency gain
// figures for one taxpayer from a normalized list of brokerage transactions.
//
// The engine covers:
//   - Share identification: each sell is matched with buys on the same day,
//     then with buys in the following 30 days (bed and breakfast), and the
//     rest is costed from the Section 104 pool of the security.
//   - Section 104 pooling: one running holding per security, costed at the
//     weighted average of every pooled acquisition.
//   - FX decomposition: the gain of a disposal in a foreign currency is split
//     into the part due to the exchange rate and the part due to the price.
//   - Dividends and currency exchanges, aggregated per tax year on their own.
//
// All amounts are exact decimals; rounding to pennies happens only when a
// figure is written out. A calculation is a Run over an in-memory list of
// transactions, so concurrent runs never share state.
//
// Transactions are read from and written to JSONL; the `ukcgt` command line
// tool drives the engine.
package cgt
