package cgt

import (
	"errors"
	"fmt"

	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// Sentinels matched by the typed errors below, for use with errors.Is.
var (
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrInsufficientPool     = errors.New("insufficient pool")
	ErrUnmatchedDisposal    = errors.New("unmatched disposal")
	ErrInvalidTaxYear       = errors.New("invalid tax year")
	ErrCorporateAction      = errors.New("corporate actions are not supported")
)

// MalformedTransactionError reports a transaction that breaks a basic
// invariant. It carries enough to find the row in the source export.
type MalformedTransactionError struct {
	ID     string
	Date   date.Date
	Kind   Kind
	Reason string
}

func (e *MalformedTransactionError) Error() string {
	return fmt.Sprintf("malformed %s transaction %q on %s: %s", e.Kind, e.ID, e.Date, e.Reason)
}

func (e *MalformedTransactionError) Is(target error) bool { return target == ErrMalformedTransaction }

// InsufficientPoolError is returned when a Section 104 pool holds fewer
// shares than a disposal asks for.
type InsufficientPoolError struct {
	Security  SecurityKey
	Date      date.Date
	Requested Quantity
	Available Quantity
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("pool for %s on %s holds %s shares, cannot dispose of %s", e.Security, e.Date, e.Available, e.Requested)
}

func (e *InsufficientPoolError) Is(target error) bool { return target == ErrInsufficientPool }

// UnmatchedDisposalError is returned when same-day, 30-day and pool
// acquisitions together cannot cover a sell.
type UnmatchedDisposalError struct {
	Security SecurityKey
	SellID   string
	Date     date.Date
	Quantity Quantity // sold
	Matched  Quantity // covered by same-day and 30-day buys
	Err      error    // the pool failure, if any
}

func (e *UnmatchedDisposalError) Error() string {
	return fmt.Sprintf("sell %q of %s %s on %s cannot be matched to acquisitions (%s matched by same-day/30-day rules): %v",
		e.SellID, e.Quantity, e.Security, e.Date, e.Matched, e.Err)
}

func (e *UnmatchedDisposalError) Is(target error) bool { return target == ErrUnmatchedDisposal }
func (e *UnmatchedDisposalError) Unwrap() error        { return e.Err }

// InvalidTaxYearError is returned before any processing when the requested
// tax year has no configured allowances.
type InvalidTaxYearError struct {
	Year      date.TaxYear
	Supported []date.TaxYear
}

func (e *InvalidTaxYearError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("tax year %s is not supported: no tax years configured", e.Year)
	}
	return fmt.Sprintf("tax year %s is not supported, want %s to %s", e.Year, e.Supported[0], e.Supported[len(e.Supported)-1])
}

func (e *InvalidTaxYearError) Is(target error) bool { return target == ErrInvalidTaxYear }

// StageError records the calculation stage a run failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }
