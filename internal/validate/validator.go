package validate

import (
	"time"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/stage"
	"pdf2ofx/internal/statement"
)

// DefaultTolerance is the permitted absolute difference between the signed
// amount and the unsigned debit/credit column value.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Issue codes.
const (
	CodeMissingPostedAt  = "missing_posted_at"
	CodeInvalidPostedAt  = "invalid_posted_at"
	CodeMissingAmount    = "missing_amount"
	CodeMissingFITID     = "missing_fitid"
	CodeDuplicateFITID   = "duplicate_fitid"
	CodeDebitCreditBoth  = "debit_credit_both_set"
	CodeDebitMismatch    = "amount_debit_mismatch"
	CodeCreditMismatch   = "amount_credit_mismatch"
	CodePeriodDerived    = "period_derived"
	CodePeriodInvalid    = "period_invalid_derived"
	CodeOutsidePeriod    = "tx_outside_period"
	CodePostedAtFallback = "posted_at_fallback"
)

// Result is the validator output: the validated statement (a new value; the
// input is never mutated) and the ordered issue list.
type Result struct {
	Statement *statement.Statement
	Issues    []statement.Issue
}

// Statement validates a canonical statement against the contract using
// DefaultTolerance.
func Statement(st *statement.Statement) (Result, error) {
	return WithTolerance(st, DefaultTolerance)
}

// WithTolerance validates with an explicit amount tolerance. A statement
// with zero surviving transactions yields a VALIDATE stage failure wrapping
// stage.ErrNoTransactions.
func WithTolerance(st *statement.Statement, tolerance decimal.Decimal) (Result, error) {
	out := st.Clone()
	rec := newRecorder()

	if len(out.Transactions) == 0 {
		return Result{}, noTransactions("statement has no transactions")
	}

	seen := make(map[string]struct{}, len(out.Transactions))
	kept := out.Transactions[:0]
	var dates []time.Time

	for i := range out.Transactions {
		tx := out.Transactions[i]

		if tx.PostedAt == "" {
			rec.add(statement.SeverityError, CodeMissingPostedAt, "transaction missing posted_at", tx.FITID)
			continue
		}
		postedAt, err := time.Parse("2006-01-02", tx.PostedAt)
		if err != nil {
			rec.add(statement.SeverityError, CodeInvalidPostedAt, "transaction has invalid posted_at", tx.FITID)
			continue
		}
		if tx.Amount == nil {
			rec.add(statement.SeverityError, CodeMissingAmount, "transaction missing amount", tx.FITID)
			continue
		}
		if tx.FITID == "" {
			rec.add(statement.SeverityError, CodeMissingFITID, "transaction missing fitid", "")
			continue
		}
		if _, dup := seen[tx.FITID]; dup {
			rec.add(statement.SeverityError, CodeDuplicateFITID, "transaction fitid is not unique", tx.FITID)
			continue
		}
		seen[tx.FITID] = struct{}{}

		checkCoherence(&rec, tx, tolerance)

		if tx.PostedAtSource != "" && tx.PostedAtSource != statement.SourceOperation {
			rec.add(statement.SeverityWarning, CodePostedAtFallback, "posted_at fallback used (operation date missing)", tx.FITID)
		}
		if tx.TrnType == "" {
			if tx.Amount.Sign() >= 0 {
				tx.TrnType = "CREDIT"
			} else {
				tx.TrnType = "DEBIT"
			}
		}

		dates = append(dates, postedAt)
		kept = append(kept, tx)
	}

	out.Transactions = kept
	if len(kept) == 0 {
		return Result{}, noTransactions("no usable transactions after validation")
	}

	derivePeriod(&rec, out, kept, dates)
	return Result{Statement: out, Issues: rec.ordered()}, nil
}

// checkCoherence verifies the signed amount against the unsigned column
// values. Both columns nonzero is warned and kept: dropping would silently
// discard money movement the reviewer can fix interactively.
func checkCoherence(rec *recorder, tx statement.Transaction, tolerance decimal.Decimal) {
	debitSet := tx.Debit != nil && !tx.Debit.IsZero()
	creditSet := tx.Credit != nil && !tx.Credit.IsZero()

	if debitSet && creditSet {
		rec.add(statement.SeverityWarning, CodeDebitCreditBoth, "transaction has both debit and credit amounts", tx.FITID)
	}
	if debitSet {
		expected := tx.Debit.Abs().Neg()
		if tx.Amount.Sub(expected).Abs().GreaterThan(tolerance) {
			rec.add(statement.SeverityWarning, CodeDebitMismatch, "signed amount does not match debit amount", tx.FITID)
		}
	}
	if creditSet {
		expected := tx.Credit.Abs()
		if tx.Amount.Sub(expected).Abs().GreaterThan(tolerance) {
			rec.add(statement.SeverityWarning, CodeCreditMismatch, "signed amount does not match credit amount", tx.FITID)
		}
	}
}

func derivePeriod(rec *recorder, out *statement.Statement, kept []statement.Transaction, dates []time.Time) {
	minDate, maxDate := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}

	start, end := out.Period.StartDate, out.Period.EndDate
	if start == "" || end == "" {
		out.Period.StartDate = minDate.Format("2006-01-02")
		out.Period.EndDate = maxDate.Format("2006-01-02")
		rec.addCount(statement.SeverityWarning, CodePeriodDerived, "period missing; derived from transaction dates", "", 0)
		return
	}

	startDate, errStart := time.Parse("2006-01-02", start)
	endDate, errEnd := time.Parse("2006-01-02", end)
	if errStart != nil || errEnd != nil {
		out.Period.StartDate = minDate.Format("2006-01-02")
		out.Period.EndDate = maxDate.Format("2006-01-02")
		rec.addCount(statement.SeverityWarning, CodePeriodInvalid, "period invalid; derived from transaction dates", "", 0)
		return
	}

	for i, d := range dates {
		if d.Before(startDate) || d.After(endDate) {
			rec.add(statement.SeverityWarning, CodeOutsidePeriod, "transaction outside statement period", kept[i].FITID)
		}
	}
}

func noTransactions(message string) error {
	return &stage.Failure{
		Stage:   stage.Validate,
		Message: message,
		Hint:    "review the raw payload; extraction may have failed on this document",
		Err:     stage.ErrNoTransactions,
	}
}

// recorder aggregates issues by (severity, code) while preserving
// first-seen order.
type recorder struct {
	order  []string
	issues map[string]*statement.Issue
}

func newRecorder() recorder {
	return recorder{issues: make(map[string]*statement.Issue)}
}

func (r *recorder) add(sev statement.Severity, code, reason, fitid string) {
	r.addCount(sev, code, reason, fitid, 1)
}

func (r *recorder) addCount(sev statement.Severity, code, reason, fitid string, count int) {
	key := string(sev) + "|" + code
	issue, ok := r.issues[key]
	if !ok {
		issue = &statement.Issue{Severity: sev, Code: code, Reason: reason}
		r.issues[key] = issue
		r.order = append(r.order, key)
	}
	if fitid != "" {
		issue.FITIDs = append(issue.FITIDs, fitid)
	}
	issue.Count += count
}

func (r *recorder) ordered() []statement.Issue {
	out := make([]statement.Issue, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.issues[key])
	}
	return out
}
