package sanity

import "github.com/shopspring/decimal"

// Status is the reconciliation outcome for one diagnostic run.
type Status string

const (
	StatusOK      Status = "OK"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
	StatusSkipped Status = "SKIPPED"
)

// Quality labels over the 0–100 score.
const (
	LabelGood     = "GOOD"     // 80–100
	LabelDegraded = "DEGRADED" // 50–79
	LabelPoor     = "POOR"     // <50
)

// Deduction itemizes one quality-score penalty.
type Deduction struct {
	Reason string
	Points int
}

// Result is the immutable outcome of one diagnostic run. Skipped and
// ForcedAccept are set by the review layer on terminal transitions; the
// engine itself always leaves them false.
type Result struct {
	Name           string
	PeriodStart    string
	PeriodEnd      string
	ExtractedCount int
	KeptCount      int
	DroppedCount   int

	TotalCredits decimal.Decimal
	TotalDebits  decimal.Decimal // sum of negative amounts, itself negative
	NetMovement  decimal.Decimal

	StartingBalance *decimal.Decimal
	EndingBalance   *decimal.Decimal
	ReconciledEnd   *decimal.Decimal
	Delta           *decimal.Decimal
	Reconciliation  Status

	QualityScore int
	QualityLabel string
	Deductions   []Deduction
	Warnings     []string

	Skipped      bool
	ForcedAccept bool
}

// CleanForDeletion reports whether a terminal result permits auto-deleting
// the raw artifact, and if not, the specific retention reason. Only a fully
// clean confirmation (reconciliation OK, GOOD quality, neither skipped nor
// force-accepted) releases an extraction artifact.
func (r Result) CleanForDeletion() (bool, string) {
	switch {
	case r.Skipped:
		return false, "review was skipped; extraction result unconfirmed"
	case r.ForcedAccept:
		return false, "accepted despite reconciliation error"
	case r.Reconciliation != StatusOK:
		return false, "reconciliation status " + string(r.Reconciliation)
	case r.QualityLabel != LabelGood:
		return false, "quality " + r.QualityLabel
	default:
		return true, ""
	}
}
