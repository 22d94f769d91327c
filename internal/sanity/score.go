package sanity

import "fmt"

// Score penalties. Warning deductions count distinct categories and cap at
// maxWarningPenalty total.
const (
	penaltyReconciliationError = 60
	penaltyBalancesMissing     = 25
	penaltyHighDropRate        = 15
	penaltyPerWarning          = 10
	maxWarningPenalty          = 30
	penaltyLowConfidence       = 15
)

// highDropRate is the dropped fraction above which the drop-rate penalty
// applies.
const highDropRate = 0.10

// ScoreInput carries the signals the quality score reads.
type ScoreInput struct {
	Reconciliation  Status
	BalancesMissing bool
	DropRatio       float64
	WarningCount    int
	LowConfidence   bool
}

// ComputeScore derives the 0–100 quality score, its label, and the itemized
// deductions. Adding a warning category never increases the score.
func ComputeScore(in ScoreInput) (score int, label string, deductions []Deduction) {
	score = 100
	deduct := func(reason string, points int) {
		score -= points
		deductions = append(deductions, Deduction{Reason: reason, Points: -points})
	}

	if in.Reconciliation == StatusError {
		deduct("Reconciliation error", penaltyReconciliationError)
	}
	if in.BalancesMissing {
		deduct("Balances missing", penaltyBalancesMissing)
	}
	if in.DropRatio > highDropRate {
		deduct(fmt.Sprintf("High drop rate (%.0f%%)", in.DropRatio*100), penaltyHighDropRate)
	}
	if in.WarningCount > 0 {
		penalty := in.WarningCount * penaltyPerWarning
		if penalty > maxWarningPenalty {
			penalty = maxWarningPenalty
		}
		deduct(fmt.Sprintf("%d validation warning(s)", in.WarningCount), penalty)
	}
	if in.LowConfidence {
		deduct("Low extraction confidence", penaltyLowConfidence)
	}

	if score < 0 {
		score = 0
	}
	switch {
	case score >= 80:
		label = LabelGood
	case score >= 50:
		label = LabelDegraded
	default:
		label = LabelPoor
	}
	return score, label, deductions
}
