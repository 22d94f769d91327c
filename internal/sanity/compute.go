package sanity

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/stage"
	"pdf2ofx/internal/statement"
)

// Input gathers everything one diagnostic run reads. StartingBalance and
// EndingBalance are explicit overrides; they take precedence over anything
// found in the raw payload.
type Input struct {
	Statement       *statement.Statement
	Name            string
	ExtractedCount  int
	Raw             canonical.Payload
	Issues          []statement.Issue
	StartingBalance *decimal.Decimal
	EndingBalance   *decimal.Decimal
}

// Compute runs the full diagnostic over one validated statement. The
// statement is read, never written.
func Compute(in Input) Result {
	st := in.Statement

	keptCount := len(st.Transactions)
	droppedCount := in.ExtractedCount - keptCount

	totalCredits := decimal.Zero
	totalDebits := decimal.Zero
	for i := range st.Transactions {
		amount := st.Transactions[i].Amount
		if amount == nil {
			continue
		}
		if amount.Sign() >= 0 {
			totalCredits = totalCredits.Add(*amount)
		} else {
			totalDebits = totalDebits.Add(*amount)
		}
	}
	netMovement := totalCredits.Add(totalDebits)

	starting, ending := in.StartingBalance, in.EndingBalance
	if starting == nil || ending == nil {
		rawStart, rawEnd := ExtractBalances(in.Raw)
		if starting == nil {
			starting = rawStart
		}
		if ending == nil {
			ending = rawEnd
		}
	}

	reconciledEnd, delta, status := Reconcile(starting, ending, netMovement)

	balancesMissing := starting == nil || ending == nil
	dropRatio := 0.0
	if in.ExtractedCount > 0 {
		dropRatio = float64(droppedCount) / float64(in.ExtractedCount)
	}

	score, label, deductions := ComputeScore(ScoreInput{
		Reconciliation:  status,
		BalancesMissing: balancesMissing,
		DropRatio:       dropRatio,
		WarningCount:    statement.CountWarnings(in.Issues),
		LowConfidence:   LowConfidence(in.Raw),
	})

	var warnings []string
	if balancesMissing {
		warnings = append(warnings, "Balance data not available; reconciliation skipped")
	}
	if dropRatio > highDropRate {
		warnings = append(warnings, fmt.Sprintf("High drop rate: %d/%d transactions dropped", droppedCount, in.ExtractedCount))
	}

	return Result{
		Name:            in.Name,
		PeriodStart:     st.Period.StartDate,
		PeriodEnd:       st.Period.EndDate,
		ExtractedCount:  in.ExtractedCount,
		KeptCount:       keptCount,
		DroppedCount:    droppedCount,
		TotalCredits:    totalCredits,
		TotalDebits:     totalDebits,
		NetMovement:     netMovement,
		StartingBalance: starting,
		EndingBalance:   ending,
		ReconciledEnd:   reconciledEnd,
		Delta:           delta,
		Reconciliation:  status,
		QualityScore:    score,
		QualityLabel:    label,
		Deductions:      deductions,
		Warnings:        warnings,
	}
}

// ComputeSafely wraps Compute with the SANITY boundary guard: a panic inside
// diagnostic logic is recovered and converted to a per-statement SANITY
// stage failure, never allowed to escape to the batch.
func ComputeSafely(in Input) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = stage.NewFailure(stage.Sanity,
				"internal diagnostic error",
				"re-run with --log-level debug and report the raw payload slug",
				fmt.Errorf("panic: %v", r))
		}
	}()
	return Compute(in), nil
}
