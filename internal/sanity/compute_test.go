package sanity_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/statement"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func stWith(amounts ...string) *statement.Statement {
	txs := make([]statement.Transaction, 0, len(amounts))
	for i, a := range amounts {
		txs = append(txs, statement.Transaction{
			FITID:    string(rune('a' + i)),
			PostedAt: "2024-01-05",
			Amount:   dec(a),
		})
	}
	return &statement.Statement{
		Period:       statement.Period{StartDate: "2024-01-01", EndDate: "2024-01-31"},
		Transactions: txs,
	}
}

func TestReconcileBoundaries(t *testing.T) {
	cases := []struct {
		delta string
		want  sanity.Status
	}{
		{"0", sanity.StatusOK},
		{"0.01", sanity.StatusOK},
		{"0.011", sanity.StatusWarning},
		{"1.00", sanity.StatusWarning},
		{"1.01", sanity.StatusError},
		{"-0.01", sanity.StatusOK},
		{"-1.01", sanity.StatusError},
	}
	for _, tc := range cases {
		starting := decimal.RequireFromString("100")
		net := decimal.RequireFromString("50")
		stated := starting.Add(net).Sub(decimal.RequireFromString(tc.delta))
		_, delta, status := sanity.Reconcile(&starting, &stated, net)
		if status != tc.want {
			t.Fatalf("delta %s: status = %s, want %s", tc.delta, status, tc.want)
		}
		if delta == nil || !delta.Equal(decimal.RequireFromString(tc.delta)) {
			t.Fatalf("delta %s: computed %v", tc.delta, delta)
		}
	}
}

func TestReconcileSkippedWhenBalanceMissing(t *testing.T) {
	net := decimal.RequireFromString("5")
	end := decimal.RequireFromString("10")
	if _, _, status := sanity.Reconcile(nil, &end, net); status != sanity.StatusSkipped {
		t.Fatalf("missing start: status = %s", status)
	}
	start := decimal.RequireFromString("5")
	if _, _, status := sanity.Reconcile(&start, nil, net); status != sanity.StatusSkipped {
		t.Fatalf("missing end: status = %s", status)
	}
}

func TestComputeEndToEnd(t *testing.T) {
	st := stWith("416000", "-80000")
	raw := map[string]any{
		"starting_balance": 100000.0,
		"ending_balance":   436000.0,
	}
	res := sanity.Compute(sanity.Input{
		Statement:      st,
		Name:           "acct.pdf",
		ExtractedCount: 2,
		Raw:            raw,
	})

	if res.Reconciliation != sanity.StatusOK {
		t.Fatalf("status = %s, want OK (delta %v)", res.Reconciliation, res.Delta)
	}
	if res.QualityScore != 100 || res.QualityLabel != sanity.LabelGood {
		t.Fatalf("score = %d label = %s", res.QualityScore, res.QualityLabel)
	}
	if !res.TotalCredits.Equal(decimal.RequireFromString("416000")) {
		t.Fatalf("credits = %s", res.TotalCredits)
	}
	if !res.TotalDebits.Equal(decimal.RequireFromString("-80000")) {
		t.Fatalf("debits = %s", res.TotalDebits)
	}
	if !res.NetMovement.Equal(decimal.RequireFromString("336000")) {
		t.Fatalf("net = %s", res.NetMovement)
	}
	if res.ReconciledEnd == nil || !res.ReconciledEnd.Equal(decimal.RequireFromString("436000")) {
		t.Fatalf("reconciled end = %v", res.ReconciledEnd)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestComputeIdempotent(t *testing.T) {
	st := stWith("10", "-4")
	in := sanity.Input{Statement: st, ExtractedCount: 2, Raw: map[string]any{
		"starting_balance": 0.0,
		"ending_balance":   6.0,
	}}
	first := sanity.Compute(in)
	second := sanity.Compute(in)
	if first.Reconciliation != second.Reconciliation || first.QualityScore != second.QualityScore {
		t.Fatalf("compute not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeBalanceOverridesWin(t *testing.T) {
	st := stWith("5")
	raw := map[string]any{
		"starting_balance": 999.0,
		"ending_balance":   999.0,
	}
	res := sanity.Compute(sanity.Input{
		Statement:       st,
		ExtractedCount:  1,
		Raw:             raw,
		StartingBalance: dec("0"),
		EndingBalance:   dec("5"),
	})
	if res.Reconciliation != sanity.StatusOK {
		t.Fatalf("overrides ignored: status = %s delta = %v", res.Reconciliation, res.Delta)
	}
}

func TestComputeMissingBalancesWarns(t *testing.T) {
	st := stWith("5")
	res := sanity.Compute(sanity.Input{Statement: st, ExtractedCount: 1, Raw: map[string]any{}})
	if res.Reconciliation != sanity.StatusSkipped {
		t.Fatalf("status = %s, want SKIPPED", res.Reconciliation)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected balance warning")
	}
	if res.QualityScore != 100-25 {
		t.Fatalf("score = %d, want 75", res.QualityScore)
	}
}

func TestComputeDropRatePenalty(t *testing.T) {
	st := stWith("5")
	res := sanity.Compute(sanity.Input{
		Statement:      st,
		ExtractedCount: 10,
		Raw: map[string]any{
			"starting_balance": 0.0,
			"ending_balance":   5.0,
		},
	})
	if res.DroppedCount != 9 {
		t.Fatalf("dropped = %d", res.DroppedCount)
	}
	if res.QualityScore != 100-15 {
		t.Fatalf("score = %d, want 85", res.QualityScore)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected high drop rate warning")
	}
}

func TestComputeScoreMonotonic(t *testing.T) {
	base := sanity.ScoreInput{Reconciliation: sanity.StatusOK}
	score, label, _ := sanity.ComputeScore(base)
	if score != 100 || label != sanity.LabelGood {
		t.Fatalf("clean score = %d %s", score, label)
	}

	worse := base
	worse.BalancesMissing = true
	worseScore, _, _ := sanity.ComputeScore(worse)
	if worseScore >= score {
		t.Fatalf("adding a penalty must lower the score: %d >= %d", worseScore, score)
	}

	errScore, errLabel, _ := sanity.ComputeScore(sanity.ScoreInput{
		Reconciliation:  sanity.StatusError,
		BalancesMissing: true,
		DropRatio:       0.5,
		WarningCount:    5,
		LowConfidence:   true,
	})
	if errScore != 0 {
		t.Fatalf("floor = %d, want 0", errScore)
	}
	if errLabel != sanity.LabelPoor {
		t.Fatalf("label = %s, want POOR", errLabel)
	}
}

func TestComputeWarningPenaltyCapped(t *testing.T) {
	few, _, _ := sanity.ComputeScore(sanity.ScoreInput{Reconciliation: sanity.StatusOK, WarningCount: 3})
	many, _, _ := sanity.ComputeScore(sanity.ScoreInput{Reconciliation: sanity.StatusOK, WarningCount: 30})
	if few != many {
		t.Fatalf("warning penalty must cap: %d vs %d", few, many)
	}
	if few != 70 {
		t.Fatalf("capped score = %d, want 70", few)
	}
}

func TestCleanForDeletion(t *testing.T) {
	clean := sanity.Result{Reconciliation: sanity.StatusOK, QualityLabel: sanity.LabelGood}
	if ok, reason := clean.CleanForDeletion(); !ok || reason != "" {
		t.Fatalf("clean result: ok=%v reason=%q", ok, reason)
	}

	cases := []sanity.Result{
		{Reconciliation: sanity.StatusOK, QualityLabel: sanity.LabelGood, Skipped: true},
		{Reconciliation: sanity.StatusOK, QualityLabel: sanity.LabelGood, ForcedAccept: true},
		{Reconciliation: sanity.StatusWarning, QualityLabel: sanity.LabelGood},
		{Reconciliation: sanity.StatusOK, QualityLabel: sanity.LabelDegraded},
	}
	reasons := make(map[string]bool)
	for i, r := range cases {
		ok, reason := r.CleanForDeletion()
		if ok {
			t.Fatalf("case %d must retain", i)
		}
		if reason == "" {
			t.Fatalf("case %d has no reason", i)
		}
		reasons[reason] = true
	}
	if len(reasons) != len(cases) {
		t.Fatalf("retention reasons must be distinct, got %v", reasons)
	}
}

func TestLowConfidence(t *testing.T) {
	if !sanity.LowConfidence(map[string]any{"confidence": 0.3}) {
		t.Fatal("0.3 should be low confidence")
	}
	if sanity.LowConfidence(map[string]any{"confidence": 0.9}) {
		t.Fatal("0.9 should not be low confidence")
	}
	if sanity.LowConfidence(map[string]any{}) {
		t.Fatal("absent confidence should not be low")
	}
}

func TestComputeSafelyRecovers(t *testing.T) {
	// A nil statement makes Compute dereference nil; the guard must turn
	// that into an error instead of a crash.
	_, err := sanity.ComputeSafely(sanity.Input{Statement: nil})
	if err == nil {
		t.Fatal("expected an error from the panic guard")
	}
}
