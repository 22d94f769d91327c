package fitid_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/fitid"
	"pdf2ofx/internal/statement"
)

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		name, memo, want string
	}{
		{"Card  payment", "", "CARD PAYMENT"},
		{"card", "grocery", "CARD GROCERY"},
		{"a...b", "", "A.B"},
		{"", "", "UNKNOWN"},
		{"  ", "", "UNKNOWN"},
		{"payment -- ref__1", "", "PAYMENT - REF_1"},
	}
	for _, tc := range cases {
		if got := fitid.NormalizeLabel(tc.name, tc.memo); got != tc.want {
			t.Fatalf("NormalizeLabel(%q, %q) = %q, want %q", tc.name, tc.memo, got, tc.want)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	a := fitid.Compute("ACCT", "2024-01-05", "-42.5", "CARD PAYMENT", 0)
	b := fitid.Compute("ACCT", "2024-01-05", "-42.5", "CARD PAYMENT", 0)
	if a != b {
		t.Fatalf("identical inputs must produce identical ids: %q vs %q", a, b)
	}
	if len(a) != 20 {
		t.Fatalf("id length = %d, want 20", len(a))
	}
	if fitid.Compute("OTHER", "2024-01-05", "-42.5", "CARD PAYMENT", 0) == a {
		t.Fatal("different account must change the id")
	}
	if fitid.Compute("ACCT", "2024-01-05", "-42.5", "CARD PAYMENT", 1) == a {
		t.Fatal("different sequence must change the id")
	}
}

func TestAssignDisambiguatesDuplicates(t *testing.T) {
	amt := decimal.RequireFromString("-10")
	txs := []statement.Transaction{
		{PostedAt: "2024-01-05", Amount: statement.Dec(amt), Name: "COFFEE"},
		{PostedAt: "2024-01-05", Amount: statement.Dec(amt), Name: "COFFEE"},
		{PostedAt: "2024-01-05", Amount: statement.Dec(amt), Name: "COFFEE"},
		{PostedAt: "2024-01-06", Amount: statement.Dec(amt), Name: "COFFEE"},
	}
	fitid.Assign("ACCT", txs)

	seen := make(map[string]bool)
	for i, tx := range txs {
		if tx.FITID == "" {
			t.Fatalf("transaction %d has empty fitid", i)
		}
		if seen[tx.FITID] {
			t.Fatalf("duplicate fitid at %d: %s", i, tx.FITID)
		}
		seen[tx.FITID] = true
	}

	// The first of a triplet gets sequence 0, matching a singleton's id.
	want := fitid.Compute("ACCT", "2024-01-05", "-10", "COFFEE", 0)
	if txs[0].FITID != want {
		t.Fatalf("first duplicate id = %s, want %s", txs[0].FITID, want)
	}
}

func TestAssignStableAcrossRuns(t *testing.T) {
	build := func() []statement.Transaction {
		a := decimal.RequireFromString("5")
		b := decimal.RequireFromString("-3.20")
		return []statement.Transaction{
			{PostedAt: "2024-02-01", Amount: statement.Dec(a), Name: "IN", Memo: "ref 1"},
			{PostedAt: "2024-02-02", Amount: statement.Dec(b), Name: "OUT"},
		}
	}
	first := build()
	second := build()
	fitid.Assign("ACCT", first)
	fitid.Assign("ACCT", second)
	for i := range first {
		if first[i].FITID != second[i].FITID {
			t.Fatalf("run %d ids differ: %s vs %s", i, first[i].FITID, second[i].FITID)
		}
	}
}
