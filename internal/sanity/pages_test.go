package sanity_test

import (
	"strings"
	"testing"

	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/statement"
)

func pagedStatement() *statement.Statement {
	return &statement.Statement{
		Transactions: []statement.Transaction{
			{FITID: "a", Amount: dec("100"), Name: "A", Page: 2},
			{FITID: "b", Amount: dec("-50"), Name: "B", Page: 1},
			{FITID: "c", Amount: dec("25"), Name: "C", Page: 1},
		},
	}
}

func TestHasPages(t *testing.T) {
	st := stWith("10", "-5")
	if sanity.HasPages(st, []int{0, 1}) {
		t.Fatal("no transaction carries a page")
	}
	st.Transactions[1].Page = 1
	if !sanity.HasPages(st, []int{0, 1}) {
		t.Fatal("one paged transaction is enough")
	}
}

func TestGroupPagesWithoutPages(t *testing.T) {
	if groups := sanity.GroupPages(stWith("10", "-5"), []int{0, 1}); groups != nil {
		t.Fatalf("expected flat listing, got %d groups", len(groups))
	}
}

func TestGroupPagesOrderedTotals(t *testing.T) {
	groups := sanity.GroupPages(pagedStatement(), []int{0, 1, 2})
	if len(groups) != 2 {
		t.Fatalf("groups = %d", len(groups))
	}

	first := groups[0]
	if first.Page != 1 || len(first.Indices) != 2 || first.Indices[0] != 1 || first.Indices[1] != 2 {
		t.Fatalf("first group = %+v", first)
	}
	if !first.Credits.Equal(*dec("25")) || !first.Debits.Equal(*dec("50")) {
		t.Fatalf("page 1 totals = +%s -%s", first.Credits, first.Debits)
	}
	if !first.CumulativeCredits.Equal(*dec("25")) || !first.CumulativeDebits.Equal(*dec("50")) {
		t.Fatalf("page 1 cumulative = +%s -%s", first.CumulativeCredits, first.CumulativeDebits)
	}

	second := groups[1]
	if second.Page != 2 || len(second.Indices) != 1 || second.Indices[0] != 0 {
		t.Fatalf("second group = %+v", second)
	}
	if !second.Credits.Equal(*dec("100")) || !second.Debits.IsZero() {
		t.Fatalf("page 2 totals = +%s -%s", second.Credits, second.Debits)
	}
	if !second.CumulativeCredits.Equal(*dec("125")) || !second.CumulativeDebits.Equal(*dec("50")) {
		t.Fatalf("page 2 cumulative = +%s -%s", second.CumulativeCredits, second.CumulativeDebits)
	}
}

func TestGroupPagesUnknownLast(t *testing.T) {
	st := stWith("10", "-5", "3")
	st.Transactions[0].Page = 1
	st.Transactions[2].Page = 2

	groups := sanity.GroupPages(st, []int{0, 1, 2})
	if len(groups) != 3 {
		t.Fatalf("groups = %d", len(groups))
	}
	if groups[0].Page != 1 || groups[1].Page != 2 || groups[2].Page != 0 {
		t.Fatalf("page order = %d, %d, %d", groups[0].Page, groups[1].Page, groups[2].Page)
	}
	last := groups[2]
	if last.Label() != "Page ?" {
		t.Fatalf("unknown page label = %q", last.Label())
	}
	if len(last.Indices) != 1 || last.Indices[0] != 1 {
		t.Fatalf("unknown page indices = %v", last.Indices)
	}
}

func TestPageGroupSummary(t *testing.T) {
	g := sanity.PageGroup{
		Page:              1,
		Credits:           *dec("1234.56"),
		Debits:            *dec("987.65"),
		CumulativeCredits: *dec("1234.56"),
		CumulativeDebits:  *dec("987.65"),
	}
	line := g.Summary()
	for _, want := range []string{"Page 1", "+1 234.56", "-987.65", "cum+ 1 234.56", "cum- 987.65"} {
		if !strings.Contains(line, want) {
			t.Fatalf("summary missing %q: %q", want, line)
		}
	}
}
