package validate_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/stage"
	"pdf2ofx/internal/statement"
	"pdf2ofx/internal/validate"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func baseStatement(txs ...statement.Transaction) *statement.Statement {
	return &statement.Statement{
		SchemaVersion: statement.SchemaVersion,
		Account: statement.Account{
			AccountID:   "ACCT",
			BankID:      statement.DefaultBankID,
			AccountType: statement.DefaultAccountType,
			Currency:    statement.DefaultCurrency,
		},
		Period:       statement.Period{StartDate: "2024-01-01", EndDate: "2024-01-31"},
		Transactions: txs,
	}
}

func TestStatementDropsUnusableTransactions(t *testing.T) {
	st := baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "2024-01-05", Amount: dec("-10")},
		statement.Transaction{FITID: "b", PostedAt: "", Amount: dec("5")},
		statement.Transaction{FITID: "c", PostedAt: "05/01/2024", Amount: dec("5")},
		statement.Transaction{FITID: "d", PostedAt: "2024-01-06", Amount: nil},
		statement.Transaction{FITID: "", PostedAt: "2024-01-07", Amount: dec("1")},
		statement.Transaction{FITID: "a", PostedAt: "2024-01-08", Amount: dec("2")},
	)

	res, err := validate.Statement(st)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if len(res.Statement.Transactions) != 1 {
		t.Fatalf("kept = %d, want 1", len(res.Statement.Transactions))
	}
	if res.Statement.Transactions[0].FITID != "a" {
		t.Fatalf("kept wrong transaction: %q", res.Statement.Transactions[0].FITID)
	}

	codes := make(map[string]bool)
	for _, issue := range res.Issues {
		codes[issue.Code] = true
	}
	for _, want := range []string{
		validate.CodeMissingPostedAt,
		validate.CodeInvalidPostedAt,
		validate.CodeMissingAmount,
		validate.CodeMissingFITID,
		validate.CodeDuplicateFITID,
	} {
		if !codes[want] {
			t.Fatalf("missing issue code %s; got %v", want, codes)
		}
	}

	// Input must never be mutated.
	if len(st.Transactions) != 6 {
		t.Fatalf("input mutated: %d transactions", len(st.Transactions))
	}
}

func TestStatementNoTransactionsFatal(t *testing.T) {
	_, err := validate.Statement(baseStatement())
	if !errors.Is(err, stage.ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions, got %v", err)
	}

	_, err = validate.Statement(baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "", Amount: dec("1")},
	))
	if !errors.Is(err, stage.ErrNoTransactions) {
		t.Fatalf("expected ErrNoTransactions when nothing survives, got %v", err)
	}
}

func TestStatementCoherenceWarnings(t *testing.T) {
	st := baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "2024-01-05", Amount: dec("-10"), Debit: dec("12")},
		statement.Transaction{FITID: "b", PostedAt: "2024-01-06", Amount: dec("10"), Credit: dec("10.005")},
		statement.Transaction{FITID: "c", PostedAt: "2024-01-07", Amount: dec("3"), Debit: dec("3"), Credit: dec("3")},
	)
	res, err := validate.Statement(st)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if len(res.Statement.Transactions) != 3 {
		t.Fatalf("coherence issues must not drop transactions, kept %d", len(res.Statement.Transactions))
	}

	codes := map[string]int{}
	for _, issue := range res.Issues {
		codes[issue.Code] = issue.Count
	}
	if codes[validate.CodeDebitMismatch] == 0 {
		t.Fatal("expected debit mismatch warning")
	}
	if codes[validate.CodeCreditMismatch] != 0 {
		t.Fatal("credit within tolerance must not warn")
	}
	if codes[validate.CodeDebitCreditBoth] == 0 {
		t.Fatal("expected both-columns warning")
	}
}

func TestStatementDerivesPeriod(t *testing.T) {
	st := baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "2024-01-10", Amount: dec("1")},
		statement.Transaction{FITID: "b", PostedAt: "2024-01-03", Amount: dec("2")},
	)
	st.Period = statement.Period{}

	res, err := validate.Statement(st)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if res.Statement.Period.StartDate != "2024-01-03" || res.Statement.Period.EndDate != "2024-01-10" {
		t.Fatalf("derived period = %+v", res.Statement.Period)
	}

	found := false
	for _, issue := range res.Issues {
		if issue.Code == validate.CodePeriodDerived {
			found = true
		}
	}
	if !found {
		t.Fatal("expected period_derived warning")
	}
}

func TestStatementOutsidePeriodWarning(t *testing.T) {
	st := baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "2024-02-15", Amount: dec("1")},
		statement.Transaction{FITID: "b", PostedAt: "2024-01-15", Amount: dec("1")},
	)
	res, err := validate.Statement(st)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	for _, issue := range res.Issues {
		if issue.Code == validate.CodeOutsidePeriod {
			if len(issue.FITIDs) != 1 || issue.FITIDs[0] != "a" {
				t.Fatalf("outside-period fitids = %v", issue.FITIDs)
			}
			return
		}
	}
	t.Fatal("expected tx_outside_period warning")
}

func TestStatementDefaultsTrnType(t *testing.T) {
	st := baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "2024-01-05", Amount: dec("-1")},
		statement.Transaction{FITID: "b", PostedAt: "2024-01-06", Amount: dec("1")},
	)
	res, err := validate.Statement(st)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if res.Statement.Transactions[0].TrnType != "DEBIT" {
		t.Fatalf("negative amount trntype = %q", res.Statement.Transactions[0].TrnType)
	}
	if res.Statement.Transactions[1].TrnType != "CREDIT" {
		t.Fatalf("positive amount trntype = %q", res.Statement.Transactions[1].TrnType)
	}
}

func TestStatementFallbackDateWarning(t *testing.T) {
	st := baseStatement(
		statement.Transaction{FITID: "a", PostedAt: "2024-01-05", PostedAtSource: statement.SourceValue, Amount: dec("1")},
	)
	res, err := validate.Statement(st)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	for _, issue := range res.Issues {
		if issue.Code == validate.CodePostedAtFallback {
			return
		}
	}
	t.Fatal("expected posted_at_fallback warning")
}
