package statement

import (
	"github.com/shopspring/decimal"
)

// SchemaVersion is the canonical statement schema version written to
// canonical artifacts.
const SchemaVersion = "1.0"

// Account metadata defaults applied when extraction leaves a field empty.
const (
	DefaultAccountType = "CHECKING"
	DefaultCurrency    = "EUR"
	DefaultBankID      = "DUMMY"
)

// PostedAtSource records which date field produced PostedAt.
const (
	SourceOperation = "operation"
	SourcePosting   = "posting"
	SourceValue     = "value"
)

// Source records provenance of a canonical statement.
type Source struct {
	Origin     string `json:"origin"`
	DocumentID string `json:"document_id,omitempty"`
}

// Account identifies the bank account a statement belongs to.
type Account struct {
	AccountID   string `json:"account_id"`
	BankID      string `json:"bank_id"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}

// Period is the statement's declared date range, ISO dates. Either field may
// be empty until validation derives it from transaction dates.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Transaction is one ledger entry. Amount is signed; Debit and Credit carry
// the unsigned column values when the source exposed them. Optional numeric
// fields are nil when absent.
type Transaction struct {
	FITID          string           `json:"fitid"`
	PostedAt       string           `json:"posted_at"`
	PostedAtSource string           `json:"posted_at_source,omitempty"`
	Amount         *decimal.Decimal `json:"amount"`
	Debit          *decimal.Decimal `json:"debit,omitempty"`
	Credit         *decimal.Decimal `json:"credit,omitempty"`
	Name           string           `json:"name"`
	Memo           string           `json:"memo,omitempty"`
	TrnType        string           `json:"trntype,omitempty"`
	Page           int              `json:"page,omitempty"`
}

// AmountValue returns the signed amount, zero when unset.
func (t *Transaction) AmountValue() decimal.Decimal {
	if t.Amount == nil {
		return decimal.Zero
	}
	return *t.Amount
}

// Statement is the canonical, schema-normalized transaction ledger. It is
// owned by exactly one review session at a time and mutated only through the
// review mutation engine.
type Statement struct {
	SchemaVersion string        `json:"schema_version"`
	Source        Source        `json:"source"`
	Account       Account       `json:"account"`
	Period        Period        `json:"period"`
	Transactions  []Transaction `json:"transactions"`
}

// Clone returns a deep copy. Diagnostics run on the live statement and must
// never mutate it; mutations build on a clone so the decision layer never
// observes partially-applied state.
func (s *Statement) Clone() *Statement {
	cp := *s
	cp.Transactions = make([]Transaction, len(s.Transactions))
	for i := range s.Transactions {
		cp.Transactions[i] = cloneTransaction(s.Transactions[i])
	}
	return &cp
}

func cloneTransaction(t Transaction) Transaction {
	t.Amount = cloneDecimal(t.Amount)
	t.Debit = cloneDecimal(t.Debit)
	t.Credit = cloneDecimal(t.Credit)
	return t
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// Dec is a convenience constructor for optional decimal fields.
func Dec(d decimal.Decimal) *decimal.Decimal { return &d }
