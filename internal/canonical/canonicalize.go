package canonical

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/stage"
	"pdf2ofx/internal/statement"
)

// Defaults supply account metadata used when extraction leaves a field
// empty. Extraction values always win over defaults.
type Defaults struct {
	AccountID   string
	BankID      string
	AccountType string
	Currency    string
}

// Result pairs the canonical statement with mapping warnings.
type Result struct {
	Statement *statement.Statement
	Warnings  []string
}

// Canonicalize detects the payload's schema variant and maps it onto the
// canonical statement shape. It fails with stage.ErrUnsupportedSchema for
// the provider's default bank-statement schema and stage.ErrUnrecognizedSchema
// when no known key set is present; it never guesses.
func Canonicalize(raw Payload, defaults Defaults) (Result, error) {
	pred := Prediction(raw)
	if pred == nil {
		return Result{}, stage.WrapNormalization(stage.ErrUnrecognizedSchema, "empty payload")
	}

	if hasAnyKey(pred, "Transactions", "Bank Name", "Start Date") {
		return mapV1(pred, defaults)
	}
	if hasAnyKey(pred, "transactions", "bank_name", "start_date") {
		return mapV2(pred, defaults)
	}
	if hasAnyKey(pred, "account_number", "list_of_transactions") {
		return Result{}, stage.WrapNormalization(stage.ErrUnsupportedSchema,
			"provider default bank statement schema is not mapped")
	}
	return Result{}, stage.WrapNormalization(stage.ErrUnrecognizedSchema,
		"expected custom schema fields")
}

func hasAnyKey(pred Payload, keys ...string) bool {
	for _, key := range keys {
		if _, ok := pred[key]; ok {
			return true
		}
	}
	return false
}

func mapV1(pred Payload, defaults Defaults) (Result, error) {
	field := func(name string) any { return Unwrap(pred[name]) }

	items, err := transactionItems(field("Transactions"), "Transactions")
	if err != nil {
		return Result{}, err
	}

	txs := make([]statement.Transaction, 0, len(items))
	for _, item := range items {
		txs = append(txs, mapTransaction(item, v1TxKeys))
	}

	st := &statement.Statement{
		SchemaVersion: statement.SchemaVersion,
		Source:        statement.Source{Origin: "extraction", DocumentID: stringValue(pred["document_id"])},
		Account: statement.Account{
			AccountID:   firstString(field("Account Number"), field("Account ID"), field("Account Id"), defaults.AccountID),
			BankID:      firstString(field("Bank ID"), field("Bank Id"), field("Bank Name"), defaults.BankID),
			AccountType: strings.ToUpper(firstString(field("Account Type"), field("Account type"), defaults.AccountType)),
			Currency:    firstString(field("Currency"), defaults.Currency),
		},
		Period: statement.Period{
			StartDate: ParseDate(field("Start Date")),
			EndDate:   ParseDate(field("End Date")),
		},
		Transactions: txs,
	}
	return Result{Statement: st}, nil
}

func mapV2(pred Payload, defaults Defaults) (Result, error) {
	field := func(name string) any { return Unwrap(pred[name]) }

	rawTxs := pred["transactions"]
	if wrapper, ok := rawTxs.(map[string]any); ok {
		rawTxs = wrapper["items"]
	}
	items, err := transactionItems(rawTxs, "transactions.items")
	if err != nil {
		return Result{}, err
	}

	txs := make([]statement.Transaction, 0, len(items))
	for _, item := range items {
		// v2 items may nest their values under "fields".
		if fields, ok := item["fields"].(map[string]any); ok {
			item = fields
		}
		txs = append(txs, mapTransaction(item, v2TxKeys))
	}

	st := &statement.Statement{
		SchemaVersion: statement.SchemaVersion,
		Source:        statement.Source{Origin: "extraction", DocumentID: stringValue(pred["document_id"])},
		Account: statement.Account{
			AccountID:   firstString(field("account_number"), field("account_id"), defaults.AccountID),
			BankID:      firstString(field("bank_id"), field("bank_name"), defaults.BankID),
			AccountType: strings.ToUpper(firstString(field("account_type"), defaults.AccountType)),
			Currency:    firstString(field("currency"), defaults.Currency),
		},
		Period: statement.Period{
			StartDate: ParseDate(field("start_date")),
			EndDate:   ParseDate(field("end_date")),
		},
		Transactions: txs,
	}
	return Result{Statement: st}, nil
}

// txKeys names the per-transaction fields of a schema variant.
type txKeys struct {
	operationDate string
	postingDate   string
	valueDate     string
	amount        string
	debit         string
	credit        string
	description   string
	notes         string
	page          string
}

var v1TxKeys = txKeys{
	operationDate: "Operation Date",
	postingDate:   "Posting Date",
	valueDate:     "Value Date",
	amount:        "Amount Signed",
	debit:         "Debit Amount",
	credit:        "Credit Amount",
	description:   "Description",
	notes:         "Row Confidence Notes",
	page:          "Page",
}

var v2TxKeys = txKeys{
	operationDate: "operation_date",
	postingDate:   "posting_date",
	valueDate:     "value_date",
	amount:        "amount",
	debit:         "debit_amount",
	credit:        "credit_amount",
	description:   "description",
	notes:         "row_confidence_notes",
	page:          "page",
}

// mapTransaction derives the canonical transaction fields: posted_at from
// the first present of operation/posting/value date, amount from the signed
// field or the credit/debit pair (credit positive, debit negative).
func mapTransaction(item map[string]any, keys txKeys) statement.Transaction {
	opDate := ParseDate(Unwrap(item[keys.operationDate]))
	postDate := ParseDate(Unwrap(item[keys.postingDate]))
	valDate := ParseDate(Unwrap(item[keys.valueDate]))

	postedAt, source := opDate, statement.SourceOperation
	switch {
	case opDate != "":
	case postDate != "":
		postedAt, source = postDate, statement.SourcePosting
	case valDate != "":
		postedAt, source = valDate, statement.SourceValue
	default:
		postedAt, source = "", ""
	}

	amount := ParseDecimal(Unwrap(item[keys.amount]))
	debit := ParseDecimal(Unwrap(item[keys.debit]))
	credit := ParseDecimal(Unwrap(item[keys.credit]))
	if amount == nil {
		switch {
		case debit != nil && !debit.IsZero():
			amount = statement.Dec(debit.Abs().Neg())
		case credit != nil && !credit.IsZero():
			amount = statement.Dec(credit.Abs())
		}
	}

	name := stringValue(Unwrap(item[keys.description]))
	if name == "" {
		name = "UNKNOWN"
	}

	tx := statement.Transaction{
		PostedAt:       postedAt,
		PostedAtSource: source,
		Amount:         amount,
		Debit:          debit,
		Credit:         credit,
		Name:           name,
		Memo:           stringValue(Unwrap(item[keys.notes])),
	}
	if page := ParseDecimal(Unwrap(item[keys.page])); page != nil {
		if p := int(page.IntPart()); p >= 1 {
			tx.Page = p
		}
	}
	return tx
}

func transactionItems(v any, fieldName string) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, stage.WrapNormalization(stage.ErrUnrecognizedSchema,
			fmt.Sprintf("%s is not a list", fieldName))
	}
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		} else {
			items = append(items, map[string]any{})
		}
	}
	return items, nil
}

func stringValue(v any) string {
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return decimal.NewFromFloat(value).String()
	default:
		return ""
	}
}

func firstString(values ...any) string {
	for _, v := range values {
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}
