package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/statement"
)

// FieldPatch describes an edit to a single transaction. Nil fields are left
// untouched; empty strings clear the target field.
type FieldPatch struct {
	PostedAt *string
	Amount   *decimal.Decimal
	Name     *string
	Memo     *string
	TrnType  *string
}

// RemoveTransactions returns a copy of st with the given indices removed.
// Removing every transaction is rejected: an empty statement cannot be
// reconciled or emitted, the operator should skip instead.
func RemoveTransactions(st *statement.Statement, indices []int) (*statement.Statement, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("no transactions selected")
	}
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(st.Transactions) {
			return nil, fmt.Errorf("transaction index %d out of range", i)
		}
		drop[i] = struct{}{}
	}
	if len(drop) == len(st.Transactions) {
		return nil, fmt.Errorf("cannot remove all %d transactions; skip the statement instead", len(st.Transactions))
	}

	out := st.Clone()
	kept := out.Transactions[:0]
	for i := range out.Transactions {
		if _, gone := drop[i]; gone {
			continue
		}
		kept = append(kept, out.Transactions[i])
	}
	out.Transactions = kept
	return out, nil
}

// EditFields applies a patch to the transaction at index. When the amount
// changes, the signed column values and transaction type are re-derived so
// the row stays internally coherent.
func EditFields(st *statement.Statement, index int, patch FieldPatch) (*statement.Statement, error) {
	if index < 0 || index >= len(st.Transactions) {
		return nil, fmt.Errorf("transaction index %d out of range", index)
	}

	out := st.Clone()
	tx := &out.Transactions[index]

	if patch.PostedAt != nil {
		raw := strings.TrimSpace(*patch.PostedAt)
		posted := canonical.ParseDate(raw)
		if raw != "" && posted == "" {
			return nil, fmt.Errorf("unreadable posted date %q", raw)
		}
		tx.PostedAt = posted
		tx.PostedAtSource = ""
	}
	if patch.Amount != nil {
		amount := *patch.Amount
		tx.Amount = statement.Dec(amount)
		if amount.Sign() >= 0 {
			tx.Credit = statement.Dec(amount.Abs())
			tx.Debit = nil
		} else {
			tx.Debit = statement.Dec(amount.Abs())
			tx.Credit = nil
		}
		tx.TrnType = trnTypeFor(amount)
	}
	if patch.Name != nil {
		tx.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Memo != nil {
		tx.Memo = strings.TrimSpace(*patch.Memo)
	}
	if patch.TrnType != nil {
		tx.TrnType = strings.ToUpper(strings.TrimSpace(*patch.TrnType))
	}
	return out, nil
}

// InvertSign negates the signed amount of each given transaction, swapping
// the debit and credit columns and the transaction type with it.
func InvertSign(st *statement.Statement, indices []int) (*statement.Statement, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("no transactions selected")
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)

	out := st.Clone()
	for _, i := range sorted {
		if i < 0 || i >= len(out.Transactions) {
			return nil, fmt.Errorf("transaction index %d out of range", i)
		}
		tx := &out.Transactions[i]
		if tx.Amount == nil {
			continue
		}
		inverted := tx.Amount.Neg()
		tx.Amount = statement.Dec(inverted)
		tx.Debit, tx.Credit = tx.Credit, tx.Debit
		tx.TrnType = trnTypeFor(inverted)
	}
	return out, nil
}

func trnTypeFor(amount decimal.Decimal) string {
	if amount.Sign() >= 0 {
		return "CREDIT"
	}
	return "DEBIT"
}
