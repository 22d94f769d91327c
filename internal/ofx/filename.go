package ofx

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"pdf2ofx/internal/statement"
)

// FileName derives the output file name for one accepted statement:
// account, period end, and a short content hash so two statements for the
// same account and period never collide.
func FileName(st *statement.Statement) string {
	account := sanitizeComponent(st.Account.AccountID)
	if account == "" {
		account = "statement"
	}
	periodEnd := st.Period.EndDate
	if periodEnd == "" {
		periodEnd = "undated"
	}

	var ids []string
	for i := range st.Transactions {
		ids = append(ids, st.Transactions[i].FITID)
	}
	sum := sha256.Sum256([]byte(strings.Join(ids, ",")))
	hash := hex.EncodeToString(sum[:])[:4]

	return account + "_" + periodEnd + "_" + hash + ".ofx"
}

// sanitizeComponent keeps file names portable: anything outside
// [A-Za-z0-9._-] becomes a dash.
func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
