package fitid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pdf2ofx/internal/statement"
)

// idLength is the number of hex characters kept from the token digest.
const idLength = 20

var upper = cases.Upper(language.Und)

// punctRunes are the punctuation characters whose repeated runs collapse to
// a single occurrence during label normalization.
const punctRunes = ".,;:!-_/"

// NormalizeLabel builds the normalized label from a transaction's name and
// memo: non-empty parts joined with a space, whitespace collapsed, repeated
// punctuation collapsed, uppercased. Empty input normalizes to "UNKNOWN".
func NormalizeLabel(name, memo string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{name, memo} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return "UNKNOWN"
	}
	joined = strings.Join(strings.Fields(joined), " ")
	joined = collapsePunct(joined)
	return upper.String(joined)
}

func collapsePunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	for _, r := range s {
		if r == prev && strings.ContainsRune(punctRunes, r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Compute derives the identifier for one token. amountText must be the exact
// decimal rendering of the signed amount.
func Compute(accountID, postedAt, amountText, label string, seq int) string {
	token := fmt.Sprintf("%s|%s|%s|%s|%d", accountID, postedAt, amountText, label, seq)
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])[:idLength]
}

// Assign computes identifiers for every transaction in order. Transactions
// sharing a (posted_at, amount, label) triplet receive sequence numbers
// 0..n-1 in original order, so duplicates stay distinct.
func Assign(accountID string, txs []statement.Transaction) {
	seen := make(map[string]int, len(txs))
	for i := range txs {
		label := NormalizeLabel(txs[i].Name, txs[i].Memo)
		amountText := ""
		if txs[i].Amount != nil {
			amountText = txs[i].Amount.String()
		}
		key := txs[i].PostedAt + "|" + amountText + "|" + label
		seq := seen[key]
		seen[key] = seq + 1
		txs[i].FITID = Compute(accountID, txs[i].PostedAt, amountText, label, seq)
	}
}
