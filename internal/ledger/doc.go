// Package ledger records run history in SQLite: one row per invocation and
// one row per processed statement, including terminal diagnostic status and
// where the emitted OFX landed. The ledger is append-mostly and exists so
// operators can answer "what happened to that statement" weeks later.
package ledger
