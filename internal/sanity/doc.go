// Package sanity is the read-only diagnostic engine: statement statistics,
// balance reconciliation against the raw payload, and the 0–100 quality
// score. Everything here is a pure function of its inputs; the statement is
// never mutated, and computing twice without an intervening mutation yields
// identical results.
package sanity
