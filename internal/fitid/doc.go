// Package fitid assigns the deterministic per-transaction identifier used
// by downstream OFX consumers for deduplication. The token → identifier
// mapping is byte-stable forever: identical (account, date, amount, label,
// sequence) inputs always produce the identical identifier, across runs and
// implementations.
package fitid
