// Package runner drives documents through the full pipeline: extraction,
// canonicalization, identity assignment, validation, review, emission, and
// ledger bookkeeping. Failures are caught per statement so one broken
// document never stops the batch; only shared setup errors are fatal.
package runner
