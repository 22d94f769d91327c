// Package review implements the interactive reconciliation gate: a fixed
// hierarchy of screens keyed by an explicit level enum, the triage scoping
// rules, and the mutation engine that is the only code allowed to change a
// statement once it enters review. Every transition function returns its
// next level explicitly, and every mutation re-runs diagnostics before the
// next screen is shown.
package review
