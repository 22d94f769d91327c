// Package statement holds the canonical statement model every pipeline
// component consumes. The shape is append-only: downstream components
// (identity assignment, validation, diagnostics, review, emission) depend on
// exact structural identity, so existing field semantics never change.
package statement
