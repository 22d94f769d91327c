// Package validate enforces the canonical statement contract: hard
// constraints drop the offending transaction, coherence constraints keep it
// with a warning, and missing derivable fields (trntype, period) are filled
// in. The validator is a pure function of the statement and the amount
// tolerance; it produces an ordered issue list and never reports anything a
// later stage would have to re-derive.
package validate
