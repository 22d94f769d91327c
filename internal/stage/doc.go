// Package stage defines the pipeline stage taxonomy and the failure types
// shared by every component. A Failure pins an error to the stage that
// produced it and carries a short actionable hint; sentinel errors mark the
// distinguished per-statement conditions (unrecognized schema, no surviving
// transactions, user abort, session cancellation).
package stage
