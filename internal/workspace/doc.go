// Package workspace guards the staging directory against concurrent runs.
// Artifacts and the run ledger assume a single writer, so every command
// that mutates them takes the run lock first.
package workspace
