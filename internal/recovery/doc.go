// Package recovery re-opens previously captured raw extraction payloads and
// runs them back through review without calling the extraction provider.
// Candidates are reconstructed from the staging directory; sessions run
// sequentially, and nothing is handed to OFX emission until the operator
// confirms the aggregate summary.
package recovery
