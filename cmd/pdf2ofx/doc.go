// Package main hosts the pdf2ofx CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into batch
// processing runs, recovery sessions over staged artifacts, ledger history
// queries, staging maintenance, and configuration scaffolding. It centralizes
// configuration resolution, run locking, and structured logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
