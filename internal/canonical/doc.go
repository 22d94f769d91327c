// Package canonical maps raw extraction payloads onto the canonical
// statement shape. It recognizes the provider's v1 (Title Case) and v2
// (snake_case) custom schemas, refuses the provider's default bank-statement
// schema with a distinct error, and never guesses a mapping for anything
// else.
package canonical
