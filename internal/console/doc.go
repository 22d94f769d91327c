// Package console is the terminal presentation layer: diagnostic panels,
// transaction tables, and the line-based prompts the review state machine
// drives. It implements review.Prompter; nothing outside this package
// writes interactive output.
package console
