package review

import (
	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/statement"
)

// Choice is one selectable option presented to the operator. A Separator
// choice is a non-selectable heading line; prompters render it between
// options without assigning it a selection number.
type Choice struct {
	Label     string
	Value     string
	Separator bool
}

// Prompter is the presentation collaborator. The state machine hands it the
// current diagnostic result and available choices and receives exactly one
// operator decision back; it has no other dependency on rendering. Any
// method may return stage.ErrAborted to terminate the whole run.
type Prompter interface {
	// ShowPanel renders the diagnostic summary before a screen's prompt.
	ShowPanel(result sanity.Result)
	// ShowTransactions renders the transactions at the given indices.
	ShowTransactions(st *statement.Statement, indices []int)
	// Select returns the value of the single chosen option.
	Select(message string, choices []Choice) (string, error)
	// MultiSelect returns the values of all chosen options, possibly none.
	MultiSelect(message string, choices []Choice) ([]string, error)
	// Input returns a line of operator text; empty means "keep current".
	Input(message, placeholder string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(message string, fallback bool) (bool, error)
	// Notify shows a one-line informational or rejection message.
	Notify(message string)
}
