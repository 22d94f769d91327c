package review

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/stage"
	"pdf2ofx/internal/statement"
)

// Outcome is the terminal decision of one review session. Accepted false
// means the operator skipped the statement.
type Outcome struct {
	Statement *statement.Statement
	Result    sanity.Result
	Accepted  bool
}

// Options configure one review session.
type Options struct {
	Name           string
	ExtractedCount int
	Raw            canonical.Payload
	Issues         []statement.Issue
	// InRecovery adds the back-to-list choice at the root so the operator
	// can return to the recovery statement picker without deciding.
	InRecovery bool
}

// Session drives one statement through the review hierarchy. It owns the
// statement for its lifetime; all mutation goes through the engine in
// mutate.go and every mutation is followed by a fresh diagnostic run before
// the next screen renders.
type Session struct {
	prompter Prompter
	logger   *slog.Logger
	opts     Options

	st            *statement.Statement
	partitions    *Partitions
	overrideStart *decimal.Decimal
	overrideEnd   *decimal.Decimal
	selected      int
	result        sanity.Result
}

// NewSession prepares a review session over st. The statement is taken over,
// not copied; callers must not touch it while the session runs.
func NewSession(st *statement.Statement, prompter Prompter, logger *slog.Logger, opts Options) *Session {
	return &Session{
		prompter:   prompter,
		logger:     logger,
		opts:       opts,
		st:         st,
		partitions: NewPartitions(),
		selected:   -1,
	}
}

// Run loops the screen hierarchy until the operator accepts or skips.
// stage.ErrBackToList surfaces unchanged for recovery callers;
// stage.ErrAborted and context cancellation terminate the whole run.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	if err := s.refresh(); err != nil {
		return Outcome{}, err
	}

	level := LevelRoot
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		var (
			next Level
			out  *Outcome
			err  error
		)
		switch level {
		case LevelRoot:
			next, out, err = s.stepRoot()
		case LevelEditMenu:
			next, err = s.stepEditMenu()
		case LevelEditBalances:
			next, err = s.stepEditBalances()
		case LevelEditTransactions:
			next, err = s.stepEditTransactions()
		case LevelTriage:
			next, err = s.stepTriage()
		case LevelSelectTransaction:
			next, err = s.stepSelectTransaction()
		case LevelTransactionActions:
			next, err = s.stepTransactionActions()
		default:
			return Outcome{}, fmt.Errorf("review session reached unknown level %d", level)
		}
		if err != nil {
			return Outcome{}, err
		}
		if out != nil {
			return *out, nil
		}
		level = next
	}
}

// refresh recomputes diagnostics against the current statement and session
// balance override.
func (s *Session) refresh() error {
	result, err := sanity.ComputeSafely(sanity.Input{
		Statement:       s.st,
		Name:            s.opts.Name,
		ExtractedCount:  s.opts.ExtractedCount,
		Raw:             s.opts.Raw,
		Issues:          s.opts.Issues,
		StartingBalance: s.overrideStart,
		EndingBalance:   s.overrideEnd,
	})
	if err != nil {
		return err
	}
	s.result = result
	return nil
}

func (s *Session) stepRoot() (Level, *Outcome, error) {
	s.prompter.ShowPanel(s.result)

	choices := []Choice{
		{Label: "Accept and emit OFX", Value: "accept"},
		{Label: "Edit statement", Value: "edit"},
		{Label: "Preview transactions", Value: "preview"},
		{Label: "Skip this statement", Value: "skip"},
	}
	if s.opts.InRecovery {
		choices = append(choices, Choice{Label: "Back to statement list", Value: "back"})
	}

	value, err := s.prompter.Select("Statement decision", choices)
	if err != nil {
		return 0, nil, err
	}
	switch value {
	case "accept":
		if s.result.Reconciliation == sanity.StatusError {
			forced, err := s.prompter.Confirm(
				fmt.Sprintf("Reconciliation is in error (delta %s). Force accept anyway?", decimalText(s.result.Delta)),
				false)
			if err != nil {
				return 0, nil, err
			}
			if !forced {
				return LevelRoot, nil, nil
			}
			s.result.ForcedAccept = true
			s.logger.Warn("statement force-accepted", "statement", s.opts.Name)
		}
		out := Outcome{Statement: s.st, Result: s.result, Accepted: true}
		return 0, &out, nil
	case "edit":
		return LevelEditMenu, nil, nil
	case "preview":
		s.prompter.ShowTransactions(s.st, s.allIndices())
		return LevelRoot, nil, nil
	case "skip":
		s.result.Skipped = true
		s.logger.Info("statement skipped", "statement", s.opts.Name)
		out := Outcome{Statement: s.st, Result: s.result, Accepted: false}
		return 0, &out, nil
	case "back":
		return 0, nil, stage.ErrBackToList
	default:
		return LevelRoot, nil, nil
	}
}

func (s *Session) stepEditMenu() (Level, error) {
	value, err := s.prompter.Select("Edit what?", []Choice{
		{Label: "Balances", Value: "balances"},
		{Label: "Transactions", Value: "transactions"},
		{Label: "Triage (validate / flag)", Value: "triage"},
		{Label: "Back", Value: "back"},
	})
	if err != nil {
		return 0, err
	}
	switch value {
	case "balances":
		return LevelEditBalances, nil
	case "transactions":
		return LevelEditTransactions, nil
	case "triage":
		return LevelTriage, nil
	default:
		return LevelEditMenu.Parent(), nil
	}
}

func (s *Session) stepEditBalances() (Level, error) {
	value, err := s.prompter.Select("Balance override", []Choice{
		{Label: "Set starting and ending balance", Value: "set"},
		{Label: "Clear override", Value: "clear"},
		{Label: "Back", Value: "back"},
	})
	if err != nil {
		return 0, err
	}
	switch value {
	case "set":
		start, err := s.inputBalance("Starting balance", s.result.StartingBalance)
		if err != nil {
			return 0, err
		}
		end, err := s.inputBalance("Ending balance", s.result.EndingBalance)
		if err != nil {
			return 0, err
		}
		if start != nil {
			s.overrideStart = start
		}
		if end != nil {
			s.overrideEnd = end
		}
		if err := s.refresh(); err != nil {
			return 0, err
		}
		return LevelEditBalances.Parent(), nil
	case "clear":
		s.overrideStart, s.overrideEnd = nil, nil
		if err := s.refresh(); err != nil {
			return 0, err
		}
		return LevelEditBalances.Parent(), nil
	default:
		return LevelEditBalances.Parent(), nil
	}
}

// inputBalance reads one balance value. Blank keeps the current value; an
// unreadable number is reported and re-asked.
func (s *Session) inputBalance(label string, current *decimal.Decimal) (*decimal.Decimal, error) {
	for {
		raw, err := s.prompter.Input(label+" (blank keeps "+decimalText(current)+")", decimalText(current))
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			s.prompter.Notify(fmt.Sprintf("Not a number: %q", raw))
			continue
		}
		return statement.Dec(value), nil
	}
}

func (s *Session) stepEditTransactions() (Level, error) {
	value, err := s.prompter.Select("Transaction edits", []Choice{
		{Label: "Remove transactions", Value: "remove"},
		{Label: "Invert sign", Value: "invert"},
		{Label: "Edit one transaction", Value: "edit"},
		{Label: "Back", Value: "back"},
	})
	if err != nil {
		return 0, err
	}
	switch value {
	case "remove":
		indices, err := s.multiSelectTransactions("Remove which transactions?", s.allIndices())
		if err != nil {
			return 0, err
		}
		if len(indices) == 0 {
			return LevelEditTransactions, nil
		}
		mutated, err := RemoveTransactions(s.st, indices)
		if err != nil {
			s.prompter.Notify(err.Error())
			return LevelEditTransactions, nil
		}
		s.st = mutated
		s.partitions.Remap(indices)
		if err := s.refresh(); err != nil {
			return 0, err
		}
		return LevelEditTransactions, nil
	case "invert":
		indices, err := s.multiSelectTransactions("Invert sign of which transactions?", s.candidateIndices())
		if err != nil {
			return 0, err
		}
		if len(indices) == 0 {
			return LevelEditTransactions, nil
		}
		mutated, err := InvertSign(s.st, indices)
		if err != nil {
			s.prompter.Notify(err.Error())
			return LevelEditTransactions, nil
		}
		s.st = mutated
		if err := s.refresh(); err != nil {
			return 0, err
		}
		return LevelEditTransactions, nil
	case "edit":
		return LevelSelectTransaction, nil
	default:
		return LevelEditTransactions.Parent(), nil
	}
}

func (s *Session) stepTriage() (Level, error) {
	value, err := s.prompter.Select("Triage", []Choice{
		{Label: "Mark transactions validated", Value: "validate"},
		{Label: "Flag transactions for attention", Value: "flag"},
		{Label: "Back", Value: "back"},
	})
	if err != nil {
		return 0, err
	}
	switch value {
	case "validate":
		indices, err := s.multiSelectTransactions("Validate which transactions?", s.allIndices())
		if err != nil {
			return 0, err
		}
		s.partitions.Validate(indices)
		s.prompter.Notify(fmt.Sprintf("%d transaction(s) validated", len(indices)))
	case "flag":
		indices, err := s.multiSelectTransactions("Flag which transactions?", s.allIndices())
		if err != nil {
			return 0, err
		}
		s.partitions.Flag(indices)
		s.prompter.Notify(fmt.Sprintf("%d transaction(s) flagged", len(indices)))
	}
	if err := s.refresh(); err != nil {
		return 0, err
	}
	return LevelTriage.Parent(), nil
}

func (s *Session) stepSelectTransaction() (Level, error) {
	choices := append(s.transactionChoices(s.candidateIndices()), Choice{Label: "Back", Value: "back"})

	message := "Edit which transaction?"
	if s.partitions.FilterActive() {
		message = "Edit which flagged transaction?"
	}
	value, err := s.prompter.Select(message, choices)
	if err != nil {
		return 0, err
	}
	if value == "back" {
		return LevelSelectTransaction.Parent(), nil
	}
	index, err := strconv.Atoi(value)
	if err != nil || index < 0 || index >= len(s.st.Transactions) {
		return LevelSelectTransaction, nil
	}
	s.selected = index
	return LevelTransactionActions, nil
}

func (s *Session) stepTransactionActions() (Level, error) {
	if s.selected < 0 || s.selected >= len(s.st.Transactions) {
		return LevelTransactionActions.Parent(), nil
	}
	s.prompter.ShowTransactions(s.st, []int{s.selected})

	value, err := s.prompter.Select("Transaction action", []Choice{
		{Label: "Edit fields", Value: "fields"},
		{Label: "Invert sign", Value: "invert"},
		{Label: "Back", Value: "back"},
	})
	if err != nil {
		return 0, err
	}
	switch value {
	case "fields":
		patch, err := s.inputFieldPatch(s.st.Transactions[s.selected])
		if err != nil {
			return 0, err
		}
		mutated, err := EditFields(s.st, s.selected, patch)
		if err != nil {
			s.prompter.Notify(err.Error())
			return LevelTransactionActions, nil
		}
		s.st = mutated
		if err := s.refresh(); err != nil {
			return 0, err
		}
		return LevelTransactionActions.Parent(), nil
	case "invert":
		mutated, err := InvertSign(s.st, []int{s.selected})
		if err != nil {
			s.prompter.Notify(err.Error())
			return LevelTransactionActions, nil
		}
		s.st = mutated
		if err := s.refresh(); err != nil {
			return 0, err
		}
		return LevelTransactionActions.Parent(), nil
	default:
		return LevelTransactionActions.Parent(), nil
	}
}

// inputFieldPatch prompts for each editable field; blank answers keep the
// current value.
func (s *Session) inputFieldPatch(tx statement.Transaction) (FieldPatch, error) {
	var patch FieldPatch

	posted, err := s.prompter.Input("Posted date (blank keeps "+tx.PostedAt+")", tx.PostedAt)
	if err != nil {
		return patch, err
	}
	if strings.TrimSpace(posted) != "" {
		patch.PostedAt = &posted
	}

	amountRaw, err := s.prompter.Input("Amount (blank keeps "+decimalText(tx.Amount)+")", decimalText(tx.Amount))
	if err != nil {
		return patch, err
	}
	if trimmed := strings.TrimSpace(amountRaw); trimmed != "" {
		value, err := decimal.NewFromString(trimmed)
		if err != nil {
			s.prompter.Notify(fmt.Sprintf("Not a number: %q; amount unchanged", trimmed))
		} else {
			patch.Amount = statement.Dec(value)
		}
	}

	name, err := s.prompter.Input("Name (blank keeps "+tx.Name+")", tx.Name)
	if err != nil {
		return patch, err
	}
	if strings.TrimSpace(name) != "" {
		patch.Name = &name
	}

	memo, err := s.prompter.Input("Memo (blank keeps current)", tx.Memo)
	if err != nil {
		return patch, err
	}
	if strings.TrimSpace(memo) != "" {
		patch.Memo = &memo
	}

	return patch, nil
}

// candidateIndices scopes detail actions: with an active flag filter only
// the flagged indices are offered, otherwise every transaction is.
func (s *Session) candidateIndices() []int {
	if s.partitions.FilterActive() {
		return s.partitions.Flagged()
	}
	return s.allIndices()
}

func (s *Session) allIndices() []int {
	out := make([]int, len(s.st.Transactions))
	for i := range out {
		out[i] = i
	}
	return out
}

func (s *Session) multiSelectTransactions(message string, candidates []int) ([]int, error) {
	values, err := s.prompter.MultiSelect(message, s.transactionChoices(candidates))
	if err != nil {
		return nil, err
	}
	indices := make([]int, 0, len(values))
	for _, v := range values {
		index, err := strconv.Atoi(v)
		if err != nil || index < 0 || index >= len(s.st.Transactions) {
			continue
		}
		indices = append(indices, index)
	}
	return indices, nil
}

// transactionChoices builds the picker list for the given indices. When the
// statement carries page information, choices are grouped by source page with
// a separator heading showing per-page and cumulative credit/debit totals.
func (s *Session) transactionChoices(indices []int) []Choice {
	groups := sanity.GroupPages(s.st, indices)
	if groups == nil {
		choices := make([]Choice, 0, len(indices))
		for _, i := range indices {
			choices = append(choices, s.transactionChoice(i))
		}
		return choices
	}
	var choices []Choice
	for _, g := range groups {
		choices = append(choices, Choice{Label: g.Summary(), Separator: true})
		for _, i := range g.Indices {
			choices = append(choices, s.transactionChoice(i))
		}
	}
	return choices
}

func (s *Session) transactionChoice(i int) Choice {
	tx := s.st.Transactions[i]
	marker := ""
	switch {
	case s.partitions.IsFlagged(i):
		marker = " [flagged]"
	case s.partitions.IsValidated(i):
		marker = " [validated]"
	}
	return Choice{
		Label: fmt.Sprintf("#%d %s %s %s%s", i+1, tx.PostedAt, decimalText(tx.Amount), tx.Name, marker),
		Value: strconv.Itoa(i),
	}
}

func decimalText(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return d.StringFixed(2)
}
