package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"

	"pdf2ofx/internal/review"
	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/stage"
	"pdf2ofx/internal/statement"
)

// Console implements review.Prompter over stdin/stdout line prompts.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New builds a console over os.Stdin/os.Stdout.
func New() *Console {
	return &Console{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
		interactive: (isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())) &&
			(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())),
	}
}

// NewWithStreams builds a console over explicit streams, always interactive.
// Intended for tests.
func NewWithStreams(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out, interactive: true}
}

// Interactive reports whether both stdin and stdout are terminals. Without a
// terminal no review can run; callers skip the statement instead.
func (c *Console) Interactive() bool { return c.interactive }

// ShowPanel renders the diagnostic summary table.
func (c *Console) ShowPanel(result sanity.Result) {
	rows := [][]string{
		{"Period", result.PeriodStart + " to " + result.PeriodEnd},
		{"Transactions", fmt.Sprintf("%d kept / %d extracted (%d dropped)",
			result.KeptCount, result.ExtractedCount, result.DroppedCount)},
		{"Total credits", result.TotalCredits.StringFixed(2)},
		{"Total debits", result.TotalDebits.StringFixed(2)},
		{"Net movement", result.NetMovement.StringFixed(2)},
		{"Starting balance", decimalText(result.StartingBalance)},
		{"Ending balance", decimalText(result.EndingBalance)},
		{"Reconciled end", decimalText(result.ReconciledEnd)},
		{"Delta", decimalText(result.Delta)},
		{"Reconciliation", string(result.Reconciliation)},
		{"Quality", fmt.Sprintf("%d/100 (%s)", result.QualityScore, result.QualityLabel)},
	}
	for _, d := range result.Deductions {
		rows = append(rows, []string{"Deduction", fmt.Sprintf("%d: %s", d.Points, d.Reason)})
	}
	fmt.Fprintln(c.out, renderTable(result.Name, []string{"Field", "Value"}, rows,
		[]columnAlignment{alignLeft, alignRight}))
	for _, w := range result.Warnings {
		fmt.Fprintf(c.out, "  ! %s\n", w)
	}
}

// ShowTransactions renders the transactions at the given indices. With page
// information present, one table per source page is rendered, titled with the
// page's own and cumulative credit/debit totals.
func (c *Console) ShowTransactions(st *statement.Statement, indices []int) {
	groups := sanity.GroupPages(st, indices)
	if groups == nil {
		c.transactionTable("", st, indices)
		return
	}
	for _, g := range groups {
		c.transactionTable(g.Summary(), st, g.Indices)
	}
}

func (c *Console) transactionTable(title string, st *statement.Statement, indices []int) {
	rows := make([][]string, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(st.Transactions) {
			continue
		}
		tx := st.Transactions[i]
		amount := ""
		if tx.Amount != nil {
			amount = tx.Amount.StringFixed(2)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1), tx.PostedAt, amount, tx.TrnType, tx.Name, tx.Memo,
		})
	}
	fmt.Fprintln(c.out, renderTable(title,
		[]string{"#", "Date", "Amount", "Type", "Name", "Memo"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}))
}

// Select prints a numbered menu and returns the chosen value. Separator
// choices render as headings and take no number.
func (c *Console) Select(message string, choices []review.Choice) (string, error) {
	for {
		fmt.Fprintf(c.out, "\n%s\n", message)
		options := c.printChoices(choices)
		line, err := c.readLine("> ")
		if err != nil {
			return "", err
		}
		index, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil || index < 1 || index > len(options) {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d.\n", len(options))
			continue
		}
		return options[index-1].Value, nil
	}
}

// MultiSelect prints a numbered menu and returns all chosen values.
// Selections are comma or space separated; "all" selects everything; an
// empty line selects nothing.
func (c *Console) MultiSelect(message string, choices []review.Choice) ([]string, error) {
	fmt.Fprintf(c.out, "\n%s (e.g. \"1,3\", \"all\", empty for none)\n", message)
	options := c.printChoices(choices)
	for {
		line, err := c.readLine("> ")
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, nil
		}
		if strings.EqualFold(line, "all") {
			values := make([]string, len(options))
			for i, choice := range options {
				values[i] = choice.Value
			}
			return values, nil
		}

		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
		values := make([]string, 0, len(fields))
		valid := true
		for _, field := range fields {
			index, convErr := strconv.Atoi(field)
			if convErr != nil || index < 1 || index > len(options) {
				fmt.Fprintf(c.out, "Invalid selection %q; enter numbers between 1 and %d.\n", field, len(options))
				valid = false
				break
			}
			values = append(values, options[index-1].Value)
		}
		if !valid {
			continue
		}
		return values, nil
	}
}

// printChoices renders the menu and returns the selectable options in their
// numbered order. Separators print as unnumbered heading lines.
func (c *Console) printChoices(choices []review.Choice) []review.Choice {
	options := make([]review.Choice, 0, len(choices))
	for _, choice := range choices {
		if choice.Separator {
			fmt.Fprintf(c.out, "  --- %s ---\n", choice.Label)
			continue
		}
		options = append(options, choice)
		fmt.Fprintf(c.out, "  %d) %s\n", len(options), choice.Label)
	}
	return options
}

// Input reads one line of operator text.
func (c *Console) Input(message, placeholder string) (string, error) {
	fmt.Fprintf(c.out, "%s\n", message)
	return c.readLine("> ")
}

// Confirm asks a yes/no question; empty input takes the fallback.
func (c *Console) Confirm(message string, fallback bool) (bool, error) {
	hint := "y/N"
	if fallback {
		hint = "Y/n"
	}
	for {
		line, err := c.readLine(fmt.Sprintf("%s [%s] ", message, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return fallback, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(c.out, "Answer y or n.")
		}
	}
}

// Notify prints a one-line message.
func (c *Console) Notify(message string) {
	fmt.Fprintf(c.out, "%s\n", message)
}

// readLine reads one line. EOF and the "q" escape become a user abort.
func (c *Console) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) != "" {
			return line, nil
		}
		return "", stage.ErrAborted
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.EqualFold(strings.TrimSpace(line), "q") {
		return "", stage.ErrAborted
	}
	return line, nil
}

func decimalText(d *decimal.Decimal) string {
	if d == nil {
		return "n/a"
	}
	return d.StringFixed(2)
}
