package sanity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/statement"
)

// PageGroup is one source page's slice of a transaction listing, with the
// page's own credit/debit totals and the running totals up to and including
// this page. Page 0 collects transactions without page information and sorts
// after every known page.
type PageGroup struct {
	Page              int
	Indices           []int
	Credits           decimal.Decimal
	Debits            decimal.Decimal
	CumulativeCredits decimal.Decimal
	CumulativeDebits  decimal.Decimal
}

// Label renders the page heading shown above the group.
func (g PageGroup) Label() string {
	if g.Page < 1 {
		return "Page ?"
	}
	return fmt.Sprintf("Page %d", g.Page)
}

// Summary is the one-line separator text: page label, the page's credit and
// absolute debit totals, then the cumulative totals.
func (g PageGroup) Summary() string {
	return fmt.Sprintf("%s | +%s  -%s | cum+ %s  cum- %s",
		g.Label(),
		groupedAmount(g.Credits), groupedAmount(g.Debits),
		groupedAmount(g.CumulativeCredits), groupedAmount(g.CumulativeDebits))
}

// HasPages reports whether any transaction at the given indices carries page
// information. Without it, listings stay flat.
func HasPages(st *statement.Statement, indices []int) bool {
	for _, i := range indices {
		if i >= 0 && i < len(st.Transactions) && st.Transactions[i].Page >= 1 {
			return true
		}
	}
	return false
}

// GroupPages partitions the given transaction indices by source page: known
// pages ascending, unknown last, listing order preserved within a group.
// Returns nil when no transaction has page information.
func GroupPages(st *statement.Statement, indices []int) []PageGroup {
	if !HasPages(st, indices) {
		return nil
	}

	byPage := make(map[int][]int)
	for _, i := range indices {
		if i < 0 || i >= len(st.Transactions) {
			continue
		}
		page := st.Transactions[i].Page
		if page < 1 {
			page = 0
		}
		byPage[page] = append(byPage[page], i)
	}

	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(a, b int) bool {
		// Unknown (0) after every known page.
		if pages[a] == 0 || pages[b] == 0 {
			return pages[b] == 0
		}
		return pages[a] < pages[b]
	})

	cumCredits := decimal.Zero
	cumDebits := decimal.Zero
	groups := make([]PageGroup, 0, len(pages))
	for _, page := range pages {
		credits := decimal.Zero
		debits := decimal.Zero
		for _, i := range byPage[page] {
			amount := decimal.Zero
			if a := st.Transactions[i].Amount; a != nil {
				amount = *a
			}
			if amount.IsNegative() {
				debits = debits.Add(amount.Abs())
			} else {
				credits = credits.Add(amount)
			}
		}
		cumCredits = cumCredits.Add(credits)
		cumDebits = cumDebits.Add(debits)
		groups = append(groups, PageGroup{
			Page:              page,
			Indices:           byPage[page],
			Credits:           credits,
			Debits:            debits,
			CumulativeCredits: cumCredits,
			CumulativeDebits:  cumDebits,
		})
	}
	return groups
}

// groupedAmount renders d with two decimal places and a thin space between
// thousands groups, matching the review panel style.
func groupedAmount(d decimal.Decimal) string {
	text := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(text, "-") {
		sign, text = "-", text[1:]
	}
	intPart, fracPart, _ := strings.Cut(text, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + fracPart
}
