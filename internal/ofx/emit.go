package ofx

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/currency"

	"pdf2ofx/internal/statement"
)

// OFX element length limits.
const (
	nameMax   = 32
	memoMax   = 254
	bankIDMax = 9
)

// currencyAliases maps common display spellings to ISO 4217 codes. CURDEF
// must be a valid ISO code; anything unrecognized becomes XXX.
var currencyAliases = map[string]string{
	"EURO":    "EUR",
	"DOLLAR":  "USD",
	"DOLLARS": "USD",
	"POUND":   "GBP",
	"POUNDS":  "GBP",
}

// Options configure emission.
type Options struct {
	// Version selects the wire format: "2" for OFX 2 XML, "1" for OFX 1
	// SGML.
	Version string
	Org     string
	FID     string
	// Now overrides the DTSERVER clock; nil uses time.Now.
	Now func() time.Time
}

// Emit encodes one accepted statement. The statement must have survived
// validation: every transaction carries a fitid, a posted date and an
// amount.
func Emit(st *statement.Statement, opts Options) ([]byte, error) {
	if st == nil || len(st.Transactions) == 0 {
		return nil, fmt.Errorf("nothing to emit")
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	root := buildDocument(st, opts, now().UTC())

	var buf strings.Builder
	switch opts.Version {
	case "", "2":
		buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
		buf.WriteString(`<?OFX OFXHEADER="200" VERSION="200" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>` + "\n")
		renderNode(&buf, root, 0, true)
	case "1":
		buf.WriteString(sgmlHeader)
		renderNode(&buf, root, 0, false)
	default:
		return nil, fmt.Errorf("unsupported ofx version %q", opts.Version)
	}
	return []byte(buf.String()), nil
}

const sgmlHeader = "OFXHEADER:100\r\nDATA:OFXSGML\r\nVERSION:102\r\nSECURITY:NONE\r\nENCODING:USASCII\r\nCHARSET:1252\r\nCOMPRESSION:NONE\r\nOLDFILEUID:NONE\r\nNEWFILEUID:NONE\r\n\r\n"

func buildDocument(st *statement.Statement, opts Options, serverTime time.Time) *node {
	sonrs := el("SONRS",
		statusOK(),
		leaf("DTSERVER", formatDateTime(serverTime)),
		leaf("LANGUAGE", "ENG"),
	)
	if opts.Org != "" || opts.FID != "" {
		fi := el("FI")
		if opts.Org != "" {
			fi.children = append(fi.children, leaf("ORG", opts.Org))
		}
		if opts.FID != "" {
			fi.children = append(fi.children, leaf("FID", opts.FID))
		}
		sonrs.children = append(sonrs.children, fi)
	}

	tranList := el("BANKTRANLIST",
		leaf("DTSTART", formatDate(st.Period.StartDate)),
		leaf("DTEND", formatDate(st.Period.EndDate)),
	)
	for i := range st.Transactions {
		tranList.children = append(tranList.children, buildTransaction(&st.Transactions[i]))
	}

	stmtrs := el("STMTRS",
		leaf("CURDEF", resolveCurrency(st.Account.Currency)),
		el("BANKACCTFROM",
			leaf("BANKID", clip(st.Account.BankID, bankIDMax)),
			leaf("ACCTID", st.Account.AccountID),
			leaf("ACCTTYPE", st.Account.AccountType),
		),
		tranList,
		el("LEDGERBAL",
			leaf("BALAMT", "0"),
			leaf("DTASOF", formatDate(st.Period.EndDate)),
		),
	)

	return el("OFX",
		el("SIGNONMSGSRSV1", sonrs),
		el("BANKMSGSRSV1",
			el("STMTTRNRS",
				leaf("TRNUID", "1"),
				statusOK(),
				stmtrs,
			),
		),
	)
}

func buildTransaction(tx *statement.Transaction) *node {
	name, memo := SplitNameMemo(tx.Name, tx.Memo)
	n := el("STMTTRN",
		leaf("TRNTYPE", tx.TrnType),
		leaf("DTPOSTED", formatDate(tx.PostedAt)),
		leaf("TRNAMT", tx.AmountValue().String()),
		leaf("FITID", tx.FITID),
		leaf("NAME", name),
	)
	if memo != "" {
		n.children = append(n.children, leaf("MEMO", memo))
	}
	return n
}

func statusOK() *node {
	return el("STATUS", leaf("CODE", "0"), leaf("SEVERITY", "INFO"))
}

// SplitNameMemo fits name into the 32-character NAME element, truncating at
// a word boundary when one falls past the tenth character. The untruncated
// text is preserved in MEMO, joined to any existing memo.
func SplitNameMemo(name, memo string) (string, string) {
	if name == "" || len(name) <= nameMax {
		return name, clip(memo, memoMax)
	}
	truncated := name[:nameMax]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 10 {
		truncated = truncated[:lastSpace]
	}
	fullMemo := name
	if memo != "" {
		fullMemo = name + " | " + memo
	}
	return truncated, clip(fullMemo, memoMax)
}

func resolveCurrency(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := currencyAliases[code]; ok {
		return alias
	}
	if code == "" {
		return "XXX"
	}
	if _, err := currency.ParseISO(code); err != nil {
		return "XXX"
	}
	return code
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// formatDate renders an ISO date as an OFX local-midnight datetime.
func formatDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return "19700101000000"
	}
	return t.Format("20060102") + "000000"
}

func formatDateTime(t time.Time) string {
	return t.Format("20060102150405")
}

// node is a minimal element tree rendered either as XML (closed leaf tags)
// or OFX 1 SGML (open leaf tags).
type node struct {
	name     string
	text     string
	children []*node
}

func el(name string, children ...*node) *node {
	return &node{name: name, children: children}
}

func leaf(name, text string) *node {
	return &node{name: name, text: text}
}

func renderNode(buf *strings.Builder, n *node, depth int, closeLeaves bool) {
	indent := strings.Repeat("  ", depth)
	if len(n.children) == 0 {
		buf.WriteString(indent)
		buf.WriteString("<" + n.name + ">")
		buf.WriteString(escapeText(n.text))
		if closeLeaves {
			buf.WriteString("</" + n.name + ">")
		}
		buf.WriteString("\n")
		return
	}
	buf.WriteString(indent + "<" + n.name + ">\n")
	for _, child := range n.children {
		renderNode(buf, child, depth+1, closeLeaves)
	}
	buf.WriteString(indent + "</" + n.name + ">\n")
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}
