package ofx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pdf2ofx/internal/ofx"
	"pdf2ofx/internal/statement"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleStatement() *statement.Statement {
	return &statement.Statement{
		SchemaVersion: statement.SchemaVersion,
		Account: statement.Account{
			AccountID:   "FR7612345",
			BankID:      "SOCIETE GENERALE",
			AccountType: "CHECKING",
			Currency:    "EUR",
		},
		Period: statement.Period{StartDate: "2024-01-01", EndDate: "2024-01-31"},
		Transactions: []statement.Transaction{
			{FITID: "f1", PostedAt: "2024-01-05", Amount: dec("-42.50"), Name: "CARD PAYMENT", TrnType: "DEBIT"},
			{FITID: "f2", PostedAt: "2024-01-10", Amount: dec("100"), Name: "TRANSFER", Memo: "ref 7", TrnType: "CREDIT"},
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
}

func TestEmitXML(t *testing.T) {
	out, err := ofx.Emit(sampleStatement(), ofx.Options{Version: "2", Org: "PDF2OFX", FID: "1", Now: fixedNow})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<?OFX OFXHEADER="200" VERSION="200"`,
		"<CURDEF>EUR</CURDEF>",
		"<BANKID>SOCIETE G</BANKID>",
		"<ACCTID>FR7612345</ACCTID>",
		"<ACCTTYPE>CHECKING</ACCTTYPE>",
		"<DTSTART>20240101000000</DTSTART>",
		"<DTEND>20240131000000</DTEND>",
		"<TRNTYPE>DEBIT</TRNTYPE>",
		"<TRNAMT>-42.5</TRNAMT>",
		"<FITID>f1</FITID>",
		"<MEMO>ref 7</MEMO>",
		"<BALAMT>0</BALAMT>",
		"<DTASOF>20240131000000</DTASOF>",
		"<TRNUID>1</TRNUID>",
		"<CODE>0</CODE>",
		"<SEVERITY>INFO</SEVERITY>",
		"<LANGUAGE>ENG</LANGUAGE>",
		"<ORG>PDF2OFX</ORG>",
		"<DTSERVER>20240201120000</DTSERVER>",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	if n := strings.Count(text, "<STMTTRN>"); n != 2 {
		t.Fatalf("STMTTRN count = %d", n)
	}
}

func TestEmitSGML(t *testing.T) {
	out, err := ofx.Emit(sampleStatement(), ofx.Options{Version: "1", Now: fixedNow})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	text := string(out)

	if !strings.HasPrefix(text, "OFXHEADER:100\r\n") {
		t.Fatalf("missing SGML header:\n%.120s", text)
	}
	if !strings.Contains(text, "VERSION:102") {
		t.Fatal("missing SGML version line")
	}
	if strings.Contains(text, "<?xml") {
		t.Fatal("SGML output must not carry an XML declaration")
	}
	// OFX 1 leaves leaf elements unclosed.
	if strings.Contains(text, "</FITID>") {
		t.Fatal("SGML leaf tags must stay open")
	}
	if !strings.Contains(text, "<FITID>f1") {
		t.Fatal("missing transaction id leaf")
	}
	// Aggregates still close.
	if !strings.Contains(text, "</OFX>") {
		t.Fatal("aggregate close tag missing")
	}
}

func TestEmitRejects(t *testing.T) {
	if _, err := ofx.Emit(nil, ofx.Options{}); err == nil {
		t.Fatal("nil statement must be rejected")
	}
	empty := sampleStatement()
	empty.Transactions = nil
	if _, err := ofx.Emit(empty, ofx.Options{}); err == nil {
		t.Fatal("empty statement must be rejected")
	}
	if _, err := ofx.Emit(sampleStatement(), ofx.Options{Version: "3"}); err == nil {
		t.Fatal("unknown version must be rejected")
	}
}

func TestEmitEscapesText(t *testing.T) {
	st := sampleStatement()
	st.Transactions[0].Name = "A&B <shop>"
	out, err := ofx.Emit(st, ofx.Options{Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "A&amp;B &lt;shop&gt;") {
		t.Fatalf("text not escaped:\n%s", out)
	}
}

func TestSplitNameMemo(t *testing.T) {
	// Short names pass through untouched.
	name, memo := ofx.SplitNameMemo("SHORT NAME", "existing")
	if name != "SHORT NAME" || memo != "existing" {
		t.Fatalf("short: %q / %q", name, memo)
	}

	// Long names truncate at a word boundary past character ten.
	long := "INTERNATIONAL WIRE TRANSFER FROM EMPLOYER XYZ"
	name, memo = ofx.SplitNameMemo(long, "")
	if len(name) > 32 {
		t.Fatalf("name too long: %q (%d)", name, len(name))
	}
	if strings.HasSuffix(name, " ") || !strings.HasPrefix(long, name) {
		t.Fatalf("bad truncation: %q", name)
	}
	if name != "INTERNATIONAL WIRE TRANSFER" {
		t.Fatalf("word boundary truncation = %q", name)
	}
	if memo != long {
		t.Fatalf("overflow memo = %q", memo)
	}

	// Existing memo is joined after the overflow.
	_, memo = ofx.SplitNameMemo(long, "ref 9")
	if memo != long+" | ref 9" {
		t.Fatalf("joined memo = %q", memo)
	}

	// No word boundary past ten characters: hard cut at 32.
	solid := strings.Repeat("X", 40)
	name, memo = ofx.SplitNameMemo(solid, "")
	if name != strings.Repeat("X", 32) {
		t.Fatalf("hard cut = %q", name)
	}
	if memo != solid {
		t.Fatalf("hard cut memo = %q", memo)
	}

	// Memo is clipped to its limit.
	_, memo = ofx.SplitNameMemo("ok", strings.Repeat("m", 300))
	if len(memo) != 254 {
		t.Fatalf("memo length = %d", len(memo))
	}
}

func TestCurrencyResolution(t *testing.T) {
	cases := map[string]string{
		"EUR":     "EUR",
		"euro":    "EUR",
		"DOLLARS": "USD",
		"pounds":  "GBP",
		"":        "XXX",
		"BOGUS":   "XXX",
		"usd":     "USD",
	}
	for raw, want := range cases {
		st := sampleStatement()
		st.Account.Currency = raw
		out, err := ofx.Emit(st, ofx.Options{Now: fixedNow})
		if err != nil {
			t.Fatalf("Emit(%q): %v", raw, err)
		}
		if !strings.Contains(string(out), "<CURDEF>"+want+"</CURDEF>") {
			t.Fatalf("currency %q: expected CURDEF %s in output", raw, want)
		}
	}
}

func TestFileName(t *testing.T) {
	st := sampleStatement()
	name := ofx.FileName(st)
	if !strings.HasPrefix(name, "FR7612345_2024-01-31_") || !strings.HasSuffix(name, ".ofx") {
		t.Fatalf("file name = %q", name)
	}

	// Same content, same name; different content, different name.
	if ofx.FileName(sampleStatement()) != name {
		t.Fatal("file name must be deterministic")
	}
	changed := sampleStatement()
	changed.Transactions[0].FITID = "other"
	if ofx.FileName(changed) == name {
		t.Fatal("content hash must change the name")
	}

	anon := sampleStatement()
	anon.Account.AccountID = "///"
	anon.Period.EndDate = ""
	name = ofx.FileName(anon)
	if !strings.HasPrefix(name, "statement_undated_") {
		t.Fatalf("fallback name = %q", name)
	}
}
