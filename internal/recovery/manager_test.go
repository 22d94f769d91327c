package recovery_test

import (
	"context"
	"os"
	"testing"

	"pdf2ofx/internal/artifacts"
	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/ledger"
	"pdf2ofx/internal/logging"
	"pdf2ofx/internal/recovery"
	"pdf2ofx/internal/review"
	"pdf2ofx/internal/runner"
	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/statement"
	"pdf2ofx/internal/testsupport"
)

// fakePrompter scripts the operator. Selection answers and confirms pop in
// order; MultiSelect answers are produced from the offered choices so tests
// can react to whatever scope the manager presents.
type fakePrompter struct {
	t          *testing.T
	selects    []string
	confirms   []bool
	multis     []func(choices []review.Choice) []string
	multiSizes []int
	notices    []string
}

func (f *fakePrompter) ShowPanel(sanity.Result)                      {}
func (f *fakePrompter) ShowTransactions(*statement.Statement, []int) {}
func (f *fakePrompter) Notify(message string)                        { f.notices = append(f.notices, message) }

func (f *fakePrompter) Input(message, placeholder string) (string, error) {
	f.t.Fatalf("unexpected Input(%q)", message)
	return "", nil
}

func (f *fakePrompter) Select(message string, choices []review.Choice) (string, error) {
	if len(f.selects) == 0 {
		f.t.Fatalf("unexpected Select(%q)", message)
	}
	value := f.selects[0]
	f.selects = f.selects[1:]
	return value, nil
}

func (f *fakePrompter) MultiSelect(message string, choices []review.Choice) ([]string, error) {
	f.multiSizes = append(f.multiSizes, len(choices))
	if len(f.multis) == 0 {
		f.t.Fatalf("unexpected MultiSelect(%q)", message)
	}
	pick := f.multis[0]
	f.multis = f.multis[1:]
	return pick(choices), nil
}

func (f *fakePrompter) Confirm(message string, fallback bool) (bool, error) {
	if len(f.confirms) == 0 {
		f.t.Fatalf("unexpected Confirm(%q)", message)
	}
	ok := f.confirms[0]
	f.confirms = f.confirms[1:]
	return ok, nil
}

func all(choices []review.Choice) []string {
	values := make([]string, len(choices))
	for i, c := range choices {
		values[i] = c.Value
	}
	return values
}

func first(choices []review.Choice) []string { return []string{choices[0].Value} }

func none([]review.Choice) []string { return nil }

func recoverablePayload(acct string) canonical.Payload {
	return map[string]any{
		"bank_name":        "Fake Bank",
		"account_number":   acct,
		"start_date":       "2024-01-01",
		"end_date":         "2024-01-31",
		"starting_balance": 0.0,
		"ending_balance":   15.0,
		"currency":         "EUR",
		"transactions": []any{
			map[string]any{"operation_date": "2024-01-05", "amount": 20.0, "description": "SALARY"},
			map[string]any{"operation_date": "2024-01-06", "amount": -5.0, "description": "CARD"},
		},
	}
}

type fixture struct {
	manager *recovery.Manager
	store   *artifacts.Store
	ledger  *ledger.Store
	outDir  string
}

func newFixture(t *testing.T, prompter *fakePrompter, seeds map[string]canonical.Payload) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenArtifacts(t, cfg)
	led := testsupport.MustOpenLedger(t, cfg)

	for name, payload := range seeds {
		slug := artifacts.Slug(name)
		if err := store.WriteRaw(slug, payload); err != nil {
			t.Fatalf("seed raw: %v", err)
		}
		if err := store.WriteMeta(slug, artifacts.Meta{Name: name, Source: name, Status: "SKIPPED"}); err != nil {
			t.Fatalf("seed meta: %v", err)
		}
	}

	run := runner.New(runner.Deps{
		Config:      cfg,
		Store:       store,
		Ledger:      led,
		Prompter:    prompter,
		Interactive: true,
		Logger:      logging.NewNop(),
	})
	return &fixture{
		manager: recovery.New(cfg, store, led, run, prompter, logging.NewNop()),
		store:   store,
		ledger:  led,
		outDir:  cfg.Paths.OutputDir,
	}
}

func TestRunEmptyStaging(t *testing.T) {
	prompter := &fakePrompter{t: t}
	fx := newFixture(t, prompter, nil)

	if err := fx.manager.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(prompter.notices) != 1 || prompter.notices[0] != "No recovery candidates in staging." {
		t.Fatalf("notices = %v", prompter.notices)
	}
}

func TestDiscoverSkipsBrokenCandidates(t *testing.T) {
	prompter := &fakePrompter{t: t}
	fx := newFixture(t, prompter, map[string]canonical.Payload{
		"good.pdf": recoverablePayload("A1"),
		"odd.pdf":  map[string]any{"totally": "unexpected"},
	})

	candidates, err := fx.manager.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("candidates = %d", len(candidates))
	}
	if candidates[0].Prepared.Name != "good.pdf" {
		t.Fatalf("candidate = %q", candidates[0].Prepared.Name)
	}
}

func TestRunAcceptAndHandOff(t *testing.T) {
	prompter := &fakePrompter{
		t:        t,
		multis:   []func([]review.Choice) []string{all},
		selects:  []string{"accept", "accept"},
		confirms: []bool{true},
	}
	fx := newFixture(t, prompter, map[string]canonical.Payload{
		"jan.pdf": recoverablePayload("A1"),
		"feb.pdf": recoverablePayload("A2"),
	})

	if err := fx.manager.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(fx.outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("OFX files written = %d", len(entries))
	}

	runs, err := fx.ledger.History(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Kind != ledger.KindRecover {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Documents != 2 || runs[0].Accepted != 2 {
		t.Fatalf("run counters = %+v", runs[0])
	}
	records, err := fx.ledger.RunRecords(context.Background(), runs[0].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	for _, rec := range records {
		if rec.OFXPath == "" {
			t.Fatalf("record without OFX path: %+v", rec)
		}
	}
}

func TestRunGoBackNarrowsScope(t *testing.T) {
	prompter := &fakePrompter{
		t:        t,
		multis:   []func([]review.Choice) []string{first, none},
		selects:  []string{"accept"},
		confirms: []bool{false},
	}
	fx := newFixture(t, prompter, map[string]canonical.Payload{
		"jan.pdf": recoverablePayload("A1"),
		"feb.pdf": recoverablePayload("A2"),
	})

	if err := fx.manager.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// After GoBack the list narrows to the candidates already reviewed.
	if len(prompter.multiSizes) != 2 || prompter.multiSizes[0] != 2 || prompter.multiSizes[1] != 1 {
		t.Fatalf("multi sizes = %v", prompter.multiSizes)
	}

	// Declining the hand-off leaves the output directory empty.
	entries, err := os.ReadDir(fx.outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("OFX files written = %d", len(entries))
	}
}

func TestRunSkipDecisionRecordedOnHandOff(t *testing.T) {
	prompter := &fakePrompter{
		t:        t,
		multis:   []func([]review.Choice) []string{all},
		selects:  []string{"skip"},
		confirms: []bool{true},
	}
	fx := newFixture(t, prompter, map[string]canonical.Payload{
		"jan.pdf": recoverablePayload("A1"),
	})

	if err := fx.manager.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := fx.ledger.History(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].Skipped != 1 || runs[0].Accepted != 0 {
		t.Fatalf("run counters = %+v", runs[0])
	}
	records, err := fx.ledger.RunRecords(context.Background(), runs[0].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].OFXPath != "" {
		t.Fatalf("records = %+v", records)
	}
	// The skipped statement stays recoverable.
	slug := artifacts.Slug("jan.pdf")
	if _, err := fx.store.ReadRaw(slug); err != nil {
		t.Fatalf("raw artifact must survive a skip: %v", err)
	}
}
