package ledger_test

import (
	"context"
	"path/filepath"
	"testing"

	"pdf2ofx/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.OpenPath(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, ledger.KindProcess)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.RunID == "" || run.ID == 0 {
		t.Fatalf("run not populated: %+v", run)
	}

	run.Documents = 3
	run.Accepted = 2
	run.Skipped = 1
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := store.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("history = %d runs", len(runs))
	}
	got := runs[0]
	if got.RunID != run.RunID || got.Kind != ledger.KindProcess {
		t.Fatalf("history run = %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("finished_at not persisted")
	}
	if got.Documents != 3 || got.Accepted != 2 || got.Skipped != 1 {
		t.Fatalf("counters = %+v", got)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.BeginRun(ctx, ledger.KindProcess)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.BeginRun(ctx, ledger.KindRecover)
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("history = %d runs", len(runs))
	}
	if runs[0].RunID != second.RunID || runs[1].RunID != first.RunID {
		t.Fatalf("order wrong: %s then %s", runs[0].RunID, runs[1].RunID)
	}

	limited, err := store.History(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].RunID != second.RunID {
		t.Fatalf("limit ignored: %v", limited)
	}
}

func TestStatementRecords(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, ledger.KindProcess)
	if err != nil {
		t.Fatal(err)
	}

	accepted := &ledger.Record{
		RunID: run.RunID, Slug: "s1", Name: "one.pdf",
		Status: "OK", QualityScore: 100, QualityLabel: "GOOD",
		Transactions: 12, OFXPath: "/ofx/one.ofx",
	}
	failed := &ledger.Record{
		RunID: run.RunID, Slug: "s2", Name: "two.pdf",
		Status: "FAILED", FailureStage: "EXTRACTION", FailureMessage: "provider failed",
	}
	for _, rec := range []*ledger.Record{accepted, failed} {
		if err := store.RecordStatement(ctx, rec); err != nil {
			t.Fatalf("RecordStatement: %v", err)
		}
	}

	records, err := store.RunRecords(ctx, run.RunID)
	if err != nil {
		t.Fatalf("RunRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Slug != "s1" || records[0].OFXPath != "/ofx/one.ofx" {
		t.Fatalf("first record = %+v", records[0])
	}
	if records[1].FailureStage != "EXTRACTION" || records[1].OFXPath != "" {
		t.Fatalf("second record = %+v", records[1])
	}
}

func TestLatestRecordForSlug(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, ledger.KindProcess)
	if err != nil {
		t.Fatal(err)
	}

	if rec, err := store.LatestRecordForSlug(ctx, "s1"); err != nil || rec != nil {
		t.Fatalf("unknown slug: rec=%v err=%v", rec, err)
	}

	older := &ledger.Record{RunID: run.RunID, Slug: "s1", Name: "a.pdf", Status: "WARNING", Skipped: true}
	newer := &ledger.Record{RunID: run.RunID, Slug: "s1", Name: "a.pdf", Status: "OK", OFXPath: "/ofx/a.ofx"}
	for _, rec := range []*ledger.Record{older, newer} {
		if err := store.RecordStatement(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := store.LatestRecordForSlug(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.Status != "OK" || latest.Skipped {
		t.Fatalf("latest = %+v", latest)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	first, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	run, err := first.BeginRun(context.Background(), ledger.KindProcess)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := ledger.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	runs, err := second.History(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != run.RunID {
		t.Fatalf("data lost across reopen: %v", runs)
	}
}
