package stage_test

import (
	"errors"
	"fmt"
	"testing"

	"pdf2ofx/internal/stage"
)

func TestFailureErrorIncludesStageAndHint(t *testing.T) {
	f := stage.NewFailure(stage.Extraction, "provider failed", "check the API key", nil)
	got := f.Error()
	want := "[EXTRACTION] provider failed (check the API key)"
	if got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	noHint := stage.NewFailure(stage.Write, "disk full", "", nil)
	if noHint.Error() != "[WRITE] disk full" {
		t.Fatalf("Error() without hint = %q", noHint.Error())
	}
}

func TestFailureUnwrapsSentinel(t *testing.T) {
	err := stage.WrapNormalization(stage.ErrUnrecognizedSchema, "top-level array")
	if !errors.Is(err, stage.ErrUnrecognizedSchema) {
		t.Fatal("expected errors.Is to match the schema sentinel")
	}

	var f *stage.Failure
	if !errors.As(err, &f) {
		t.Fatal("expected errors.As to find a *Failure")
	}
	if f.Stage != stage.Normalize {
		t.Fatalf("stage = %s, want NORMALIZE", f.Stage)
	}
}

func TestAsFailureFallback(t *testing.T) {
	plain := fmt.Errorf("boom")
	f := stage.AsFailure(plain, stage.Preflight)
	if f.Stage != stage.Preflight {
		t.Fatalf("fallback stage = %s, want PREFLIGHT", f.Stage)
	}
	if f.Message != "boom" {
		t.Fatalf("message = %q", f.Message)
	}

	wrapped := fmt.Errorf("outer: %w", stage.NewFailure(stage.Validate, "bad period", "", nil))
	f = stage.AsFailure(wrapped, stage.Preflight)
	if f.Stage != stage.Validate {
		t.Fatalf("stage = %s, want VALIDATE", f.Stage)
	}
}

func TestAllIsCopy(t *testing.T) {
	first := stage.All()
	first[0] = stage.Stage("MUTATED")
	if stage.All()[0] != stage.Preflight {
		t.Fatal("All must return a fresh copy")
	}
}
