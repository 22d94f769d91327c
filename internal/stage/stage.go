package stage

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies one phase of the statement pipeline.
type Stage string

const (
	Preflight  Stage = "PREFLIGHT"
	Extraction Stage = "EXTRACTION"
	Normalize  Stage = "NORMALIZE"
	Validate   Stage = "VALIDATE"
	Sanity     Stage = "SANITY"
	Emit       Stage = "EMIT"
	Write      Stage = "WRITE"
)

var allStages = []Stage{Preflight, Extraction, Normalize, Validate, Sanity, Emit, Write}

// All returns the ordered list of pipeline stages.
func All() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// Failure is a per-statement stage failure. It names the stage, a message,
// and a short hint telling the operator what to do about it. Transaction
// content never appears in a Failure.
type Failure struct {
	Stage   Stage
	Message string
	Hint    string
	Err     error
}

func (f *Failure) Error() string {
	if f.Hint != "" {
		return fmt.Sprintf("[%s] %s (%s)", f.Stage, f.Message, f.Hint)
	}
	return fmt.Sprintf("[%s] %s", f.Stage, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure builds a Failure for the given stage.
func NewFailure(s Stage, message, hint string, err error) *Failure {
	return &Failure{Stage: s, Message: strings.TrimSpace(message), Hint: strings.TrimSpace(hint), Err: err}
}

// AsFailure extracts a *Failure from err, or wraps err into one attributed
// to fallback when it carries no stage information.
func AsFailure(err error, fallback Stage) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Stage: fallback, Message: err.Error(), Err: err}
}
