package stage

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinguished non-failure control flows and the
// per-statement fatal conditions. Callers classify with errors.Is.
var (
	// ErrUnrecognizedSchema: the raw payload matched no known schema variant.
	ErrUnrecognizedSchema = errors.New("unrecognized extraction schema")

	// ErrUnsupportedSchema: the payload matched a known variant this tool
	// deliberately does not map. Distinct from ErrUnrecognizedSchema so the
	// operator knows guessing was refused, not impossible.
	ErrUnsupportedSchema = errors.New("unsupported extraction schema")

	// ErrNoTransactions: validation kept zero transactions. Fatal for the
	// statement, never for the batch.
	ErrNoTransactions = errors.New("no usable transactions after validation")

	// ErrAborted: explicit operator cancellation of the whole run. Artifacts
	// already written are preserved; no cleanup is attempted.
	ErrAborted = errors.New("aborted by user")

	// ErrBackToList: the operator ended the current recovery review session.
	// Consumed by the recovery session manager only.
	ErrBackToList = errors.New("back to candidate list")
)

// WrapNormalization tags err with the NORMALIZE stage, preserving the
// schema sentinel for errors.Is checks.
func WrapNormalization(sentinel error, detail string) error {
	return &Failure{
		Stage:   Normalize,
		Message: fmt.Sprintf("%s: %s", sentinel.Error(), detail),
		Hint:    "inspect the raw payload in the staging directory",
		Err:     sentinel,
	}
}
