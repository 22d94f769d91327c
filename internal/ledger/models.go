package ledger

import "time"

// Run kinds.
const (
	KindProcess = "process"
	KindRecover = "recover"
)

// Run is one CLI invocation that touched statements.
type Run struct {
	ID         int64
	RunID      string
	Kind       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Documents  int
	Accepted   int
	Skipped    int
	Failed     int
}

// Record is the terminal outcome of one statement within a run. Exactly one
// of the outcome fields is meaningful: OFXPath for accepted statements,
// Skipped for operator skips, FailureStage/FailureMessage for stage
// failures.
type Record struct {
	ID             int64
	RunID          string
	Slug           string
	Name           string
	Status         string
	QualityScore   int
	QualityLabel   string
	Skipped        bool
	ForcedAccept   bool
	Transactions   int
	OFXPath        string
	FailureStage   string
	FailureMessage string
	CreatedAt      time.Time
}
