package runner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"pdf2ofx/internal/artifacts"
	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/config"
	"pdf2ofx/internal/extraction"
	"pdf2ofx/internal/fileutil"
	"pdf2ofx/internal/ledger"
	"pdf2ofx/internal/logging"
	"pdf2ofx/internal/ofx"
	"pdf2ofx/internal/review"
	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/stage"
)

// Deps wires the runner's collaborators.
type Deps struct {
	Config    *config.Config
	Store     *artifacts.Store
	Ledger    *ledger.Store
	Extractor extraction.Extractor
	Prompter  review.Prompter
	// Interactive reports whether a terminal is attached. Without one,
	// statements that need review are skipped rather than blocking.
	Interactive bool
	Logger      *slog.Logger
}

// Runner processes batches of documents end to end.
type Runner struct {
	cfg         *config.Config
	store       *artifacts.Store
	ledger      *ledger.Store
	extractor   extraction.Extractor
	prompter    review.Prompter
	interactive bool
	logger      *slog.Logger
}

// New builds a runner.
func New(deps Deps) *Runner {
	return &Runner{
		cfg:         deps.Config,
		store:       deps.Store,
		ledger:      deps.Ledger,
		extractor:   deps.Extractor,
		prompter:    deps.Prompter,
		interactive: deps.Interactive,
		logger:      logging.NewComponentLogger(deps.Logger, "runner"),
	}
}

// DocumentOutcome is the terminal state of one document within a batch.
type DocumentOutcome struct {
	Path     string
	Slug     string
	Name     string
	Accepted bool
	Skipped  bool
	Result   sanity.Result
	OFXPath  string
	Err      error
}

// BatchReport summarizes one batch run.
type BatchReport struct {
	RunID     string
	Outcomes  []DocumentOutcome
	Retention artifacts.RetentionReport
	Aborted   bool
}

// ProcessBatch runs every document through the pipeline. Per-document
// failures are recorded and the batch continues; an operator abort stops the
// batch immediately, preserving everything already written.
func (r *Runner) ProcessBatch(ctx context.Context, paths []string) (BatchReport, error) {
	run, err := r.ledger.BeginRun(ctx, ledger.KindProcess)
	if err != nil {
		return BatchReport{}, err
	}
	report := BatchReport{RunID: run.RunID}

	for _, path := range paths {
		outcome := r.processOne(ctx, run.RunID, path)
		report.Outcomes = append(report.Outcomes, outcome)
		run.Documents++
		switch {
		case outcome.Err != nil:
			run.Failed++
		case outcome.Accepted:
			run.Accepted++
		default:
			run.Skipped++
		}
		if errors.Is(outcome.Err, stage.ErrAborted) || ctx.Err() != nil {
			report.Aborted = true
			break
		}
	}

	// An abort preserves every artifact already written; retention only
	// runs over batches that finished.
	if !report.Aborted {
		report.Retention = artifacts.ApplyRetention(r.store, retentionDecisions(report.Outcomes), r.logger)
	}

	if err := r.ledger.FinishRun(ctx, run); err != nil {
		r.logger.Warn("failed to finish ledger run", logging.Error(err))
	}
	if report.Aborted {
		return report, stage.ErrAborted
	}
	return report, nil
}

func retentionDecisions(outcomes []DocumentOutcome) []artifacts.Decision {
	var decisions []artifacts.Decision
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		decisions = append(decisions, artifacts.Decision{Slug: o.Slug, Name: o.Name, Result: o.Result})
	}
	return decisions
}

// processOne is the per-statement error boundary: every stage failure is
// captured in the outcome and the ledger, never propagated, except the
// operator abort.
func (r *Runner) processOne(ctx context.Context, runID, path string) DocumentOutcome {
	slug := artifacts.Slug(path)
	name := filepath.Base(path)
	outcome := DocumentOutcome{Path: path, Slug: slug, Name: name}
	logger := r.logger.With(logging.String("statement", name), logging.String("slug", slug))

	raw, err := r.loadOrExtract(ctx, slug, path)
	if err != nil {
		return r.fail(ctx, runID, outcome, err, logger)
	}

	prepared, err := Prepare(raw, slug, name, canonical.Defaults{
		AccountID:   r.cfg.Account.AccountID,
		BankID:      r.cfg.Account.BankID,
		AccountType: r.cfg.Account.AccountType,
		Currency:    r.cfg.Account.Currency,
	})
	if err != nil {
		return r.fail(ctx, runID, outcome, err, logger)
	}
	for _, w := range prepared.Warnings {
		logger.Warn("normalization warning", logging.String("detail", w))
	}

	result, accepted, err := r.Review(ctx, prepared, false)
	if err != nil {
		return r.fail(ctx, runID, outcome, err, logger)
	}
	outcome.Result = result
	outcome.Accepted = accepted
	outcome.Skipped = !accepted

	if err := r.PersistDecision(prepared, result, path); err != nil {
		return r.fail(ctx, runID, outcome, err, logger)
	}

	if accepted {
		ofxPath, err := r.EmitStatement(prepared)
		if err != nil {
			return r.fail(ctx, runID, outcome, err, logger)
		}
		outcome.OFXPath = ofxPath
		logger.Info("statement accepted",
			logging.String("ofx", ofxPath),
			logging.Int("transactions", len(prepared.Statement.Transactions)),
			logging.String("reconciliation", string(result.Reconciliation)),
		)
	} else {
		logger.Info("statement skipped", logging.String("reconciliation", string(result.Reconciliation)))
	}

	r.record(ctx, runID, outcome, prepared)
	return outcome
}

// loadOrExtract reuses a previously captured raw artifact when present so a
// repeat run never pays for extraction twice.
func (r *Runner) loadOrExtract(ctx context.Context, slug, path string) (canonical.Payload, error) {
	raw, err := r.store.ReadRaw(slug)
	if err == nil {
		r.logger.Debug("reusing raw artifact", logging.String("slug", slug))
		return raw, nil
	}
	if !os.IsNotExist(err) {
		return nil, stage.NewFailure(stage.Preflight, "cannot read raw artifact",
			"check staging_dir permissions", err)
	}

	raw, err = r.extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := r.store.WriteRaw(slug, raw); err != nil {
		return nil, stage.NewFailure(stage.Write, "cannot persist raw artifact",
			"check staging_dir permissions and disk space", err)
	}
	return raw, nil
}

// Review runs the review gate for one prepared statement and returns its
// terminal result. Exported for the recovery session manager, which drives
// the same gate over reconstructed candidates.
func (r *Runner) Review(ctx context.Context, prepared *Prepared, inRecovery bool) (sanity.Result, bool, error) {
	if r.cfg.Review.AutoAcceptClean {
		result, err := sanity.ComputeSafely(sanity.Input{
			Statement:      prepared.Statement,
			Name:           prepared.Name,
			ExtractedCount: prepared.ExtractedCount,
			Raw:            prepared.Raw,
			Issues:         prepared.Issues,
		})
		if err != nil {
			return sanity.Result{}, false, err
		}
		if clean, _ := result.CleanForDeletion(); clean && len(result.Warnings) == 0 {
			return result, true, nil
		}
	}

	if !r.interactive {
		result, err := sanity.ComputeSafely(sanity.Input{
			Statement:      prepared.Statement,
			Name:           prepared.Name,
			ExtractedCount: prepared.ExtractedCount,
			Raw:            prepared.Raw,
			Issues:         prepared.Issues,
		})
		if err != nil {
			return sanity.Result{}, false, err
		}
		result.Skipped = true
		r.logger.Warn("no terminal attached; statement skipped without review",
			logging.String("statement", prepared.Name),
			logging.String(logging.FieldErrorHint, "re-run interactively or set review.auto_accept_clean"),
		)
		return result, false, nil
	}

	session := review.NewSession(prepared.Statement, r.prompter, r.logger, review.Options{
		Name:           prepared.Name,
		ExtractedCount: prepared.ExtractedCount,
		Raw:            prepared.Raw,
		Issues:         prepared.Issues,
		InRecovery:     inRecovery,
	})
	out, err := session.Run(ctx)
	if err != nil {
		return sanity.Result{}, false, err
	}
	prepared.Statement = out.Statement
	return out.Result, out.Accepted, nil
}

// PersistDecision writes the canonical artifact and sidecar after every
// terminal Accept/Skip. The raw artifact is untouched.
func (r *Runner) PersistDecision(prepared *Prepared, result sanity.Result, sourcePath string) error {
	if err := r.store.WriteCanonical(prepared.Slug, prepared.Statement); err != nil {
		return stage.NewFailure(stage.Write, "cannot persist canonical artifact",
			"check staging_dir permissions and disk space", err)
	}
	meta := artifacts.Meta{
		Source:         sourcePath,
		Name:           prepared.Name,
		ExtractedCount: prepared.ExtractedCount,
		Status:         string(result.Reconciliation),
		QualityLabel:   result.QualityLabel,
		Skipped:        result.Skipped,
		ForcedAccept:   result.ForcedAccept,
	}
	if err := r.store.WriteMeta(prepared.Slug, meta); err != nil {
		return stage.NewFailure(stage.Write, "cannot persist artifact sidecar",
			"check staging_dir permissions and disk space", err)
	}
	return nil
}

// EmitStatement encodes and writes the OFX file for an accepted statement.
func (r *Runner) EmitStatement(prepared *Prepared) (string, error) {
	data, err := ofx.Emit(prepared.Statement, ofx.Options{
		Version: r.cfg.OFX.Version,
		Org:     r.cfg.OFX.Org,
		FID:     r.cfg.OFX.FID,
	})
	if err != nil {
		return "", stage.NewFailure(stage.Emit, "cannot encode OFX",
			"inspect the canonical artifact for malformed fields", err)
	}
	path := filepath.Join(r.cfg.Paths.OutputDir, ofx.FileName(prepared.Statement))
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return "", stage.NewFailure(stage.Write, "cannot write OFX file",
			"check output_dir permissions and disk space", err)
	}
	return path, nil
}

func (r *Runner) record(ctx context.Context, runID string, outcome DocumentOutcome, prepared *Prepared) {
	rec := &ledger.Record{
		RunID:        runID,
		Slug:         outcome.Slug,
		Name:         outcome.Name,
		Status:       string(outcome.Result.Reconciliation),
		QualityScore: outcome.Result.QualityScore,
		QualityLabel: outcome.Result.QualityLabel,
		Skipped:      outcome.Result.Skipped,
		ForcedAccept: outcome.Result.ForcedAccept,
		OFXPath:      outcome.OFXPath,
	}
	if prepared != nil && prepared.Statement != nil {
		rec.Transactions = len(prepared.Statement.Transactions)
	}
	if err := r.ledger.RecordStatement(ctx, rec); err != nil {
		r.logger.Warn("failed to record statement in ledger", logging.Error(err))
	}
}

// fail records a per-statement failure. The identity, stage and hint travel
// in the failure; transaction content never does.
func (r *Runner) fail(ctx context.Context, runID string, outcome DocumentOutcome, err error, logger *slog.Logger) DocumentOutcome {
	outcome.Err = err
	if errors.Is(err, stage.ErrAborted) {
		logger.Info("run aborted by operator")
		return outcome
	}

	failure := stage.AsFailure(err, stage.Preflight)
	logger.Error("statement failed",
		logging.String("stage", string(failure.Stage)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, failure.Hint),
	)
	rec := &ledger.Record{
		RunID:          runID,
		Slug:           outcome.Slug,
		Name:           outcome.Name,
		Status:         "FAILED",
		FailureStage:   string(failure.Stage),
		FailureMessage: failure.Message,
	}
	if recErr := r.ledger.RecordStatement(ctx, rec); recErr != nil {
		logger.Warn("failed to record failure in ledger", logging.Error(recErr))
	}
	return outcome
}
