package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pdf2ofx/internal/artifacts"
	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/config"
	"pdf2ofx/internal/ledger"
	"pdf2ofx/internal/logging"
	"pdf2ofx/internal/review"
	"pdf2ofx/internal/runner"
	"pdf2ofx/internal/sanity"
	"pdf2ofx/internal/stage"
)

// Candidate is one recoverable raw payload with its reconstructed statement.
type Candidate struct {
	Slug     string
	Meta     artifacts.Meta
	Prepared *runner.Prepared
	// Decided is set once the candidate has a terminal result this run.
	Decided  bool
	Accepted bool
	Result   sanity.Result
}

// Manager drives recovery sessions over the staging directory.
type Manager struct {
	cfg      *config.Config
	store    *artifacts.Store
	ledger   *ledger.Store
	runner   *runner.Runner
	prompter review.Prompter
	logger   *slog.Logger
}

// New builds a recovery manager.
func New(cfg *config.Config, store *artifacts.Store, led *ledger.Store, run *runner.Runner, prompter review.Prompter, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    store,
		ledger:   led,
		runner:   run,
		prompter: prompter,
		logger:   logging.NewComponentLogger(logger, "recovery"),
	}
}

// Discover lists every reconstructable candidate in the staging directory.
// Raw payloads that no longer normalize are logged and excluded; they stay
// on disk for manual inspection.
func (m *Manager) Discover(ctx context.Context) ([]*Candidate, error) {
	slugs, err := m.store.Slugs()
	if err != nil {
		return nil, fmt.Errorf("list staging artifacts: %w", err)
	}

	var candidates []*Candidate
	for _, slug := range slugs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		raw, err := m.store.ReadRaw(slug)
		if err != nil {
			m.logger.Warn("unreadable raw artifact",
				logging.String("slug", slug), logging.Error(err))
			continue
		}
		meta, err := m.store.ReadMeta(slug)
		if err != nil {
			m.logger.Warn("unreadable artifact sidecar",
				logging.String("slug", slug), logging.Error(err))
		}
		name := meta.Name
		if name == "" {
			name = slug
		}

		prepared, err := runner.Prepare(raw, slug, name, canonical.Defaults{
			AccountID:   m.cfg.Account.AccountID,
			BankID:      m.cfg.Account.BankID,
			AccountType: m.cfg.Account.AccountType,
			Currency:    m.cfg.Account.Currency,
		})
		if err != nil {
			m.logger.Warn("candidate no longer reconstructs",
				logging.String("slug", slug), logging.Error(err))
			continue
		}
		candidates = append(candidates, &Candidate{Slug: slug, Meta: meta, Prepared: prepared})
	}
	return candidates, nil
}

// Run is the full recovery flow: multi-select, sequential review sessions,
// then an aggregate Confirm/GoBack loop. OFX emission happens only after
// Confirm.
func (m *Manager) Run(ctx context.Context) error {
	candidates, err := m.Discover(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		m.prompter.Notify("No recovery candidates in staging.")
		return nil
	}

	run, err := m.ledger.BeginRun(ctx, ledger.KindRecover)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.ledger.FinishRun(ctx, run); err != nil {
			m.logger.Warn("failed to finish ledger run", logging.Error(err))
		}
	}()

	scope := candidates
	for {
		selected, err := m.selectCandidates(scope)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return nil
		}

		if err := m.reviewSequentially(ctx, run, selected); err != nil {
			if errors.Is(err, stage.ErrBackToList) {
				continue
			}
			return err
		}

		modified := decided(selected)
		if len(modified) == 0 {
			continue
		}

		confirmed, err := m.summarize(modified)
		if err != nil {
			return err
		}
		if confirmed {
			return m.handOff(ctx, run, modified)
		}
		// GoBack re-enters review scoped to the modified subset only.
		scope = modified
	}
}

func (m *Manager) selectCandidates(candidates []*Candidate) ([]*Candidate, error) {
	choices := make([]review.Choice, 0, len(candidates))
	index := make(map[string]*Candidate, len(candidates))
	for _, c := range candidates {
		label := fmt.Sprintf("%s (%d transactions", c.Prepared.Name, len(c.Prepared.Statement.Transactions))
		if c.Meta.Status != "" {
			label += ", last " + c.Meta.Status
		}
		label += ")"
		choices = append(choices, review.Choice{Label: label, Value: c.Slug})
		index[c.Slug] = c
	}

	values, err := m.prompter.MultiSelect("Recover which statements?", choices)
	if err != nil {
		return nil, err
	}
	selected := make([]*Candidate, 0, len(values))
	for _, v := range values {
		if c, ok := index[v]; ok {
			selected = append(selected, c)
		}
	}
	return selected, nil
}

// reviewSequentially runs one session per candidate. BackToList surfaces to
// the caller so the whole selection returns to the list screen.
func (m *Manager) reviewSequentially(ctx context.Context, run *ledger.Run, selected []*Candidate) error {
	for _, c := range selected {
		result, accepted, err := m.runner.Review(ctx, c.Prepared, true)
		if err != nil {
			return err
		}
		c.Decided = true
		c.Accepted = accepted
		c.Result = result

		source := c.Meta.Source
		if source == "" {
			source = c.Slug
		}
		if err := m.runner.PersistDecision(c.Prepared, result, source); err != nil {
			return err
		}

		run.Documents++
		if accepted {
			run.Accepted++
		} else {
			run.Skipped++
		}
	}
	return nil
}

func decided(candidates []*Candidate) []*Candidate {
	var out []*Candidate
	for _, c := range candidates {
		if c.Decided {
			out = append(out, c)
		}
	}
	return out
}

// summarize shows the aggregate outcome and asks Confirm or GoBack.
func (m *Manager) summarize(modified []*Candidate) (bool, error) {
	m.prompter.Notify("")
	for _, c := range modified {
		verdict := "skipped"
		if c.Accepted {
			verdict = "accepted"
		}
		m.prompter.Notify(fmt.Sprintf("  %s: %s, reconciliation %s, quality %s",
			c.Prepared.Name, verdict, c.Result.Reconciliation, c.Result.QualityLabel))
	}
	return m.prompter.Confirm("Hand accepted statements to OFX emission?", true)
}

// handOff emits OFX for accepted candidates and records every decision.
func (m *Manager) handOff(ctx context.Context, run *ledger.Run, modified []*Candidate) error {
	for _, c := range modified {
		rec := &ledger.Record{
			RunID:        run.RunID,
			Slug:         c.Slug,
			Name:         c.Prepared.Name,
			Status:       string(c.Result.Reconciliation),
			QualityScore: c.Result.QualityScore,
			QualityLabel: c.Result.QualityLabel,
			Skipped:      c.Result.Skipped,
			ForcedAccept: c.Result.ForcedAccept,
			Transactions: len(c.Prepared.Statement.Transactions),
		}
		if c.Accepted {
			path, err := m.runner.EmitStatement(c.Prepared)
			if err != nil {
				return err
			}
			rec.OFXPath = path
			m.prompter.Notify(fmt.Sprintf("Wrote %s", path))
		}
		if err := m.ledger.RecordStatement(ctx, rec); err != nil {
			m.logger.Warn("failed to record recovery decision", logging.Error(err))
		}
	}
	return nil
}
