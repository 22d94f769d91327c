package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BeginRun inserts a new run row and returns it.
func (s *Store) BeginRun(ctx context.Context, kind string) (*Run, error) {
	run := &Run{
		RunID:     uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	res, err := s.execWithRetry(ctx,
		`INSERT INTO runs (run_id, kind, started_at) VALUES (?, ?, ?)`,
		run.RunID, run.Kind, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	run.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return run, nil
}

// FinishRun stamps the run finished and persists its counters.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	now := time.Now().UTC()
	run.FinishedAt = &now
	_, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, documents = ?, accepted = ?, skipped = ?, failed = ?
         WHERE run_id = ?`,
		now.Format(time.RFC3339Nano), run.Documents, run.Accepted, run.Skipped, run.Failed, run.RunID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordStatement appends one statement outcome to the run.
func (s *Store) RecordStatement(ctx context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	rec.CreatedAt = time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`INSERT INTO statement_records (
            run_id, slug, name, status, quality_score, quality_label,
            skipped, forced_accept, transactions, ofx_path,
            failure_stage, failure_message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Slug, rec.Name, rec.Status, rec.QualityScore, rec.QualityLabel,
		boolToInt(rec.Skipped), boolToInt(rec.ForcedAccept), rec.Transactions,
		nullableString(rec.OFXPath), nullableString(rec.FailureStage),
		nullableString(rec.FailureMessage), rec.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert statement record: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	return nil
}

// History returns the most recent runs, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, kind, started_at, finished_at, documents, accepted, skipped, failed
         FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.RunID, &run.Kind, &startedAt, &finishedAt,
			&run.Documents, &run.Accepted, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finishedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, finishedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunRecords returns the statement records of one run in insertion order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, slug, name, status, quality_score, quality_label,
                skipped, forced_accept, transactions, ofx_path,
                failure_stage, failure_message, created_at
         FROM statement_records WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query statement records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			skipped   int
			forced    int
			ofxPath   sql.NullString
			stage     sql.NullString
			message   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Slug, &rec.Name, &rec.Status,
			&rec.QualityScore, &rec.QualityLabel, &skipped, &forced, &rec.Transactions,
			&ofxPath, &stage, &message, &createdAt); err != nil {
			return nil, fmt.Errorf("scan statement record: %w", err)
		}
		rec.Skipped = skipped != 0
		rec.ForcedAccept = forced != 0
		rec.OFXPath = ofxPath.String
		rec.FailureStage = stage.String
		rec.FailureMessage = message.String
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestRecordForSlug returns the most recent record for one artifact slug,
// or nil when the slug was never processed.
func (s *Store) LatestRecordForSlug(ctx context.Context, slug string) (*Record, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, run_id, slug, name, status, quality_score, quality_label,
                skipped, forced_accept, transactions, ofx_path,
                failure_stage, failure_message, created_at
         FROM statement_records WHERE slug = ? ORDER BY id DESC LIMIT 1`, slug)
	if err != nil {
		return nil, fmt.Errorf("query latest record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		rec       Record
		skipped   int
		forced    int
		ofxPath   sql.NullString
		stage     sql.NullString
		message   sql.NullString
		createdAt string
	)
	if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Slug, &rec.Name, &rec.Status,
		&rec.QualityScore, &rec.QualityLabel, &skipped, &forced, &rec.Transactions,
		&ofxPath, &stage, &message, &createdAt); err != nil {
		return nil, fmt.Errorf("scan latest record: %w", err)
	}
	rec.Skipped = skipped != 0
	rec.ForcedAccept = forced != 0
	rec.OFXPath = ofxPath.String
	rec.FailureStage = stage.String
	rec.FailureMessage = message.String
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
