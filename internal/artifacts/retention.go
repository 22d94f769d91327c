package artifacts

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdf2ofx/internal/logging"
	"pdf2ofx/internal/sanity"
)

// Decision pairs one processed document with its terminal diagnostic result.
type Decision struct {
	Slug   string
	Name   string
	Result sanity.Result
}

// RetainedArtifact records why one artifact set survived batch-end cleanup.
type RetainedArtifact struct {
	Slug   string
	Name   string
	Reason string
}

// RetentionReport is the outcome of applying selective retention at batch
// end.
type RetentionReport struct {
	Deleted  []string
	Retained []RetainedArtifact
	Errors   []CleanupError
}

// CleanupError pairs an artifact path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// ApplyRetention deletes artifacts for fully clean results and keeps
// everything else. An artifact whose correctness is unconfirmed represents a
// costly extraction; retention errs on the side of keeping it, with the
// specific reason reported per artifact.
func ApplyRetention(store *Store, decisions []Decision, logger *slog.Logger) RetentionReport {
	var report RetentionReport
	for _, d := range decisions {
		clean, reason := d.Result.CleanForDeletion()
		if !clean {
			report.Retained = append(report.Retained, RetainedArtifact{Slug: d.Slug, Name: d.Name, Reason: reason})
			if logger != nil {
				logger.Info("artifact retained",
					logging.String("statement", d.Name),
					logging.String("slug", d.Slug),
					logging.String("reason", reason),
				)
			}
			continue
		}
		if err := store.Remove(d.Slug); err != nil {
			report.Errors = append(report.Errors, CleanupError{Path: store.RawPath(d.Slug), Error: err})
			if logger != nil {
				logger.Warn("failed to delete clean artifact",
					logging.String("statement", d.Name),
					logging.String("slug", d.Slug),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				)
			}
			continue
		}
		report.Deleted = append(report.Deleted, d.Slug)
		if logger != nil {
			logger.Info("artifact deleted after clean run",
				logging.String("statement", d.Name),
				logging.String("slug", d.Slug),
			)
		}
	}
	return report
}

// SweepResult contains the outcome of a stale artifact sweep.
type SweepResult struct {
	Removed []string
	Errors  []CleanupError
}

// SweepStale removes staging artifacts older than maxAge, regardless of
// their terminal status. Intended for the explicit staging-clean command,
// never run implicitly.
func SweepStale(stagingDir string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	var result SweepResult

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, RawSuffix) &&
			!strings.HasSuffix(name, CanonicalSuffix) &&
			!strings.HasSuffix(name, MetaSuffix) {
			continue
		}

		path := filepath.Join(stagingDir, name)
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale artifact",
					logging.String("path", path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check staging_dir permissions"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Info("removed stale artifact",
				logging.String("path", path),
				logging.Duration("age", time.Since(info.ModTime())),
			)
		}
	}

	return result
}
