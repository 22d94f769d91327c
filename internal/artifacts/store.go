package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pdf2ofx/internal/canonical"
	"pdf2ofx/internal/fileutil"
	"pdf2ofx/internal/statement"
)

// Artifact file suffixes. A candidate is one slug with up to three siblings.
const (
	RawSuffix       = ".raw.json"
	CanonicalSuffix = ".canonical.json"
	MetaSuffix      = ".meta.json"
)

// slugLength is the number of hex characters kept from the source hash.
const slugLength = 12

// Meta is the provenance sidecar written next to the raw artifact. It links
// the artifact back to the originating document and records the latest
// terminal decision so listings can be rendered without reparsing payloads.
type Meta struct {
	Source         string    `json:"source"`
	Name           string    `json:"name"`
	ExtractedCount int       `json:"extracted_count"`
	Status         string    `json:"status,omitempty"`
	QualityLabel   string    `json:"quality_label,omitempty"`
	Skipped        bool      `json:"skipped,omitempty"`
	ForcedAccept   bool      `json:"forced_accept,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Slug derives the stable artifact name for a source document: the first
// twelve hex characters of the SHA-256 of the file stem. Renaming the
// directory does not move artifacts; renaming the file does.
func Slug(sourcePath string) string {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	sum := sha256.Sum256([]byte(stem))
	return hex.EncodeToString(sum[:])[:slugLength]
}

// Store manages the staging directory holding all artifacts.
type Store struct {
	dir string
}

// NewStore ensures dir exists and returns a store rooted there.
func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("staging directory not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure staging directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the staging directory root.
func (s *Store) Dir() string { return s.dir }

// RawPath returns the raw artifact path for slug.
func (s *Store) RawPath(slug string) string {
	return filepath.Join(s.dir, slug+RawSuffix)
}

// CanonicalPath returns the canonical artifact path for slug.
func (s *Store) CanonicalPath(slug string) string {
	return filepath.Join(s.dir, slug+CanonicalSuffix)
}

// MetaPath returns the sidecar path for slug.
func (s *Store) MetaPath(slug string) string {
	return filepath.Join(s.dir, slug+MetaSuffix)
}

// WriteRaw persists the raw extraction payload exactly once. An existing raw
// artifact is never touched: it protects the output of a costly external
// call, and later pipeline stages must be able to trust its bytes.
func (s *Store) WriteRaw(slug string, payload canonical.Payload) error {
	path := s.RawPath(slug)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	return fileutil.WriteJSONAtomic(path, payload)
}

// WriteCanonical persists the canonical statement, replacing any previous
// version for this slug.
func (s *Store) WriteCanonical(slug string, st *statement.Statement) error {
	return fileutil.WriteJSONAtomic(s.CanonicalPath(slug), st)
}

// WriteMeta persists the provenance sidecar, stamping UpdatedAt.
func (s *Store) WriteMeta(slug string, meta Meta) error {
	meta.UpdatedAt = time.Now().UTC()
	return fileutil.WriteJSONAtomic(s.MetaPath(slug), meta)
}

// ReadRaw loads the raw payload for slug.
func (s *Store) ReadRaw(slug string) (canonical.Payload, error) {
	data, err := os.ReadFile(s.RawPath(slug))
	if err != nil {
		return nil, err
	}
	var payload canonical.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse raw artifact %s: %w", slug, err)
	}
	return payload, nil
}

// ReadCanonical loads the canonical statement for slug.
func (s *Store) ReadCanonical(slug string) (*statement.Statement, error) {
	var st statement.Statement
	if err := fileutil.ReadJSON(s.CanonicalPath(slug), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ReadMeta loads the sidecar for slug. Missing sidecars are not an error;
// the zero Meta is returned.
func (s *Store) ReadMeta(slug string) (Meta, error) {
	var meta Meta
	err := fileutil.ReadJSON(s.MetaPath(slug), &meta)
	if os.IsNotExist(err) {
		return Meta{}, nil
	}
	return meta, err
}

// Remove deletes all artifacts for slug. Missing files are ignored.
func (s *Store) Remove(slug string) error {
	for _, path := range []string{s.RawPath(slug), s.CanonicalPath(slug), s.MetaPath(slug)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Slugs lists every slug with a raw artifact in the staging root, sorted by
// directory order. Subdirectories are not descended into.
func (s *Store) Slugs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var slugs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, RawSuffix) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, RawSuffix))
	}
	return slugs, nil
}
