// Package drycache implements C14: the incremental on-disk DRY
// fingerprint cache keyed by (content hash, language, token-window
// length). Entries are self-describing (schema version, language,
// min-tokens) so a configuration change invalidates stale entries as a
// cache miss rather than silently reusing mismatched fingerprints.
//
// Writes are atomic (temp file + rename), grounded on the teacher's
// checkpoint persistence pattern at
// jinterlante1206-AleutianLocal/services/trace/dag/checkpoint.go, which
// writes to a sibling ".tmp" file and renames into place rather than
// writing the destination path directly.
package drycache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/thailint/thailint-core/model"
)

const schemaVersion = 1

// WindowEntry is one k-gram fingerprint and the source span it covers.
type WindowEntry struct {
	Fingerprint uint64 `json:"fingerprint"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
}

// Entry is the persisted, self-describing cache record for one
// (content hash, language, min-tokens) key.
type Entry struct {
	SchemaVersion int           `json:"schema_version"`
	Language      string        `json:"language"`
	MinTokens     int           `json:"min_tokens"`
	Windows       []WindowEntry `json:"windows"`
}

// Store is the on-disk cache directory handle. The directory may be
// deleted at any time; the next run rebuilds it from scratch (spec §6:
// "the directory may be safely deleted at any time").
type Store struct {
	dir string
}

// Open returns a Store rooted at dir, creating it if necessary. A Store
// over an unwritable directory degrades to "always miss" rather than
// failing the run: the DRY cache is a performance optimisation, not a
// correctness requirement — the rule still tokenises and still detects
// duplicates, just without the incremental speedup.
func Open(dir string) *Store {
	_ = os.MkdirAll(dir, 0o755)
	return &Store{dir: dir}
}

func (s *Store) path(contentHash string, lang model.Language, minTokens int) string {
	name := fmt.Sprintf("%s_%s_%d.json", contentHash, lang, minTokens)
	return filepath.Join(s.dir, name)
}

// Get looks up (contentHash, lang, minTokens). A missing file, corrupt
// JSON, or any field mismatch (schema version, language, min-tokens) is
// treated uniformly as a cache miss (spec §4.7: "on version mismatch,
// treat as miss").
func (s *Store) Get(contentHash string, lang model.Language, minTokens int) (*Entry, bool) {
	data, err := os.ReadFile(s.path(contentHash, lang, minTokens))
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.SchemaVersion != schemaVersion || entry.MinTokens != minTokens || entry.Language != string(lang) {
		return nil, false
	}
	return &entry, true
}

// Put writes windows back to the cache for (contentHash, lang,
// minTokens). Concurrent writers for the same key race harmlessly: their
// content hashes match, so the bytes they would write are identical in
// practice, and the rename is atomic (spec §5).
func (s *Store) Put(contentHash string, lang model.Language, minTokens int, windows []WindowEntry) error {
	entry := Entry{
		SchemaVersion: schemaVersion,
		Language:      string(lang),
		MinTokens:     minTokens,
		Windows:       windows,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("drycache: marshal entry: %w", err)
	}

	final := s.path(contentHash, lang, minTokens)
	tmp := final + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("drycache: write temp file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("drycache: rename into place: %w", err)
	}
	return nil
}
