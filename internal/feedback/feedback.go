// Package feedback persists submit_feedback records to disk, one JSON
// file per submission, written with temp-file-then-rename atomicity
// (spec §6's disk layout).
package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docsmcp/internal/docsmcperr"
	"docsmcp/pkg/models"
)

// Store writes Feedback records under a directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

// Validate checks spec §6's submit_feedback argument rules: non-empty
// feedback text, rating (if given) within 1..5.
func Validate(f models.Feedback) error {
	if f.Feedback == "" {
		return fmt.Errorf("feedback text must not be empty")
	}
	if f.Rating != 0 && (f.Rating < 1 || f.Rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", f.Rating)
	}
	return nil
}

// Save writes one feedback record as
// "feedback_<unix>_<nanos>_pid<pid>.json" under the store's directory,
// via a temp file renamed into place so a reader never observes a
// partially written record (spec §6).
func (s *Store) Save(f models.Feedback) (string, error) {
	if err := Validate(f); err != nil {
		return "", docsmcperr.New(docsmcperr.InvalidArgs, "submit_feedback", err)
	}
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", docsmcperr.New(docsmcperr.CacheIO, s.dir, fmt.Errorf("create feedback dir: %w", err))
	}
	name := fmt.Sprintf("feedback_%d_%d_pid%d.json", f.SubmittedAt.Unix(), f.SubmittedAt.Nanosecond(), os.Getpid())
	final := filepath.Join(s.dir, name)

	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", docsmcperr.New(docsmcperr.ParseFailure, name, err)
	}
	tmp, err := os.CreateTemp(s.dir, ".feedback-*.tmp")
	if err != nil {
		return "", docsmcperr.New(docsmcperr.CacheIO, s.dir, fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", docsmcperr.New(docsmcperr.CacheIO, tmpName, fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", docsmcperr.New(docsmcperr.CacheIO, tmpName, fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", docsmcperr.New(docsmcperr.CacheIO, final, fmt.Errorf("rename into place: %w", err))
	}
	return final, nil
}
