// Package store holds the in-memory breakdown log and its flat-file
// persistence. The backing file is a plain CSV in the canonical column
// order, fully rewritten after every mutation; the model assumes a single
// writer (one operator terminal).
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

// Store is the canonical ordered set of breakdown records. Records carry
// stable IDs assigned on insert, so edits and deletes never address rows
// by position.
type Store struct {
	path    string
	records []schema.Record
	byID    map[string]int
}

// storedParser reads the store's own serialized durations: decimal
// minutes or HH:MM:SS.
var storedParser = timeparse.Parser{TwoPart: timeparse.HoursMinutes, Numeric: timeparse.Minutes}

// New opens the store backed by the CSV file at path, creating the parent
// directory if needed. A missing file yields an empty store; an unreadable
// or corrupt file is an error, never silently replaced.
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	s := &Store{path: path, byID: make(map[string]int)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory creates a store with no backing file, for testing and
// one-shot report runs. Mutations skip persistence.
func NewMemory() *Store {
	return &Store{byID: make(map[string]int)}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) load() error {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("store file %s is corrupt: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	for _, row := range rows[1:] {
		raw := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				raw[col] = row[i]
			}
		}
		rec, _ := schema.Normalize(header, raw, storedParser)
		s.insert(rec)
	}
	return nil
}

// Save rewrites the whole backing file. There is no partial write mode:
// the persisted file always mirrors the in-memory set.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(schema.Columns); err != nil {
		return fmt.Errorf("write store header: %w", err)
	}
	for _, rec := range s.records {
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("write store row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush store file: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.config/breakdownr/breakdowns.csv.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "breakdownr", "breakdowns.csv"), nil
}
