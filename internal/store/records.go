package store

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kfarouk/breakdownr/internal/schema"
)

// insert adds a record to the in-memory set, assigning an ID when the
// record has none.
func (s *Store) insert(rec schema.Record) schema.Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.byID[rec.ID] = len(s.records)
	s.records = append(s.records, rec)
	return rec
}

// Append adds a record and persists the store. On a failed write the
// in-memory set is rolled back, so the caller's edit is never half
// committed.
func (s *Store) Append(rec schema.Record) (schema.Record, error) {
	rec = s.insert(rec)
	if err := s.Save(); err != nil {
		delete(s.byID, rec.ID)
		s.records = s.records[:len(s.records)-1]
		return schema.Record{}, err
	}
	return rec, nil
}

// AppendAll adds a batch of records with a single rewrite at the end.
func (s *Store) AppendAll(recs []schema.Record) error {
	start := len(s.records)
	for _, rec := range recs {
		s.insert(rec)
	}
	if err := s.Save(); err != nil {
		for _, rec := range s.records[start:] {
			delete(s.byID, rec.ID)
		}
		s.records = s.records[:start]
		return err
	}
	return nil
}

// Update replaces the record with the given ID, keeping its ID and
// position, and persists the store.
func (s *Store) Update(id string, rec schema.Record) error {
	idx, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("update: no record with id %s", id)
	}
	prev := s.records[idx]
	rec.ID = id
	s.records[idx] = rec
	if err := s.Save(); err != nil {
		s.records[idx] = prev
		return err
	}
	return nil
}

// Delete removes the record with the given ID and persists the store.
func (s *Store) Delete(id string) error {
	idx, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("delete: no record with id %s", id)
	}
	prev := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	delete(s.byID, id)
	for i := idx; i < len(s.records); i++ {
		s.byID[s.records[i].ID] = i
	}
	if err := s.Save(); err != nil {
		s.records = append(s.records[:idx], append([]schema.Record{prev}, s.records[idx:]...)...)
		for i := idx; i < len(s.records); i++ {
			s.byID[s.records[i].ID] = i
		}
		return err
	}
	return nil
}

// Get returns the record with the given ID.
func (s *Store) Get(id string) (schema.Record, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return schema.Record{}, false
	}
	return s.records[idx], true
}

// All returns a copy of the record set in insertion order. Callers may
// filter and aggregate the copy freely without affecting the store.
func (s *Store) All() []schema.Record {
	out := make([]schema.Record, len(s.records))
	copy(out, s.records)
	return out
}
