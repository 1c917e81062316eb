package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kfarouk/breakdownr/internal/schema"
	"github.com/kfarouk/breakdownr/internal/timeparse"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "breakdowns.csv")
}

// sampleRecord returns a completed record for machine m with the given
// duration in minutes.
func sampleRecord(m string, minutes float64) schema.Record {
	return schema.Record{
		Date:        time.Date(2025, 2, 6, 0, 0, 0, 0, time.UTC),
		Machine:     m,
		Category:    schema.CategoryMechanical,
		DurationMin: minutes,
		Technician:  "Dante",
		Status:      schema.StatusClosed,
	}
}

// ============================================================
// Open / load
// ============================================================

func TestNewMissingFile(t *testing.T) {
	s, err := New(testPath(t))
	if err != nil {
		t.Fatalf("missing backing file should not error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", s.Len())
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "deep", "breakdowns.csv")
	if _, err := New(path); err != nil {
		t.Fatalf("New: %v", err)
	}
}

func TestNewCorruptFile(t *testing.T) {
	path := testPath(t)
	// Unbalanced quote makes the CSV unreadable.
	if err := os.WriteFile(path, []byte("Date,Machine No\n\"broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Fatal("corrupt backing file must surface an error, not an empty store")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := testPath(t)
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(sampleRecord("M1", 30)); err != nil {
		t.Fatal(err)
	}
	rec := sampleRecord("M2", 45.5)
	rec.Status = schema.StatusOpen
	rec.Technician = "Husam/Lito"
	if _, err := s.Append(rec); err != nil {
		t.Fatal(err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s2.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 records after reload, got %d", len(got))
	}
	if got[0].Machine != "M1" || got[0].DurationMin != 30 {
		t.Fatalf("first record drifted: %+v", got[0])
	}
	if got[1].Machine != "M2" || got[1].DurationMin != 45.5 {
		t.Fatalf("second record drifted: %+v", got[1])
	}
	if got[1].Status != schema.StatusOpen || got[1].Technician != "Husam/Lito" {
		t.Fatalf("fields drifted: %+v", got[1])
	}
}

func TestReloadKeepsExplicitZeroDuration(t *testing.T) {
	path := testPath(t)
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	start, _ := timeparse.ParseClock("08:00")
	end, _ := timeparse.ParseClock("09:00")
	rec := sampleRecord("M3", 0)
	rec.Start = &start
	rec.End = &end
	if _, err := s.Append(rec); err != nil {
		t.Fatal(err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s2.All()[0]
	if got.DurationMin != 0 {
		t.Fatalf("zero duration mutated to span length on reload: %v", got.DurationMin)
	}
}

// ============================================================
// Mutations
// ============================================================

func TestAppendAssignsID(t *testing.T) {
	s := NewMemory()
	rec, err := s.Append(sampleRecord("M1", 10))
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Fatal("append should assign a stable ID")
	}
	got, ok := s.Get(rec.ID)
	if !ok || got.Machine != "M1" {
		t.Fatalf("Get(%s) = %+v, %v", rec.ID, got, ok)
	}
}

func TestUpdate(t *testing.T) {
	s := NewMemory()
	rec, _ := s.Append(sampleRecord("M1", 10))

	edited := rec
	edited.DurationMin = 25
	edited.Category = schema.CategoryElectrical
	if err := s.Update(rec.ID, edited); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(rec.ID)
	if got.DurationMin != 25 || got.Category != schema.CategoryElectrical {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.ID != rec.ID {
		t.Fatal("update must keep the record ID")
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := NewMemory()
	if err := s.Update("nope", sampleRecord("M1", 10)); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestDeleteKeepsOtherIDs(t *testing.T) {
	s := NewMemory()
	a, _ := s.Append(sampleRecord("M1", 10))
	b, _ := s.Append(sampleRecord("M2", 20))
	c, _ := s.Append(sampleRecord("M3", 30))

	if err := s.Delete(b.ID); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
	// Deleting the middle record must not shift identity of the others.
	got, ok := s.Get(c.ID)
	if !ok || got.Machine != "M3" {
		t.Fatalf("record c lost after unrelated delete: %+v, %v", got, ok)
	}
	if _, ok := s.Get(a.ID); !ok {
		t.Fatal("record a lost after unrelated delete")
	}
	if _, ok := s.Get(b.ID); ok {
		t.Fatal("deleted record still reachable")
	}
}

func TestDeleteUnknownID(t *testing.T) {
	s := NewMemory()
	if err := s.Delete("nope"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestAppendAll(t *testing.T) {
	path := testPath(t)
	s, _ := New(path)
	err := s.AppendAll([]schema.Record{sampleRecord("M1", 5), sampleRecord("M2", 7)})
	if err != nil {
		t.Fatal(err)
	}
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Len() != 2 {
		t.Fatalf("batch not persisted, got %d records", s2.Len())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewMemory()
	s.Append(sampleRecord("M1", 10))
	all := s.All()
	all[0].Machine = "M99"
	if got := s.All()[0].Machine; got != "M1" {
		t.Fatalf("All leaked internal state: %q", got)
	}
}

// ============================================================
// Write failure
// ============================================================

func TestFailedWriteRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	path := filepath.Join(dir, "breakdowns.csv")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(sampleRecord("M1", 10)); err != nil {
		t.Fatal(err)
	}

	// Make the backing file unwritable by removing its directory.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Append(sampleRecord("M2", 20)); err == nil {
		t.Fatal("expected write failure")
	}
	if s.Len() != 1 {
		t.Fatalf("failed append must roll back, store has %d records", s.Len())
	}

	rec := s.All()[0]
	if err := s.Delete(rec.ID); err == nil {
		t.Fatal("expected write failure")
	}
	if s.Len() != 1 {
		t.Fatal("failed delete must roll back")
	}
	if _, ok := s.Get(rec.ID); !ok {
		t.Fatal("record lost after rolled-back delete")
	}
}
