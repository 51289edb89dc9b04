package database

import (
	"path/filepath"
	"testing"

	"github.com/moyu-x/image-tidy/internal"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "journal.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndList(t *testing.T) {
	db := newTestDB(t)

	for i, name := range []string{"a.png", "b.gif", "c.jpg'"} {
		rec := &internal.JournalRecord{
			RunID:     "run-1",
			Dir:       "/pics",
			Original:  name,
			Final:     "out" + name,
			Status:    internal.StatusChanged,
			Reason:    "extension",
			Format:    "jpeg",
			CreatedAt: int64(1000 + i),
		}
		if err := db.Record(rec); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if rec.ID == 0 {
			t.Error("Record() did not set ID")
		}
	}

	records, err := db.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List(2) = %d records, want 2", len(records))
	}
	if records[0].Original != "c.jpg'" {
		t.Errorf("newest record = %q, want c.jpg'", records[0].Original)
	}

	all, err := db.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("List(0) = %d records, want 3", len(all))
	}
}

func TestListRun(t *testing.T) {
	db := newTestDB(t)

	for _, run := range []string{"r1", "r2", "r1"} {
		if err := db.Record(&internal.JournalRecord{
			RunID: run, Dir: "/d", Original: "x", Final: "y",
			Status: internal.StatusChanged,
		}); err != nil {
			t.Fatal(err)
		}
	}

	records, err := db.ListRun("r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("ListRun(r1) = %d, want 2", len(records))
	}
	if records[0].ID >= records[1].ID {
		t.Error("ListRun should return records in insertion order")
	}
}

func TestCountByStatus(t *testing.T) {
	db := newTestDB(t)

	statuses := []internal.OutcomeStatus{internal.StatusChanged, internal.StatusFailed, internal.StatusChanged}
	for _, s := range statuses {
		if err := db.Record(&internal.JournalRecord{RunID: "r", Dir: "/d", Original: "a", Final: "b", Status: s, Error: "boom"}); err != nil {
			t.Fatal(err)
		}
	}

	count, err := db.CountByStatus(internal.StatusChanged)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("CountByStatus(changed) = %d, want 2", count)
	}
}

func TestNew_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Record(&internal.JournalRecord{RunID: "r", Dir: "/d", Original: "a", Final: "b", Status: internal.StatusChanged}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = New(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	records, err := db.List(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("records after reopen = %d, want 1", len(records))
	}
}
