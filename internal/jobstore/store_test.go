package jobstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"certificate-terminal/internal/domain"
)

func sampleJob(id string) domain.PrintJob {
	return domain.PrintJob{
		JobID:     id,
		CreatedAt: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		State:     domain.JobStateCreated,
		FormData: domain.FormData{
			Name:       "Test Testić",
			ParentName: "Petar",
			BirthYear:  "2007",
			BirthMonth: "5",
			BirthDay:   "21",
		},
	}
}

// TestWriteReadRoundTrip verifies a snapshot survives persistence intact.
func TestWriteReadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	job := sampleJob("job-1")

	if err := store.WriteSnapshot(job); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.ReadSnapshot("job-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != job {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, job)
	}
}

// TestWriteSnapshotOverwrites checks last-write-wins per job id.
func TestWriteSnapshotOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())
	job := sampleJob("job-1")

	if err := store.WriteSnapshot(job); err != nil {
		t.Fatalf("first write: %v", err)
	}

	job.State = domain.JobStateFailed
	job.ErrorCode = domain.CodeUnknown
	if err := store.WriteSnapshot(job); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := store.ReadSnapshot("job-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.State != domain.JobStateFailed || got.ErrorCode != domain.CodeUnknown {
		t.Fatalf("overwrite not applied: %+v", got)
	}
}

// TestWriteSnapshotIdempotent verifies repeated identical writes leave a
// single readable snapshot with no leftover temp files.
func TestWriteSnapshotIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	job := sampleJob("job-1")

	for i := 0; i < 2; i++ {
		if err := store.WriteSnapshot(job); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	got, err := store.ReadSnapshot("job-1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != job {
		t.Fatalf("snapshot corrupted: %+v", got)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "job-1"))
	if err != nil {
		t.Fatalf("read job dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "job.json" {
		t.Fatalf("expected only job.json in job dir, got %v", entries)
	}
}

// TestReadSnapshotNotFound checks the missing-id sentinel.
func TestReadSnapshotNotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.ReadSnapshot("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestWriteSnapshotRejectsEmptyID guards the snapshot addressing key.
func TestWriteSnapshotRejectsEmptyID(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.WriteSnapshot(domain.PrintJob{}); err == nil {
		t.Fatal("expected error for empty job id")
	}
}

// TestList returns only job dirs with a published snapshot.
func TestList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	if err := store.WriteSnapshot(sampleJob("b-job")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.WriteSnapshot(sampleJob("a-job")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Dir without a snapshot must be skipped.
	if err := os.MkdirAll(filepath.Join(dir, "half-created"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a-job" || ids[1] != "b-job" {
		t.Fatalf("ids = %v", ids)
	}
}
