package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"certificate-terminal/internal/domain"
)

// ErrNotFound is returned when no snapshot exists for a job id.
var ErrNotFound = errors.New("job snapshot not found")

// Store durably persists one snapshot per print job. Each job owns a
// directory under the jobs root; the snapshot itself is published with
// a temp-file rename so external readers never observe a partial write.
type Store struct {
	root string
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// JobDir returns the directory holding a job's snapshot and artifacts.
// The pipeline writes generated documents next to the snapshot so one
// job id maps to one self-contained folder on disk.
func (s *Store) JobDir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

// WriteSnapshot persists the full current record for job.JobID,
// replacing any previous snapshot for the same id.
func (s *Store) WriteSnapshot(job domain.PrintJob) error {
	if job.JobID == "" {
		return fmt.Errorf("write snapshot: empty job id")
	}

	dir := s.JobDir(job.JobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create job dir: %w", err)
	}

	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".job-*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close snapshot temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, "job.json")); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads the last published snapshot for jobID, or
// ErrNotFound when the job has never been persisted.
func (s *Store) ReadSnapshot(jobID string) (domain.PrintJob, error) {
	data, err := os.ReadFile(filepath.Join(s.JobDir(jobID), "job.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PrintJob{}, ErrNotFound
		}
		return domain.PrintJob{}, fmt.Errorf("read snapshot: %w", err)
	}

	var job domain.PrintJob
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.PrintJob{}, fmt.Errorf("decode snapshot %s: %w", jobID, err)
	}
	return job, nil
}

// List returns ids of all jobs with a published snapshot, sorted.
// Consumed by operational tooling; the kiosk itself never lists jobs.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, entry.Name(), "job.json")); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
