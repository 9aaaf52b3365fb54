package jobs

import (
	"errors"
	"fmt"
	"sync"

	"certificate-terminal/internal/domain"
)

// ErrJobAlreadyRunning is returned when starting a second active job.
// Overlapping starts (rapid retry taps) are rejected, never queued.
var ErrJobAlreadyRunning = errors.New("job already running")

// stageOrder indexes the forward progression of pipeline statuses.
// Optional stages may be skipped, so a transition is valid to any
// strictly later active status or to a terminal one.
var stageOrder = map[domain.JobStatus]int{
	domain.JobStatusChecking:    0,
	domain.JobStatusBuilding:    1,
	domain.JobStatusRecording:   2,
	domain.JobStatusRendering:   3,
	domain.JobStatusConverting:  4,
	domain.JobStatusDispatching: 5,
}

// Manager tracks the single allowed active job and its transitions.
type Manager struct {
	mu      sync.RWMutex
	current domain.Job
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Job{
			Status: domain.JobStatusIdle,
		},
	}
}

// Start creates a new job and moves it to the readiness-check state.
func (m *Manager) Start(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isRunning(m.current.Status) {
		return ErrJobAlreadyRunning
	}

	m.current = domain.Job{
		ID:     jobID,
		Status: domain.JobStatusChecking,
	}
	return nil
}

// Transition validates and applies state transitions for current job.
func (m *Manager) Transition(status domain.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != domain.JobStatusIdle {
		return fmt.Errorf("cannot transition without an active job")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current job.
func (m *Manager) Current() domain.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Reset clears job metadata and returns manager to idle.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Job{Status: domain.JobStatusIdle}
}

// IsRunning reports whether the current state is an active stage.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isRunning(m.current.Status)
}

// isRunning checks if a status represents active pipeline execution.
func isRunning(status domain.JobStatus) bool {
	_, ok := stageOrder[status]
	return ok
}

// isValidTransition enforces the allowed job state machine edges.
// Terminal states never transition out; a new Start replaces the job.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusDone, domain.JobStatusFailed:
		return to == domain.JobStatusIdle
	case domain.JobStatusIdle:
		return to == domain.JobStatusChecking
	}

	if to == domain.JobStatusDone || to == domain.JobStatusFailed {
		return true
	}

	fromIdx, fromOK := stageOrder[from]
	toIdx, toOK := stageOrder[to]
	return fromOK && toOK && toIdx > fromIdx
}
