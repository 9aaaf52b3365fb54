package kiosk

import "certificate-terminal/internal/domain"

// Session carries transient per-visitor state between screens: the
// pending form and the last job id. It is cleared on idle timeout and
// on returning home, so no personal data outlives a kiosk session.
type Session struct {
	values map[string]any
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{values: make(map[string]any)}
}

// Put stores one job-scoped value.
func (s *Session) Put(key string, value any) {
	s.values[key] = value
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Clear discards all session values.
func (s *Session) Clear() {
	s.values = make(map[string]any)
}

// Empty reports whether the session holds no values.
func (s *Session) Empty() bool {
	return len(s.values) == 0
}

// SetForm stores the pending form data.
func (s *Session) SetForm(form domain.FormData) {
	s.Put(domain.SessionKeyFormData, form)
}

// Form returns the pending form data, if any.
func (s *Session) Form() (domain.FormData, bool) {
	value, ok := s.Get(domain.SessionKeyFormData)
	if !ok {
		return domain.FormData{}, false
	}
	form, ok := value.(domain.FormData)
	return form, ok
}

// SetLastJobID records the id of the most recent print job.
func (s *Session) SetLastJobID(jobID string) {
	s.Put(domain.SessionKeyLastJobID, jobID)
}

// LastJobID returns the most recent job id, if any.
func (s *Session) LastJobID() (string, bool) {
	value, ok := s.Get(domain.SessionKeyLastJobID)
	if !ok {
		return "", false
	}
	jobID, ok := value.(string)
	return jobID, ok
}
