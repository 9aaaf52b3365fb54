package domain

import "time"

// JobStatus tracks each pipeline stage for a single print job.
type JobStatus string

const (
	JobStatusIdle        JobStatus = "idle"
	JobStatusChecking    JobStatus = "checking_printer"
	JobStatusBuilding    JobStatus = "building"
	JobStatusRecording   JobStatus = "recording"
	JobStatusRendering   JobStatus = "rendering"
	JobStatusConverting  JobStatus = "converting"
	JobStatusDispatching JobStatus = "dispatching"
	JobStatusDone        JobStatus = "done"
	JobStatusFailed      JobStatus = "failed"
)

// JobState is the durable lifecycle state written into job snapshots.
type JobState string

const (
	JobStateCreated JobState = "created"
	JobStateDone    JobState = "done"
	JobStateFailed  JobState = "failed"
)

// Error codes surfaced through JobResult and job snapshots.
const (
	CodeOK               = "OK"
	CodeUnknown          = "UNKNOWN"
	CodePrnNotConfigured = "PRN_NOT_CONFIGURED"
	CodePrnNotFound      = "PRN_NOT_FOUND"
	CodePrnDisabled      = "PRN_DISABLED"
	CodePrnNotAccepting  = "PRN_NOT_ACCEPTING"
)

// FormData is one submitted certificate request, immutable once it
// enters the pipeline.
type FormData struct {
	Name         string `json:"name"`
	ParentName   string `json:"parentName"`
	BirthYear    string `json:"birthYear"`
	BirthMonth   string `json:"birthMonth"`
	BirthDay     string `json:"birthDay"`
	Place        string `json:"place"`
	Municipality string `json:"municipality"`
	Class        string `json:"class"`
	Program      string `json:"program"`
	Reason       string `json:"reason"`
}

// PrintJob is the durable record of one print attempt.
type PrintJob struct {
	JobID         string    `json:"jobId"`
	CreatedAt     time.Time `json:"createdAt"`
	State         JobState  `json:"state"`
	FormData      FormData  `json:"formData"`
	DocPath       string    `json:"docPath,omitempty"`
	PrintablePath string    `json:"printablePath,omitempty"`
	ErrorCode     string    `json:"errorCode,omitempty"`
	UserMessage   string    `json:"userMessage,omitempty"`
	Printed       bool      `json:"printed"`
}

// JobResult is the terminal outcome handed back to the kiosk layer.
// It is the only failure shape that crosses the orchestrator boundary.
type JobResult struct {
	OK            bool   `json:"ok"`
	JobID         string `json:"jobId"`
	DocPath       string `json:"docPath,omitempty"`
	PrintablePath string `json:"printablePath,omitempty"`
	ErrorCode     string `json:"errorCode,omitempty"`
	UserMessage   string `json:"userMessage,omitempty"`
}

// Job stores the current job identity and lifecycle status.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
}
