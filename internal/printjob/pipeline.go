// Package printjob sequences one print attempt: readiness probe,
// audit insert, document render, PDF conversion, and dispatch. It is
// the only boundary that converts internal failures into the
// user-facing JobResult shape; nothing below it produces kiosk text.
package printjob

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"certificate-terminal/internal/document"
	"certificate-terminal/internal/domain"
	"certificate-terminal/internal/printer"
)

// Stage codes reported through the OnStage callback, in pipeline order.
const (
	StageCheckPrinter = "CHECK_PRINTER"
	StageBuild        = "BUILD"
	StageAudit        = "DB"
	StageRender       = "DOCX"
	StageConvert      = "PDF"
	StageDispatch     = "PRINT"
)

// genericUserMessage is shown for every environment/tooling failure.
const genericUserMessage = "Nije moguće odštampati. Provjerite printer i pokušajte ponovo."

// Options selects which side effects a run performs. Disabling
// dispatch gives a dry run; disabling the audit log is for bench use.
type Options struct {
	DispatchToPrinter bool
	WriteAuditLog     bool
}

// Request contains the submitted form and execution callbacks for one
// run. OnStage receives each stage code before the stage executes.
// JobID lets the caller pre-allocate the id so it can track the job
// while the run is in flight; left empty, the pipeline generates one.
type Request struct {
	JobID   string
	Form    domain.FormData
	Options Options
	OnStage func(stage string)
}

// StageError is a stage-aware pipeline failure.
type StageError struct {
	Stage string
	Err   error
}

// Error formats the failing stage for logs.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Snapshots is the durable job record store used by the pipeline.
type Snapshots interface {
	WriteSnapshot(job domain.PrintJob) error
	JobDir(jobID string) string
}

// AuditRecorder appends one audit row per accepted submission.
type AuditRecorder interface {
	Insert(ctx context.Context, form domain.FormData) error
}

// Converter produces the printable PDF for a rendered document.
type Converter interface {
	Convert(ctx context.Context, docPath, outDir string) (string, error)
}

// Renderer extends document.Renderer with the produced file extension,
// so the pipeline can name the output for either document format.
type Renderer interface {
	document.Renderer
	Ext() string
}

// Pipeline executes print jobs. A single Pipeline serves the whole
// process; each Run creates a fresh job id and job directory, so
// retries never resume earlier attempts.
type Pipeline struct {
	store     Snapshots
	audit     AuditRecorder
	renderer  Renderer
	converter Converter
	gateway   printer.Gateway

	referenceNumber string

	now   func() time.Time
	newID func() string
	stat  func(name string) (os.FileInfo, error)
}

// New constructs the production pipeline.
func New(store Snapshots, audit AuditRecorder, renderer Renderer, converter Converter, gateway printer.Gateway, referenceNumber string) *Pipeline {
	return &Pipeline{
		store:           store,
		audit:           audit,
		renderer:        renderer,
		converter:       converter,
		gateway:         gateway,
		referenceNumber: referenceNumber,
		now:             time.Now,
		newID:           uuid.NewString,
		stat:            os.Stat,
	}
}

// Run executes one print job to its terminal state and returns the
// result. It never returns raw errors: failures are logged here with
// job id and stage, persisted, and mapped to a JobResult.
func (p *Pipeline) Run(ctx context.Context, req Request) domain.JobResult {
	jobID := req.JobID
	if jobID == "" {
		jobID = p.newID()
	}
	job := domain.PrintJob{
		JobID:     jobID,
		CreatedAt: p.now().UTC(),
		State:     domain.JobStateCreated,
		FormData:  req.Form,
	}

	// Persist the created record first so a crash mid-run still leaves
	// a readable snapshot on disk.
	if err := p.store.WriteSnapshot(job); err != nil {
		slog.Error("persist created job", "job_id", job.JobID, "error", err)
		return p.failResult(job, domain.CodeUnknown, genericUserMessage)
	}

	emitStage(req.OnStage, StageCheckPrinter)
	if req.Options.DispatchToPrinter {
		readiness := p.gateway.CheckReadiness(ctx)
		if !readiness.Ready {
			slog.Warn("printer not ready",
				"job_id", job.JobID, "code", readiness.Code)
			return p.failResult(job, readiness.Code, readiness.Message)
		}
	}

	if serr := p.runStages(ctx, req, &job); serr != nil {
		slog.Error("print job failed",
			"job_id", job.JobID, "stage", serr.Stage, "error", serr.Err)
		return p.failResult(job, domain.CodeUnknown, genericUserMessage)
	}

	job.State = domain.JobStateDone
	if err := p.store.WriteSnapshot(job); err != nil {
		slog.Error("persist done job", "job_id", job.JobID, "error", err)
	}

	return domain.JobResult{
		OK:            true,
		JobID:         job.JobID,
		DocPath:       job.DocPath,
		PrintablePath: job.PrintablePath,
	}
}

// runStages performs the side-effecting stages, persisting the record
// after each one. The first failure stops the sequence; the last
// successful snapshot stays on disk as the durable record.
func (p *Pipeline) runStages(ctx context.Context, req Request, job *domain.PrintJob) *StageError {
	emitStage(req.OnStage, StageBuild)
	fields := p.buildFields(req.Form)

	if req.Options.WriteAuditLog {
		emitStage(req.OnStage, StageAudit)
		if err := p.audit.Insert(ctx, req.Form); err != nil {
			return &StageError{Stage: StageAudit, Err: err}
		}
		p.persist(job)
	}

	emitStage(req.OnStage, StageRender)
	docPath := filepath.Join(p.store.JobDir(job.JobID), "output"+p.renderer.Ext())
	if err := p.renderer.Render(docPath, fields); err != nil {
		return &StageError{Stage: StageRender, Err: err}
	}
	if err := p.verifyNonEmpty(docPath); err != nil {
		return &StageError{Stage: StageRender, Err: err}
	}
	job.DocPath = docPath
	p.persist(job)

	emitStage(req.OnStage, StageConvert)
	printablePath, err := p.converter.Convert(ctx, docPath, p.store.JobDir(job.JobID))
	if err != nil {
		return &StageError{Stage: StageConvert, Err: err}
	}
	if err := p.verifyNonEmpty(printablePath); err != nil {
		return &StageError{Stage: StageConvert, Err: err}
	}
	job.PrintablePath = printablePath
	p.persist(job)

	if req.Options.DispatchToPrinter {
		emitStage(req.OnStage, StageDispatch)
		if err := p.gateway.Dispatch(ctx, printablePath); err != nil {
			return &StageError{Stage: StageDispatch, Err: err}
		}
		job.Printed = true
		p.persist(job)
	}

	return nil
}

// buildFields maps form data to template placeholder tokens, adding
// the server-side date and the fixed reference number.
func (p *Pipeline) buildFields(form domain.FormData) map[string]string {
	birthDate := fmt.Sprintf("%s.%s.%s",
		strings.TrimSpace(form.BirthDay),
		strings.TrimSpace(form.BirthMonth),
		strings.TrimSpace(form.BirthYear))

	return map[string]string{
		document.TokenReferenceNumber: p.referenceNumber,
		document.TokenTodayDate:       p.now().Format("02.01.2006"),
		document.TokenName:            form.Name,
		document.TokenParentName:      form.ParentName,
		document.TokenBirthDate:       birthDate,
		document.TokenPlace:           form.Place,
		document.TokenMunicipality:    form.Municipality,
		document.TokenClass:           form.Class,
		document.TokenProgram:         form.Program,
		document.TokenReason:          form.Reason,
	}
}

// failResult marks the job failed, persists it best effort, and builds
// the terminal result.
func (p *Pipeline) failResult(job domain.PrintJob, code, message string) domain.JobResult {
	job.State = domain.JobStateFailed
	job.ErrorCode = code
	job.UserMessage = message
	p.persist(&job)

	return domain.JobResult{
		JobID:       job.JobID,
		ErrorCode:   code,
		UserMessage: message,
	}
}

// persist writes the current record, logging instead of failing the
// run: losing one intermediate snapshot must not abort a print that
// can still finish.
func (p *Pipeline) persist(job *domain.PrintJob) {
	if err := p.store.WriteSnapshot(*job); err != nil {
		slog.Error("persist job snapshot", "job_id", job.JobID, "error", err)
	}
}

// verifyNonEmpty guards against tools that exit cleanly but produce
// nothing.
func (p *Pipeline) verifyNonEmpty(path string) error {
	info, err := p.stat(path)
	if err != nil {
		return fmt.Errorf("output missing: %s", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output is empty: %s", path)
	}
	return nil
}

// emitStage forwards stage updates when a callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}
