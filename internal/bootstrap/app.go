// Package bootstrap wires configuration, the print pipeline, the kiosk
// navigation machine, and the Wails runtime into one application. It
// owns the bridge between background job execution and the single UI
// dispatch loop.
package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"certificate-terminal/internal/auditlog"
	"certificate-terminal/internal/config"
	"certificate-terminal/internal/convert"
	"certificate-terminal/internal/diagnostics"
	"certificate-terminal/internal/document"
	"certificate-terminal/internal/domain"
	"certificate-terminal/internal/jobs"
	"certificate-terminal/internal/jobstore"
	"certificate-terminal/internal/kiosk"
	"certificate-terminal/internal/logging"
	"certificate-terminal/internal/ops"
	"certificate-terminal/internal/printer"
	"certificate-terminal/internal/printjob"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// doneDwellDefault is how long the Done screen stays before the kiosk
// resets itself for the next visitor.
const doneDwellDefault = 10 * time.Second

// Localized progress lines pushed with each status event.
var stageText = map[string]string{
	printjob.StageCheckPrinter: "Провјера штампача…",
	printjob.StageBuild:        "Припрема документа…",
	printjob.StageAudit:        "Евиденција захтјева…",
	printjob.StageRender:       "Генерисање документа…",
	printjob.StageConvert:      "Претварање у PDF…",
	printjob.StageDispatch:     "Слање на штампач…",
}

// jobRunner isolates the print pipeline behind an interface.
type jobRunner interface {
	Run(ctx context.Context, req printjob.Request) domain.JobResult
}

// UIConfig is the static frontend configuration handed over on load.
type UIConfig struct {
	Title             string           `json:"title"`
	Classes           []string         `json:"classes"`
	Programs          []string         `json:"programs"`
	Reasons           []string         `json:"reasons"`
	PlaceHint         string           `json:"placeHint"`
	MunicipalityHint  string           `json:"municipalityHint"`
	SkipTutorial      bool             `json:"skipTutorial"`
	DebugMode         bool             `json:"debugMode"`
	DebugForm         *domain.FormData `json:"debugForm,omitempty"`
	IdleTimeoutMillis int64            `json:"idleTimeoutMillis"`
}

// App wires configuration, jobs, pipeline, navigation, and UI runtime
// callbacks.
type App struct {
	Config      *config.Config
	Jobs        *jobs.Manager
	Pipeline    jobRunner
	Diagnostics domain.DiagnosticReport

	store   *jobstore.Store
	audit   auditlog.Store
	checker *diagnostics.Checker
	events  *jobs.EventBus
	loop    *kiosk.Loop
	nav     *kiosk.Navigator
	ops     *ops.Server
	assets  fs.FS
	logFile *os.File

	doneDwell time.Duration
	newJobID  func() string

	mu         sync.Mutex
	runtimeCtx context.Context
}

// New builds the application from the environment configuration.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures
// embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logFile, err := logging.Setup(cfg.LogsDir, cfg.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	audit, err := auditlog.Open(auditlog.Options{
		DatabaseURL: cfg.DatabaseURL,
		DataDir:     cfg.VarDir,
	})
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	store := jobstore.NewStore(cfg.JobsDir)
	pipeline := printjob.New(
		store,
		audit,
		chooseRenderer(cfg),
		convert.NewSofficeConverter(cfg.ConvertTimeout),
		printer.NewCUPSGateway(cfg.PrinterName, cfg.SubprocessTimeout, cfg.PrintTimeout),
		cfg.ReferenceNumber,
	)

	checker := diagnostics.NewChecker()

	app := &App{
		Config:      cfg,
		Jobs:        jobs.NewManager(),
		Pipeline:    pipeline,
		Diagnostics: checker.Run(cfg),
		store:       store,
		audit:       audit,
		checker:     checker,
		events:      jobs.NewEventBus(1000),
		loop:        kiosk.NewLoop(),
		assets:      assets,
		logFile:     logFile,
		doneDwell:   doneDwellDefault,
		newJobID:    uuid.NewString,
	}
	app.nav = kiosk.NewNavigator(cfg.IdleTimeout, app.loop.Post, app.emitScreen)
	app.registerScreens()
	app.ops = ops.NewServer(store, app.events, app.GetDiagnostics)

	return app, nil
}

// registerScreens installs the fixed kiosk screen set.
func (a *App) registerScreens() {
	a.nav.Register(startScreen{})
	a.nav.Register(tutorialScreen{})
	a.nav.Register(formScreen{})
	a.nav.Register(reviewScreen{})
	a.nav.Register(printingScreen{app: a})
	a.nav.Register(&doneScreen{app: a})
}

// chooseRenderer uses the configured DOCX template when it exists and
// falls back to the built-in PDF layout otherwise, so a terminal with a
// missing template still prints something usable.
func chooseRenderer(cfg *config.Config) printjob.Renderer {
	if _, err := os.Stat(cfg.TemplatePath); err == nil {
		return docxRenderer{document.NewDocxRenderer(cfg.TemplatePath)}
	}
	slog.Warn("document template missing, using built-in layout", "path", cfg.TemplatePath)
	return pdfRenderer{document.NewPDFRenderer(cfg.AppTitle, "")}
}

type docxRenderer struct{ *document.DocxRenderer }

func (docxRenderer) Ext() string { return ".docx" }

type pdfRenderer struct{ *document.PDFRenderer }

func (pdfRenderer) Ext() string { return ".pdf" }

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:         a.Config.AppTitle,
		Width:         1280,
		Height:        1024,
		Fullscreen:    true,
		Frameless:     true,
		DisableResize: true,
		AssetServer:   assetOptions,
		OnStartup:     a.Startup,
		OnShutdown:    a.Shutdown,
		Bind:          []interface{}{a},
	})
}

// Startup stores the Wails runtime context, starts the dispatch loop
// and the ops listener, and shows the attract screen.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = ctx
	a.mu.Unlock()

	go a.loop.Run()
	if a.ops != nil {
		a.ops.Start(a.Config.OpsListenAddr)
	}

	a.loop.Post(func() {
		if err := a.nav.Show(domain.ScreenStart); err != nil {
			slog.Error("show initial screen", "error", err)
		}
	})
}

// Shutdown stops the dispatch loop and releases process resources.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	a.runtimeCtx = nil
	a.mu.Unlock()

	if a.ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.ops.Shutdown(shutdownCtx); err != nil {
			slog.Error("shut down ops listener", "error", err)
		}
	}
	a.loop.Stop()

	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			slog.Error("close audit store", "error", err)
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// GetUIConfig returns the static configuration the frontend renders
// from: pick lists, hints, and mode flags.
func (a *App) GetUIConfig() UIConfig {
	uiCfg := UIConfig{
		Title:             a.Config.AppTitle,
		Classes:           config.Classes,
		Programs:          config.Programs,
		Reasons:           config.Reasons,
		PlaceHint:         config.PlaceHint,
		MunicipalityHint:  config.MunicipalityHint,
		SkipTutorial:      a.Config.SkipTutorial,
		DebugMode:         a.Config.DebugMode,
		IdleTimeoutMillis: a.Config.IdleTimeout.Milliseconds(),
	}
	if a.Config.DebugMode {
		form := config.DebugFormData()
		uiCfg.DebugForm = &form
	}
	return uiCfg
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns the dependency checks.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	report := a.checker.Run(a.Config)
	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report
}

// CurrentScreen returns the active kiosk screen id.
func (a *App) CurrentScreen() string {
	var current domain.Screen
	a.loop.Do(func() { current = a.nav.Current() })
	return string(current)
}

// Begin leaves the attract screen: straight to the form, or through
// the tutorial when it is enabled.
func (a *App) Begin() error {
	target := domain.ScreenTutorial
	if a.Config.SkipTutorial {
		target = domain.ScreenForm
	}
	return a.showScreen(target)
}

// ShowForm moves from the tutorial to the form.
func (a *App) ShowForm() error {
	return a.showScreen(domain.ScreenForm)
}

// SubmitForm validates the visitor's input and advances to review.
// Validation failures come back as the localized message the form
// screen blocks on.
func (a *App) SubmitForm(form domain.FormData) error {
	if err := kiosk.ValidateForm(form); err != nil {
		return err
	}

	var err error
	a.loop.Do(func() {
		a.nav.Session().SetForm(form)
		err = a.nav.Show(domain.ScreenReview)
	})
	return err
}

// EditForm returns from review to the form with the session intact.
func (a *App) EditForm() error {
	return a.showScreen(domain.ScreenForm)
}

// ConfirmPrint moves to the printing screen, which starts the job.
func (a *App) ConfirmPrint() error {
	return a.showScreen(domain.ScreenPrinting)
}

// Retry starts a fresh print attempt for the submitted form. Only
// valid on the printing screen after a failure; every retry is a new
// job with a new id.
func (a *App) Retry() error {
	var err error
	a.loop.Do(func() {
		if a.nav.Current() != domain.ScreenPrinting {
			err = fmt.Errorf("retry is only available on the printing screen")
			return
		}
		err = a.startJob()
	})
	return err
}

// GoHome clears the session and returns to the attract screen.
func (a *App) GoHome() {
	a.loop.Do(func() { a.nav.Home() })
}

// Touch records visitor activity and pushes back the idle reset.
func (a *App) Touch() {
	a.loop.Post(func() { a.nav.Touch() })
}

// CurrentJob returns current job identity and status.
func (a *App) CurrentJob() domain.Job {
	return a.Jobs.Current()
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// showScreen performs a navigation step on the dispatch loop.
func (a *App) showScreen(target domain.Screen) error {
	var err error
	a.loop.Do(func() { err = a.nav.Show(target) })
	return err
}

// startJob launches one print attempt for the session's form. Runs on
// the dispatch loop; the pipeline itself runs on its own goroutine and
// reports back through posted closures.
func (a *App) startJob() error {
	form, ok := a.nav.Session().Form()
	if !ok {
		a.nav.Home()
		return fmt.Errorf("no submitted form in session")
	}

	jobID := a.newJobID()
	if err := a.Jobs.Start(jobID); err != nil {
		return err
	}

	a.nav.SetIdleSuspended(true)
	go a.runPrintJob(jobID, form)
	return nil
}

// runPrintJob executes the pipeline and maps its outcome to job events
// and screen changes, all marshaled through the dispatch loop.
func (a *App) runPrintJob(jobID string, form domain.FormData) {
	req := printjob.Request{
		JobID: jobID,
		Form:  form,
		Options: printjob.Options{
			DispatchToPrinter: true,
			WriteAuditLog:     true,
		},
		OnStage: func(stage string) {
			status, ok := stageToStatus(stage)
			if !ok {
				return
			}
			a.loop.Post(func() {
				if err := a.Jobs.Transition(status); err != nil {
					return
				}
				a.publishEvent(jobs.Event{
					JobID:   jobID,
					Type:    jobs.EventTypeStatus,
					Status:  status,
					Stage:   stage,
					Message: stageText[stage],
				})
			})
		},
	}

	result := a.Pipeline.Run(context.Background(), req)
	a.loop.Post(func() { a.finishJob(jobID, result) })
}

// finishJob applies the terminal result on the dispatch loop: exactly
// one result or error event, idle re-armed, and the screen advanced
// only when the visitor is still watching the printing screen.
func (a *App) finishJob(jobID string, result domain.JobResult) {
	a.nav.SetIdleSuspended(false)

	if result.OK {
		_ = a.Jobs.Transition(domain.JobStatusDone)
		a.publishEvent(jobs.Event{
			JobID:         jobID,
			Type:          jobs.EventTypeResult,
			Status:        domain.JobStatusDone,
			Message:       "Увјерење је одштампано.",
			DocPath:       result.DocPath,
			PrintablePath: result.PrintablePath,
		})
	} else {
		_ = a.Jobs.Transition(domain.JobStatusFailed)
		a.publishEvent(jobs.Event{
			JobID:       jobID,
			Type:        jobs.EventTypeError,
			Status:      domain.JobStatusFailed,
			ErrorCode:   result.ErrorCode,
			UserMessage: result.UserMessage,
		})
	}

	// A visitor who already backed out of the printing screen must not
	// be yanked to another screen by a stale result.
	if a.nav.Current() != domain.ScreenPrinting {
		slog.Info("job finished off-screen", "job_id", jobID, "screen", a.nav.Current())
		return
	}

	if result.OK {
		a.nav.Session().SetLastJobID(result.JobID)
		if err := a.nav.Show(domain.ScreenDone); err != nil {
			slog.Error("show done screen", "job_id", jobID, "error", err)
		}
	}
	// On failure the printing screen stays up; the frontend renders the
	// error panel from the error event and offers retry or home.
}

// publishEvent stores event history and emits runtime push
// notifications.
func (a *App) publishEvent(event jobs.Event) {
	published := a.events.Publish(event)

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "job:event", published)
	}
}

// emitScreen pushes the active screen id to the frontend.
func (a *App) emitScreen(screen domain.Screen) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, "screen:change", string(screen))
	}
}

// stageToStatus maps pipeline stage codes to job statuses.
func stageToStatus(stage string) (domain.JobStatus, bool) {
	switch stage {
	case printjob.StageCheckPrinter:
		return domain.JobStatusChecking, true
	case printjob.StageBuild:
		return domain.JobStatusBuilding, true
	case printjob.StageAudit:
		return domain.JobStatusRecording, true
	case printjob.StageRender:
		return domain.JobStatusRendering, true
	case printjob.StageConvert:
		return domain.JobStatusConverting, true
	case printjob.StageDispatch:
		return domain.JobStatusDispatching, true
	default:
		return "", false
	}
}
