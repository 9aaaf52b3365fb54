// Package diagnostics validates the terminal's environment at startup:
// CUPS tools, the document converter, the certificate template, and
// the writable runtime directories.
package diagnostics

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"certificate-terminal/internal/config"
	"certificate-terminal/internal/domain"
)

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies.
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all startup checks and returns a combined report.
func (c *Checker) Run(cfg *config.Config) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkTool("lpstat"),
		c.checkTool("lp"),
		c.checkTool("soffice"),
		c.checkPrinterName(cfg.PrinterName),
		c.checkTemplate(cfg.TemplatePath),
		c.checkWritableDir("jobs_dir", "Jobs directory", cfg.JobsDir),
		c.checkWritableDir("logs_dir", "Logs directory", cfg.LogsDir),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkTool verifies a required CLI executable is on PATH.
func (c *Checker) checkTool(name string) domain.DiagnosticItem {
	path, err := c.lookPath(name)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      "tool_" + name,
			Name:    name,
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Tool not found in PATH: %s", name),
			Hint:    "Install it and ensure the binary is available on PATH before starting the terminal.",
		}
	}

	return domain.DiagnosticItem{
		ID:      "tool_" + name,
		Name:    name,
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkPrinterName flags a fresh install still carrying the
// placeholder printer name.
func (c *Checker) checkPrinterName(name string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "printer_name",
		Name: "Printer",
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "Printer_Name" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Printer is not configured."
		item.Hint = "Set POTVRDE_PRINTER_NAME to the CUPS queue of the kiosk printer."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Configured queue: %s", trimmed)
	return item
}

// checkTemplate validates the configured certificate template. A
// missing template is a warning-grade pass: the terminal falls back to
// the built-in PDF layout.
func (c *Checker) checkTemplate(templatePath string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "template",
		Name: "Certificate template",
	}

	if strings.TrimSpace(templatePath) == "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "No template configured; using the built-in layout."
		return item
	}

	info, err := c.stat(templatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			item.Status = domain.DiagnosticStatusPass
			item.Message = fmt.Sprintf("Template missing (%s); using the built-in layout.", templatePath)
			item.Hint = "Install the official DOCX template to print on letterhead."
			return item
		}
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot access template: %s", templatePath)
		return item
	}

	if info.IsDir() || info.Size() == 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Template is not a usable file: %s", templatePath)
		item.Hint = "Point POTVRDE_TEMPLATE_PATH at the DOCX template file."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Template found: %s", templatePath)
	return item
}

// checkWritableDir validates a runtime directory exists and accepts
// writes.
func (c *Checker) checkWritableDir(id, name, dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   id,
		Name: name,
	}

	if err := c.mkdirAll(dir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create directory: %s", dir)
		item.Hint = "Check POTVRDE_VAR_DIR and filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", dir)
		item.Hint = "Check POTVRDE_VAR_DIR and filesystem permissions."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dir)
	return item
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
	}
}
