// Package printer talks to the CUPS queue for the single kiosk
// printer: a conservative readiness probe via lpstat and dispatch via
// lp. CUPS error reporting varies by driver, so the probe only trusts
// the states it can recognize and otherwise assumes ready.
package printer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"certificate-terminal/internal/domain"
	"certificate-terminal/internal/run"
)

// Localized operator-facing messages for not-ready states.
const (
	msgNotConfigured = "Printer nije podešen. Pozovi osoblje."
	msgNotFound      = "Printer nije pronađen. Provjeri da li je uključen."
	msgDisabled      = "Printer je pauziran. Pozovi osoblje."
	msgNotAccepting  = "Printer ne prima zahtjeve. Pozovi osoblje."
)

// unconfiguredName is the placeholder left by a fresh install.
const unconfiguredName = "Printer_Name"

// Readiness is the outcome of one printer probe.
type Readiness struct {
	Ready   bool
	Code    string
	Message string
}

// Gateway checks queue readiness and dispatches printable files.
type Gateway interface {
	CheckReadiness(ctx context.Context) Readiness
	Dispatch(ctx context.Context, path string) error
}

// CUPSGateway is the production gateway for one named CUPS printer.
type CUPSGateway struct {
	PrinterName  string
	ProbeTimeout time.Duration
	PrintTimeout time.Duration
	Runner       run.Runner
}

// NewCUPSGateway builds a gateway with real process execution.
func NewCUPSGateway(printerName string, probeTimeout, printTimeout time.Duration) *CUPSGateway {
	return &CUPSGateway{
		PrinterName:  printerName,
		ProbeTimeout: probeTimeout,
		PrintTimeout: printTimeout,
		Runner:       &run.ExecRunner{},
	}
}

// CheckReadiness probes the queue state. When lpstat itself cannot run
// the probe degrades open and reports ready, so a broken status tool
// never blocks printing.
func (g *CUPSGateway) CheckReadiness(ctx context.Context) Readiness {
	name := strings.TrimSpace(g.PrinterName)
	if name == "" || name == unconfiguredName {
		return Readiness{Code: domain.CodePrnNotConfigured, Message: msgNotConfigured}
	}

	probeCtx, cancel := g.bounded(ctx, g.ProbeTimeout)
	defer cancel()

	// Example: `printer HP_LaserJet is idle.  enabled since ...`
	result, err := g.Runner.Run(probeCtx, "lpstat", "-p", name)
	if err != nil {
		if result.ExitCode > 0 {
			// Typical stderr: `lpstat: Unknown destination "X"!`
			return Readiness{Code: domain.CodePrnNotFound, Message: msgNotFound}
		}
		slog.Warn("printer readiness probe failed, assuming ready", "error", err)
		return Readiness{Ready: true, Code: domain.CodeOK}
	}

	out := strings.ToLower(result.Stdout)
	if strings.Contains(out, "disabled") || strings.Contains(out, "paused") {
		return Readiness{Code: domain.CodePrnDisabled, Message: msgDisabled}
	}

	// Queue state catches `not accepting requests` separately.
	queues, err := g.Runner.Run(probeCtx, "lpstat", "-a")
	if err == nil {
		prefix := strings.ToLower(name) + " "
		for _, line := range strings.Split(queues.Stdout, "\n") {
			lower := strings.ToLower(line)
			if strings.HasPrefix(lower, prefix) && strings.Contains(lower, "not accepting requests") {
				return Readiness{Code: domain.CodePrnNotAccepting, Message: msgNotAccepting}
			}
		}
	}

	return Readiness{Ready: true, Code: domain.CodeOK}
}

// Dispatch sends one printable file to the queue, failing fast on a
// missing file, a failing lp invocation, or the print timeout.
func (g *CUPSGateway) Dispatch(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("dispatch called with empty file path")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("printable file: %w", err)
	}

	printCtx, cancel := g.bounded(ctx, g.PrintTimeout)
	defer cancel()

	result, err := g.Runner.Run(printCtx, "lp", "-d", g.PrinterName, "-o", "fit-to-page", path)
	if err != nil {
		return fmt.Errorf("lp failed (exit=%d): %w: %s",
			result.ExitCode, err, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// bounded optionally wraps ctx with a timeout.
func (g *CUPSGateway) bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
