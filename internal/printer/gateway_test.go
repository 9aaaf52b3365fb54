package printer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"certificate-terminal/internal/domain"
	"certificate-terminal/internal/run"
)

// scriptedRunner replays canned results per command name.
type scriptedRunner struct {
	results map[string]run.Result
	errs    map[string]error
	calls   []string
}

func (s *scriptedRunner) Run(ctx context.Context, name string, args ...string) (run.Result, error) {
	key := name
	if len(args) > 0 {
		key = name + " " + args[0]
	}
	s.calls = append(s.calls, key)
	return s.results[key], s.errs[key]
}

func gateway(runner run.Runner) *CUPSGateway {
	return &CUPSGateway{PrinterName: "HP_LaserJet", Runner: runner}
}

// TestReadinessNotConfigured catches the fresh-install placeholder.
func TestReadinessNotConfigured(t *testing.T) {
	for _, name := range []string{"", "  ", "Printer_Name"} {
		g := &CUPSGateway{PrinterName: name, Runner: &scriptedRunner{}}
		r := g.CheckReadiness(context.Background())
		if r.Ready || r.Code != domain.CodePrnNotConfigured {
			t.Fatalf("name %q: readiness = %+v", name, r)
		}
		if r.Message == "" {
			t.Fatal("expected operator message")
		}
	}
}

// TestReadinessNotFound maps an unknown destination to PRN_NOT_FOUND.
func TestReadinessNotFound(t *testing.T) {
	runner := &scriptedRunner{
		results: map[string]run.Result{
			"lpstat -p": {ExitCode: 1, Stderr: `lpstat: Unknown destination "HP_LaserJet"!`},
		},
		errs: map[string]error{"lpstat -p": errors.New("exit status 1")},
	}

	r := gateway(runner).CheckReadiness(context.Background())
	if r.Ready || r.Code != domain.CodePrnNotFound {
		t.Fatalf("readiness = %+v", r)
	}
}

// TestReadinessDisabled recognizes paused and disabled queues.
func TestReadinessDisabled(t *testing.T) {
	for _, stdout := range []string{
		"printer HP_LaserJet disabled since Mon",
		"printer HP_LaserJet is paused",
	} {
		runner := &scriptedRunner{
			results: map[string]run.Result{"lpstat -p": {Stdout: stdout}},
		}
		r := gateway(runner).CheckReadiness(context.Background())
		if r.Ready || r.Code != domain.CodePrnDisabled {
			t.Fatalf("stdout %q: readiness = %+v", stdout, r)
		}
	}
}

// TestReadinessNotAccepting reads the queue listing for rejections.
func TestReadinessNotAccepting(t *testing.T) {
	runner := &scriptedRunner{
		results: map[string]run.Result{
			"lpstat -p": {Stdout: "printer HP_LaserJet is idle.  enabled since Mon"},
			"lpstat -a": {Stdout: "HP_LaserJet not accepting requests since Mon -\n\treason unknown"},
		},
	}

	r := gateway(runner).CheckReadiness(context.Background())
	if r.Ready || r.Code != domain.CodePrnNotAccepting {
		t.Fatalf("readiness = %+v", r)
	}
}

// TestReadinessOK reports ready for an idle accepting queue.
func TestReadinessOK(t *testing.T) {
	runner := &scriptedRunner{
		results: map[string]run.Result{
			"lpstat -p": {Stdout: "printer HP_LaserJet is idle.  enabled since Mon"},
			"lpstat -a": {Stdout: "HP_LaserJet accepting requests since Mon"},
		},
	}

	r := gateway(runner).CheckReadiness(context.Background())
	if !r.Ready || r.Code != domain.CodeOK {
		t.Fatalf("readiness = %+v", r)
	}
}

// TestReadinessDegradesOpen assumes ready when lpstat itself cannot run.
func TestReadinessDegradesOpen(t *testing.T) {
	runner := &scriptedRunner{
		results: map[string]run.Result{"lpstat -p": {ExitCode: -1}},
		errs:    map[string]error{"lpstat -p": errors.New("lpstat: command not found")},
	}

	r := gateway(runner).CheckReadiness(context.Background())
	if !r.Ready {
		t.Fatalf("broken probe must not block printing: %+v", r)
	}
}

// TestDispatchMissingFile fails fast without invoking lp.
func TestDispatchMissingFile(t *testing.T) {
	runner := &scriptedRunner{}
	if err := gateway(runner).Dispatch(context.Background(), "/nonexistent.pdf"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(runner.calls) != 0 {
		t.Fatalf("lp should not run, calls = %v", runner.calls)
	}
}

// TestDispatchSuccess sends the file through lp.
func TestDispatchSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := os.WriteFile(path, []byte("%PDF-fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := &scriptedRunner{}
	if err := gateway(runner).Dispatch(context.Background(), path); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0] != "lp -d" {
		t.Fatalf("calls = %v", runner.calls)
	}
}

// TestDispatchFailure propagates lp errors.
func TestDispatchFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := os.WriteFile(path, []byte("%PDF-fake"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := &scriptedRunner{
		results: map[string]run.Result{"lp -d": {ExitCode: 1, Stderr: "lp: no default destination"}},
		errs:    map[string]error{"lp -d": errors.New("exit status 1")},
	}
	if err := gateway(runner).Dispatch(context.Background(), path); err == nil {
		t.Fatal("expected dispatch error")
	}
}
