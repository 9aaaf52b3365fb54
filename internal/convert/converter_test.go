package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"certificate-terminal/internal/run"
)

// fakeRunner scripts one process execution for converter tests.
type fakeRunner struct {
	result    run.Result
	err       error
	onRun     func(outDir string)
	lastArgs  []string
	callCount int
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (run.Result, error) {
	f.callCount++
	f.lastArgs = args
	if f.onRun != nil {
		// Last CLI arg is the source path; outdir precedes it.
		for i, arg := range args {
			if arg == "--outdir" && i+1 < len(args) {
				f.onRun(args[i+1])
			}
		}
	}
	if ctx.Err() != nil {
		return f.result, ctx.Err()
	}
	return f.result, f.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestConvertSuccess verifies the produced PDF path and non-empty check.
func TestConvertSuccess(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "output.docx")
	writeFile(t, docPath, "docx bytes")

	runner := &fakeRunner{
		onRun: func(outDir string) {
			writeFile(t, filepath.Join(outDir, "output.pdf"), "%PDF-fake")
		},
	}
	conv := &SofficeConverter{Binary: "soffice", Timeout: time.Second, Runner: runner}

	pdfPath, err := conv.Convert(context.Background(), docPath, dir)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if pdfPath != filepath.Join(dir, "output.pdf") {
		t.Fatalf("pdfPath = %s", pdfPath)
	}
	if runner.callCount != 1 {
		t.Fatalf("runner calls = %d", runner.callCount)
	}
}

// TestConvertMissingOutput fails when the tool exits zero but writes
// nothing.
func TestConvertMissingOutput(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "output.docx")
	writeFile(t, docPath, "docx bytes")

	conv := &SofficeConverter{Binary: "soffice", Runner: &fakeRunner{}}
	if _, err := conv.Convert(context.Background(), docPath, dir); err == nil {
		t.Fatal("expected error for missing converter output")
	}
}

// TestConvertEmptyOutput rejects zero-byte results.
func TestConvertEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "output.docx")
	writeFile(t, docPath, "docx bytes")

	runner := &fakeRunner{
		onRun: func(outDir string) {
			writeFile(t, filepath.Join(outDir, "output.pdf"), "")
		},
	}
	conv := &SofficeConverter{Binary: "soffice", Runner: runner}
	if _, err := conv.Convert(context.Background(), docPath, dir); err == nil {
		t.Fatal("expected error for empty converter output")
	}
}

// TestConvertToolFailure propagates non-zero exits with stderr context.
func TestConvertToolFailure(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "output.docx")
	writeFile(t, docPath, "docx bytes")

	runner := &fakeRunner{
		result: run.Result{ExitCode: 77, Stderr: "no such filter"},
		err:    errors.New("exit status 77"),
	}
	conv := &SofficeConverter{Binary: "soffice", Runner: runner}
	if _, err := conv.Convert(context.Background(), docPath, dir); err == nil {
		t.Fatal("expected error for failing tool")
	}
}

// TestConvertTimeout surfaces the deadline as an error.
func TestConvertTimeout(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "output.docx")
	writeFile(t, docPath, "docx bytes")

	conv := &SofficeConverter{
		Binary:  "soffice",
		Timeout: time.Nanosecond,
		Runner:  &fakeRunner{},
	}

	_, err := conv.Convert(context.Background(), docPath, dir)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

// TestConvertMissingSource fails fast before invoking the tool.
func TestConvertMissingSource(t *testing.T) {
	runner := &fakeRunner{}
	conv := &SofficeConverter{Binary: "soffice", Runner: runner}

	if _, err := conv.Convert(context.Background(), "/nonexistent.docx", t.TempDir()); err == nil {
		t.Fatal("expected error for missing source")
	}
	if runner.callCount != 0 {
		t.Fatalf("tool should not run, calls = %d", runner.callCount)
	}
}

// TestConvertPassThroughPDF republishes an already-printable source.
func TestConvertPassThroughPDF(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	pdfSrc := filepath.Join(srcDir, "output.pdf")
	writeFile(t, pdfSrc, "%PDF-fake")

	runner := &fakeRunner{}
	conv := &SofficeConverter{Binary: "soffice", Runner: runner}

	pdfPath, err := conv.Convert(context.Background(), pdfSrc, outDir)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if runner.callCount != 0 {
		t.Fatalf("tool should not run for pdf source, calls = %d", runner.callCount)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil || string(data) != "%PDF-fake" {
		t.Fatalf("republished pdf = %q, err %v", data, err)
	}
}
