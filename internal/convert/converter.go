package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"certificate-terminal/internal/run"
)

// Converter turns a rendered document into a printable PDF inside
// outDir and returns the produced path. It must fail rather than
// silently leave an empty or missing file.
type Converter interface {
	Convert(ctx context.Context, docPath, outDir string) (string, error)
}

// SofficeConverter converts DOCX to PDF with a headless LibreOffice,
// bounded by Timeout. A source that is already a PDF is verified and
// republished into outDir without invoking the tool.
type SofficeConverter struct {
	Binary  string
	Timeout time.Duration
	Runner  run.Runner
}

// NewSofficeConverter builds the production converter.
func NewSofficeConverter(timeout time.Duration) *SofficeConverter {
	return &SofficeConverter{
		Binary:  "soffice",
		Timeout: timeout,
		Runner:  &run.ExecRunner{},
	}
}

// Convert produces <basename>.pdf in outDir.
func (c *SofficeConverter) Convert(ctx context.Context, docPath, outDir string) (string, error) {
	info, err := os.Stat(docPath)
	if err != nil {
		return "", fmt.Errorf("source document: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("source document is empty: %s", docPath)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Base(docPath)
	pdfPath := filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".pdf")

	if strings.EqualFold(filepath.Ext(docPath), ".pdf") {
		if err := copyFile(docPath, pdfPath); err != nil {
			return "", fmt.Errorf("republish pdf: %w", err)
		}
		return pdfPath, nil
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	result, err := c.Runner.Run(runCtx, c.Binary,
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		docPath,
	)
	if err != nil {
		return "", fmt.Errorf("convert %s (exit=%d): %w: %s",
			base, result.ExitCode, err, strings.TrimSpace(result.Stderr))
	}

	out, err := os.Stat(pdfPath)
	if err != nil {
		return "", fmt.Errorf("converter finished but output is missing: %s", pdfPath)
	}
	if out.Size() == 0 {
		return "", fmt.Errorf("converter produced an empty file: %s", pdfPath)
	}
	return pdfPath, nil
}

// copyFile duplicates src to dst, used for the already-printable path.
func copyFile(src, dst string) error {
	if src == dst {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
