package document

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Renderer produces one filled-in document at outPath from a map of
// placeholder tokens (e.g. "{{IME}}") to literal replacement text.
type Renderer interface {
	Render(outPath string, fields map[string]string) error
}

// DocxRenderer fills a DOCX template by rewriting its XML parts. Every
// occurrence of every token is replaced in the document body, headers
// and footers, including text inside tables; all other parts are
// copied through untouched so formatting survives.
//
// Templates must keep each placeholder inside a single text run. Word
// splits runs on spell-check and revision marks, so templates are
// authored with proofing disabled on placeholder paragraphs.
type DocxRenderer struct {
	TemplatePath string
}

// NewDocxRenderer creates a renderer bound to a template file.
func NewDocxRenderer(templatePath string) *DocxRenderer {
	return &DocxRenderer{TemplatePath: templatePath}
}

// Render writes the filled document to outPath.
func (r *DocxRenderer) Render(outPath string, fields map[string]string) error {
	reader, err := zip.OpenReader(r.TemplatePath)
	if err != nil {
		return fmt.Errorf("open template %s: %w", r.TemplatePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output document: %w", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for _, file := range reader.File {
		if err := copyPart(writer, file, fields); err != nil {
			_ = writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize output document: %w", err)
	}
	return out.Sync()
}

// copyPart writes one archive entry, substituting placeholders in the
// text-bearing parts.
func copyPart(writer *zip.Writer, file *zip.File, fields map[string]string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open template part %s: %w", file.Name, err)
	}
	defer src.Close()

	header := file.FileHeader
	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return fmt.Errorf("create output part %s: %w", file.Name, err)
	}

	if !isTextPart(file.Name) {
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("copy part %s: %w", file.Name, err)
		}
		return nil
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read template part %s: %w", file.Name, err)
	}

	content := string(data)
	for token, value := range fields {
		content = strings.ReplaceAll(content, token, escapeXML(value))
	}

	if _, err := io.WriteString(dst, content); err != nil {
		return fmt.Errorf("write part %s: %w", file.Name, err)
	}
	return nil
}

// isTextPart reports whether a DOCX part can contain placeholder text:
// the body plus any header or footer.
func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	base := filepath.Base(name)
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(base, ".xml") {
		return false
	}
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// escapeXML protects replacement values containing markup characters.
func escapeXML(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
