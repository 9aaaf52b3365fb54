package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Known placeholder tokens, shared between the pipeline's field map
// and both renderers.
const (
	TokenReferenceNumber = "{{DJELOVODNI_BROJ}}"
	TokenTodayDate       = "{{DANASNJI_DATUM}}"
	TokenName            = "{{IME}}"
	TokenParentName      = "{{RODITELJ}}"
	TokenBirthDate       = "{{DATUM_RODJENJA}}"
	TokenPlace           = "{{MJESTO}}"
	TokenMunicipality    = "{{OPSTINA}}"
	TokenClass           = "{{RAZRED}}"
	TokenProgram         = "{{STRUKA}}"
	TokenReason          = "{{RAZLOG}}"
)

// PDFRenderer generates a plain certificate PDF directly, used when no
// DOCX template is configured (bench setups and fresh installs). The
// output is already printable, so the converter stage just verifies and
// republishes it.
type PDFRenderer struct {
	Title string
	// FontPath points at a UTF-8 TTF for Cyrillic output. Empty falls
	// back to the builtin Arial, which only covers Latin text.
	FontPath string
}

// NewPDFRenderer creates the built-in fallback renderer.
func NewPDFRenderer(title, fontPath string) *PDFRenderer {
	return &PDFRenderer{Title: title, FontPath: fontPath}
}

// Render writes a single-page certificate to outPath.
func (r *PDFRenderer) Render(outPath string, fields map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	family := "Arial"
	if r.FontPath != "" {
		family = "body"
		pdf.AddUTF8Font(family, "", r.FontPath)
		pdf.AddUTF8Font(family, "B", r.FontPath)
	}

	pdf.SetFont(family, "", 10)
	pdf.CellFormat(0, 6, fields[TokenReferenceNumber], "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fields[TokenTodayDate], "", 1, "L", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont(family, "B", 18)
	title := r.Title
	if title == "" {
		title = "UVJERENJE"
	}
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont(family, "", 12)
	for _, row := range certificateRows(fields) {
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(60, 8, row.label, "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 12)
		pdf.MultiCell(0, 8, row.value, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type certificateRow struct {
	label string
	value string
}

// certificateRows lays out field values in document order, skipping
// empty ones.
func certificateRows(fields map[string]string) []certificateRow {
	ordered := []certificateRow{
		{"Ime i prezime:", fields[TokenName]},
		{"Ime roditelja:", fields[TokenParentName]},
		{"Datum rođenja:", fields[TokenBirthDate]},
		{"Mjesto:", fields[TokenPlace]},
		{"Opština:", fields[TokenMunicipality]},
		{"Razred:", fields[TokenClass]},
		{"Struka:", fields[TokenProgram]},
		{"Razlog:", fields[TokenReason]},
	}

	rows := make([]certificateRow, 0, len(ordered))
	for _, row := range ordered {
		if strings.TrimSpace(row.value) == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
