package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Document is everything the renderer needs to lay out one report.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Summary     string
	RowCount    int
	Tables      []string
}

// Renderer produces a simple paginated A4 report: centered title, metadata
// line, rule, word-wrapped summary block, metrics line and a centered
// footer on every page. Text wraps at the printable width using measured
// string widths; overflow starts a new page automatically.
type Renderer struct {
	footer string
}

func NewRenderer(footer string) *Renderer {
	return &Renderer{footer: footer}
}

const (
	pageMargin   = 50.0
	bottomMargin = 90.0
)

func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, bottomMargin)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-40)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 10, r.footer, "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 26, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 14, "Tanggal pembuatan: "+formatTimestampID(doc.GeneratedAt), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pageW, _ := pdf.GetPageSize()
	pdf.SetDrawColor(51, 51, 51)
	pdf.SetLineWidth(1)
	y := pdf.GetY()
	pdf.Line(pageMargin, y, pageW-pageMargin, y)
	pdf.Ln(18)

	// Summary block
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 18, "Ringkasan Eksekutif", "", 1, "L", false, 0, "")

	summary := strings.TrimSpace(doc.Summary)
	if summary == "" {
		summary = "(ringkasan tidak tersedia)"
	}
	summary = strings.ReplaceAll(summary, "**", "")
	summary = strings.ReplaceAll(summary, "\n", " ")

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 17, summary, "", "L", false)
	pdf.Ln(8)

	// Metrics
	metrics := []string{fmt.Sprintf("Jumlah baris: %d", doc.RowCount)}
	if len(doc.Tables) > 0 {
		metrics = append(metrics, "Tabel: "+strings.Join(doc.Tables, ", "))
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 16, "Ringkasan Data", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 15, strings.Join(metrics, " | "), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// formatTimestampID renders the long Indonesian date style, e.g.
// "31 Agustus 2026 14.05".
func formatTimestampID(t time.Time) string {
	return fmt.Sprintf("%d %s %d %02d.%02d",
		t.Day(), indonesianMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
