package report

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

func testDocument() Document {
	return Document{
		Title:       "Laporan Rekap Penjualan",
		GeneratedAt: time.Date(2026, time.August, 31, 14, 5, 0, 0, time.UTC),
		Summary:     "Total penjualan bulan ini adalah 42 pesanan.",
		RowCount:    1,
		Tables:      []string{"orders"},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer("Generated by SiMbah - Sistem Informasi Penjualan")
	out, err := r.Render(testDocument())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with a PDF header: %q", out[:min(8, len(out))])
	}
}

func TestRenderEmptySummaryUsesPlaceholder(t *testing.T) {
	doc := testDocument()
	doc.Summary = ""
	r := NewRenderer("footer")
	if _, err := r.Render(doc); err != nil {
		t.Fatalf("empty summary must not fail: %v", err)
	}
}

func TestRenderLongSummaryPaginates(t *testing.T) {
	doc := testDocument()
	doc.Summary = strings.Repeat("Penjualan meningkat dibanding bulan sebelumnya. ", 400)
	r := NewRenderer("footer")
	out, err := r.Render(doc)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	// A wrapped 400-sentence summary cannot fit one A4 page. The page tree
	// records the total as "/Count N".
	m := regexp.MustCompile(`/Count (\d+)`).FindSubmatch(out)
	if m == nil {
		t.Fatal("no page count found in PDF output")
	}
	if n, _ := strconv.Atoi(string(m[1])); n < 2 {
		t.Errorf("expected multiple pages, got %d", n)
	}
}

func TestFormatTimestampID(t *testing.T) {
	ts := time.Date(2026, time.January, 2, 9, 7, 0, 0, time.UTC)
	if got, want := formatTimestampID(ts), "2 Januari 2026 09.07"; got != want {
		t.Errorf("formatTimestampID = %q, want %q", got, want)
	}
}
