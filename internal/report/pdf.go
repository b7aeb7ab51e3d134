package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDF layout constants, in millimeters on A4 portrait.
const (
	pdfMargin     = 20.0
	bodyLineH     = 5.0
	headingLineH  = 8.0
	blockSpacing  = 8.0
	titleFontSize = 20
	h2FontSize    = 14
	roleFontSize  = 12
	bodyFontSize  = 10
	smallFontSize = 8
)

// pdfWriter tracks the cursor down the page and starts a new page whenever
// the next line would cross the bottom margin. Wrapping uses the font's
// actual string metrics via SplitText, never a fixed character count.
type pdfWriter struct {
	pdf      *fpdf.Fpdf
	y        float64
	pageW    float64
	pageH    float64
	contentW float64
}

func newPDFWriter() *pdfWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	w, h := pdf.GetPageSize()
	return &pdfWriter{
		pdf:      pdf,
		y:        pdfMargin,
		pageW:    w,
		pageH:    h,
		contentW: w - 2*pdfMargin,
	}
}

// ensure breaks to a new page when fewer than need millimeters remain.
func (w *pdfWriter) ensure(need float64) {
	if w.y+need > w.pageH-pdfMargin {
		w.pdf.AddPage()
		w.y = pdfMargin
	}
}

// line writes one already-wrapped line at the cursor and advances it.
func (w *pdfWriter) line(text string, lineH float64) {
	w.ensure(lineH)
	w.y += lineH
	w.pdf.Text(pdfMargin, w.y, text)
}

// wrapped writes body text wrapped to the content width. Explicit newlines
// in the text are preserved as line breaks.
func (w *pdfWriter) wrapped(text string, lineH float64) {
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			w.ensure(lineH)
			w.y += lineH
			continue
		}
		for _, ln := range w.pdf.SplitText(para, w.contentW) {
			w.line(ln, lineH)
		}
	}
}

func (w *pdfWriter) heading(text string, style string, size float64, lineH float64) {
	w.pdf.SetFont("Helvetica", style, size)
	w.ensure(lineH)
	w.y += lineH
	w.pdf.Text(pdfMargin, w.y, text)
}

func (w *pdfWriter) body(size float64) {
	w.pdf.SetFont("Helvetica", "", size)
}

func (w *pdfWriter) space(h float64) {
	w.y += h
}

func renderPDF(in Input) ([]byte, error) {
	w := newPDFWriter()

	// Title block.
	w.heading(in.Title, "B", titleFontSize, 10)
	w.space(2)

	// Metadata block.
	w.body(bodyFontSize)
	w.wrapped(fmt.Sprintf("Generated: %s", in.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")), bodyLineH)
	w.wrapped(fmt.Sprintf("Messages: %d", len(in.Messages)), bodyLineH)
	w.wrapped(fmt.Sprintf("Files: %d", len(in.Files)), bodyLineH)
	w.space(blockSpacing)

	// Executive summary, always present.
	w.heading("Executive Summary", "B", h2FontSize, headingLineH)
	w.body(bodyFontSize)
	w.wrapped(in.Summary, bodyLineH)
	w.space(blockSpacing)

	// Transcript, one block per message in input order.
	w.heading("Conversation Transcript", "B", h2FontSize, headingLineH)
	for _, msg := range in.Messages {
		w.ensure(bodyLineH + 6)
		w.pdf.SetFont("Helvetica", "B", roleFontSize)
		w.y += 6
		w.pdf.Text(pdfMargin, w.y, roleLabel(msg.Role)+":")
		w.body(bodyFontSize)
		w.wrapped(msg.Content, bodyLineH)
		w.space(3)
	}

	// Attachments, only when files exist.
	if len(in.Files) > 0 {
		w.space(blockSpacing - 3)
		w.heading("Attached Files", "B", h2FontSize, headingLineH)
		for _, f := range in.Files {
			w.ensure(bodyLineH + 6)
			w.pdf.SetFont("Helvetica", "B", roleFontSize)
			w.y += 6
			w.pdf.Text(pdfMargin, w.y, fmt.Sprintf("%s (%s)", f.Filename, sizeKB(f.Size)))

			if f.ContentFingerprint != "" {
				w.body(smallFontSize)
				verified := "VERIFIED  " + f.ContentFingerprint
				if f.VerifiedAt != nil {
					verified += "  " + f.VerifiedAt.UTC().Format("2006-01-02 15:04:05 MST")
				}
				w.wrapped(verified, bodyLineH-1)
			}
			if f.OCRText != "" {
				w.pdf.SetFont("Helvetica", "B", bodyFontSize)
				w.line("Extracted Text", bodyLineH)
				w.body(bodyFontSize)
				w.wrapped(f.OCRText, bodyLineH)
			}
			w.space(3)
		}
	}

	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf report: %w", err)
	}
	return buf.Bytes(), nil
}
