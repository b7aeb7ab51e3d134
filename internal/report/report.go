package report

// Package report composes the final report document out of a conversation
// snapshot: summary, transcript and attachment metadata in, one HTML or PDF
// document out. Rendering is a pure transform; nothing here talks to
// storage, the database or the AI gateway.

import (
	"fmt"
	"time"

	"chatreport/internal/model"
)

// Format selects the output document type.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Extension returns the file extension for the format, without a dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}

// ParseFormat validates a requested format, defaulting to PDF.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", string(FormatPDF):
		return FormatPDF, nil
	case string(FormatHTML):
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", s)
	}
}

// Input is the point-in-time snapshot a report is rendered from. Messages
// must already be in creation order; the renderers preserve it.
type Input struct {
	Title       string
	GeneratedAt time.Time
	Summary     string
	Messages    []model.Message
	Files       []model.File
}

// Render produces the document bytes for the requested format. Section
// order is identical in both: title, metadata, executive summary,
// transcript, and — only when files are attached — the attachments section.
func Render(format Format, in Input) ([]byte, error) {
	if in.Title == "" {
		in.Title = "AI Report"
	}
	switch format {
	case FormatHTML:
		return renderHTML(in)
	case FormatPDF:
		return renderPDF(in)
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// sizeKB renders a byte count the way the report shows it: kilobytes with
// two decimals, e.g. 204800 -> "200.00 KB".
func sizeKB(size int64) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

func roleLabel(role string) string {
	if role == model.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
