package report

import (
	"bytes"
	"fmt"
	"html/template"

	"chatreport/internal/model"
)

// htmlTemplate is the flowing-markup rendition of the report. Long message
// and OCR content relies on pre-wrap so nothing is truncated.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: system-ui, -apple-system, sans-serif;
      max-width: 800px;
      margin: 0 auto;
      padding: 40px 20px;
      line-height: 1.6;
      color: #1a1a1a;
    }
    h1 {
      color: #3b82f6;
      border-bottom: 3px solid #3b82f6;
      padding-bottom: 10px;
      margin-bottom: 30px;
    }
    h2 {
      color: #6366f1;
      margin-top: 30px;
    }
    .metadata {
      background: #f3f4f6;
      padding: 20px;
      border-radius: 8px;
      margin-bottom: 30px;
    }
    .summary {
      white-space: pre-wrap;
    }
    .message {
      margin: 20px 0;
      padding: 15px;
      border-left: 4px solid #e5e7eb;
    }
    .message.user {
      border-left-color: #3b82f6;
      background: #eff6ff;
    }
    .message.assistant {
      border-left-color: #6366f1;
      background: #eef2ff;
    }
    .message-role {
      font-weight: 600;
      margin-bottom: 5px;
      text-transform: uppercase;
      font-size: 0.875rem;
    }
    .message-content {
      white-space: pre-wrap;
    }
    .files {
      background: #f9fafb;
      padding: 20px;
      border-radius: 8px;
      margin-top: 30px;
    }
    .file-item {
      padding: 10px;
      margin: 5px 0;
      background: white;
      border-radius: 4px;
      border: 1px solid #e5e7eb;
    }
    .badge {
      display: inline-block;
      padding: 2px 8px;
      margin-left: 8px;
      border-radius: 9999px;
      background: #dcfce7;
      color: #166534;
      font-size: 0.75rem;
      font-weight: 600;
      text-transform: uppercase;
    }
    .fingerprint {
      font-family: monospace;
      font-size: 0.8rem;
      word-break: break-all;
      color: #4b5563;
      margin-top: 4px;
    }
    .ocr {
      margin-top: 8px;
      padding: 10px;
      background: #f3f4f6;
      border-radius: 4px;
    }
    .ocr-label {
      font-weight: 600;
      font-size: 0.8rem;
      text-transform: uppercase;
      margin-bottom: 4px;
    }
    .ocr pre {
      margin: 0;
      white-space: pre-wrap;
      font-size: 0.85rem;
    }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>

  <div class="metadata">
    <h2>Report Information</h2>
    <p><strong>Generated:</strong> {{.Generated}}</p>
    <p><strong>Messages:</strong> {{len .Messages}}</p>
    <p><strong>Files:</strong> {{len .Files}}</p>
  </div>

  <h2>Executive Summary</h2>
  <div class="summary">{{.Summary}}</div>

  <h2>Conversation Transcript</h2>
{{- range .Messages}}
  <div class="message {{.Role}}">
    <div class="message-role">{{.Role}}</div>
    <div class="message-content">{{.Content}}</div>
  </div>
{{- end}}
{{- if .Files}}

  <div class="files">
    <h2>Attached Files</h2>
{{- range .Files}}
    <div class="file-item">
      <strong>{{.Filename}}</strong> ({{.SizeKB}})
      {{- if .Fingerprint}}<span class="badge">verified</span>
      <div class="fingerprint">{{.Fingerprint}}{{if .VerifiedAt}} &middot; {{.VerifiedAt}}{{end}}</div>
      {{- end}}
      {{- if .OCRText}}
      <div class="ocr">
        <div class="ocr-label">Extracted Text</div>
        <pre>{{.OCRText}}</pre>
      </div>
      {{- end}}
    </div>
{{- end}}
  </div>
{{- end}}

</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlTemplate))

type htmlFile struct {
	Filename    string
	SizeKB      string
	Fingerprint string
	VerifiedAt  string
	OCRText     string
}

type htmlData struct {
	Title     string
	Generated string
	Summary   string
	Messages  []model.Message
	Files     []htmlFile
}

func renderHTML(in Input) ([]byte, error) {
	data := htmlData{
		Title:     in.Title,
		Generated: in.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		Summary:   in.Summary,
		Messages:  in.Messages,
	}
	for _, f := range in.Files {
		hf := htmlFile{
			Filename:    f.Filename,
			SizeKB:      sizeKB(f.Size),
			Fingerprint: f.ContentFingerprint,
			OCRText:     f.OCRText,
		}
		if f.VerifiedAt != nil {
			hf.VerifiedAt = f.VerifiedAt.UTC().Format("2006-01-02 15:04:05 MST")
		}
		data.Files = append(data.Files, hf)
	}

	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}
