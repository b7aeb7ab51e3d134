package model

import "time"

// File represents an uploaded file attached to a chat.
//
// OCRText, ContentFingerprint and VerifiedAt start empty and are written
// exactly once per verification run, together with the verification record,
// in a single transaction. The pipeline never deletes files.
type File struct {
	ID                 string     `json:"id"`
	ChatID             string     `json:"chat_id"`
	UserID             string     `json:"user_id"`
	Filename           string     `json:"filename"`
	MimeType           string     `json:"mime_type"`
	StoragePath        string     `json:"storage_path"`
	Size               int64      `json:"size"`
	OCRText            string     `json:"ocr_text,omitempty"`
	ContentFingerprint string     `json:"content_fingerprint,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Verification is one attestation of a file's content.
//
// ContentFingerprint is the SHA-256 of the file bytes. ChainFingerprint
// binds it to the verification time and to the previous record's chain
// value, so repeated verifications of the same file form a tamper-evident
// history. Records are immutable once written; re-verifying appends a new
// row.
type Verification struct {
	ID                 string            `json:"id"`
	FileID             string            `json:"file_id"`
	ContentFingerprint string            `json:"content_fingerprint"`
	ChainFingerprint   string            `json:"chain_fingerprint"`
	VerifiedBy         string            `json:"verified_by"`
	Status             string            `json:"status"`
	Metadata           map[string]any    `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
}

// Report is one generated report document. Append-only; a new generation
// call always produces a new row, never mutates an old one.
type Report struct {
	ID           string    `json:"id"`
	ChatID       string    `json:"chat_id"`
	Title        string    `json:"title"`
	StoragePath  string    `json:"storage_path"`
	DownloadURL  string    `json:"download_url,omitempty"`
	MessageCount int       `json:"message_count"`
	FileCount    int       `json:"file_count"`
	CreatedAt    time.Time `json:"created_at"`
}
