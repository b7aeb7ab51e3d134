package repository

import (
	"context"
	"errors"

	"chatreport/internal/model"
)

// ErrVerificationConflict is returned by RecordVerification when another
// verification of the same file committed between the caller reading the
// latest chain value and writing the new record.
var ErrVerificationConflict = errors.New("verification chain moved concurrently")

// FileRepository defines data access for uploaded files.
type FileRepository interface {
	// Create inserts a new file record.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListByChat returns all files attached to a chat, oldest first.
	ListByChat(ctx context.Context, chatID string) ([]model.File, error)

	// Delete removes a file row by ID. Returns nil if the row did not exist.
	Delete(ctx context.Context, id string) error
}

// VerificationRepository persists verification records. Records are
// append-only; fingerprints of committed records are never updated.
type VerificationRepository interface {
	// RecordVerification inserts the record and updates the owning file's
	// ocr_text, content_fingerprint and verified_at in one transaction, with
	// the file row locked. expectedPrevChain is the chain fingerprint the
	// caller derived the new record from ("" for a first verification); if
	// the latest committed record no longer matches, nothing is written and
	// ErrVerificationConflict is returned.
	RecordVerification(ctx context.Context, rec *model.Verification, ocrText string, expectedPrevChain string) (*model.Verification, error)

	// LatestByFileID returns the most recent verification record for the
	// file, or sql.ErrNoRows when none exists.
	LatestByFileID(ctx context.Context, fileID string) (*model.Verification, error)

	// ListByFileID returns the file's full verification history, newest first.
	ListByFileID(ctx context.Context, fileID string) ([]model.Verification, error)
}

// ReportRepository persists generated report rows. Append-only.
type ReportRepository interface {
	// Create inserts a new report row.
	Create(ctx context.Context, r *model.Report) (*model.Report, error)

	// ListByChat returns all reports generated for a chat, newest first.
	ListByChat(ctx context.Context, chatID string) ([]model.Report, error)
}
