package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"chatreport/internal/model"
	"chatreport/internal/repository"
)

const verificationColumns = `id, file_id, content_fingerprint, chain_fingerprint,
	verified_by, status, metadata, created_at`

// VerificationPostgres is a PostgreSQL implementation of
// repository.VerificationRepository. Records are append-only: UPDATE is
// never issued against file_verifications.
type VerificationPostgres struct {
	db *sql.DB
}

// NewVerificationPostgres creates a new VerificationPostgres repository.
func NewVerificationPostgres(db *sql.DB) *VerificationPostgres {
	return &VerificationPostgres{db: db}
}

var _ repository.VerificationRepository = (*VerificationPostgres)(nil)

// RecordVerification commits the record and the file's denormalized
// verification fields atomically. The file row is locked FOR UPDATE for the
// duration of the transaction, serialising concurrent verifications of the
// same file; the expectedPrevChain check then guarantees the record really
// extends the chain the caller read.
func (r *VerificationPostgres) RecordVerification(ctx context.Context, rec *model.Verification, ocrText string, expectedPrevChain string) (*model.Verification, error) {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal verification metadata: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	const qLock = `SELECT id FROM files WHERE id = $1 FOR UPDATE`
	var lockedID string
	if err := tx.QueryRowContext(ctx, qLock, rec.FileID).Scan(&lockedID); err != nil {
		return nil, err
	}

	const qPrev = `
		SELECT chain_fingerprint
		FROM file_verifications
		WHERE file_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	var prevChain string
	if err := tx.QueryRowContext(ctx, qPrev, rec.FileID).Scan(&prevChain); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if prevChain != expectedPrevChain {
		return nil, repository.ErrVerificationConflict
	}

	const qInsert = `
		INSERT INTO file_verifications (id, file_id, content_fingerprint, chain_fingerprint, verified_by, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + verificationColumns + `
	`
	row := tx.QueryRowContext(ctx, qInsert,
		rec.ID,
		rec.FileID,
		rec.ContentFingerprint,
		rec.ChainFingerprint,
		rec.VerifiedBy,
		rec.Status,
		meta,
		rec.CreatedAt,
	)
	out, err := scanVerification(row)
	if err != nil {
		return nil, err
	}

	const qUpdateFile = `
		UPDATE files
		SET ocr_text = $1, content_fingerprint = $2, verified_at = $3
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, qUpdateFile, nullString(ocrText), rec.ContentFingerprint, rec.CreatedAt, rec.FileID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestByFileID returns the most recent verification record for the file.
func (r *VerificationPostgres) LatestByFileID(ctx context.Context, fileID string) (*model.Verification, error) {
	const q = `
		SELECT ` + verificationColumns + `
		FROM file_verifications
		WHERE file_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return scanVerification(r.db.QueryRowContext(ctx, q, fileID))
}

// ListByFileID returns the file's verification history, newest first.
func (r *VerificationPostgres) ListByFileID(ctx context.Context, fileID string) ([]model.Verification, error) {
	const q = `
		SELECT ` + verificationColumns + `
		FROM file_verifications
		WHERE file_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Verification, 0)
	for rows.Next() {
		v, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanVerification(row rowScanner) (*model.Verification, error) {
	var v model.Verification
	var meta []byte
	if err := row.Scan(
		&v.ID,
		&v.FileID,
		&v.ContentFingerprint,
		&v.ChainFingerprint,
		&v.VerifiedBy,
		&v.Status,
		&meta,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &v.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal verification metadata: %w", err)
		}
	}
	return &v, nil
}
