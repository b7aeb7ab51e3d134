package postgres

import (
	"context"
	"database/sql"

	"chatreport/internal/model"
	"chatreport/internal/repository"
)

const fileColumns = `id, chat_id, user_id, filename, mime_type, storage_path, size,
	ocr_text, content_fingerprint, verified_at, created_at`

const qFilesByChat = `
	SELECT ` + fileColumns + `
	FROM files
	WHERE chat_id = $1
	ORDER BY created_at ASC, id ASC
`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, chat_id, user_id, filename, mime_type, storage_path, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + fileColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.ChatID,
		f.UserID,
		f.Filename,
		f.MimeType,
		f.StoragePath,
		f.Size,
		f.CreatedAt,
	)
	return scanFile(row)
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByChat returns the chat's files, oldest first.
func (r *FilePostgres) ListByChat(ctx context.Context, chatID string) ([]model.File, error) {
	return scanFiles(r.db.QueryContext(ctx, qFilesByChat, chatID))
}

// Delete removes a file by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

func scanFile(row rowScanner) (*model.File, error) {
	var f model.File
	var ocrText, fp sql.NullString
	var verifiedAt sql.NullTime
	if err := row.Scan(
		&f.ID,
		&f.ChatID,
		&f.UserID,
		&f.Filename,
		&f.MimeType,
		&f.StoragePath,
		&f.Size,
		&ocrText,
		&fp,
		&verifiedAt,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	f.OCRText = ocrText.String
	f.ContentFingerprint = fp.String
	if verifiedAt.Valid {
		t := verifiedAt.Time
		f.VerifiedAt = &t
	}
	return &f, nil
}

func scanFiles(rows *sql.Rows, err error) ([]model.File, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
