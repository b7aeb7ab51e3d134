package postgres

import (
	"context"
	"database/sql"

	"chatreport/internal/model"
	"chatreport/internal/repository"
)

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

// Create inserts a new report row and returns the stored record.
func (r *ReportPostgres) Create(ctx context.Context, rep *model.Report) (*model.Report, error) {
	const q = `
		INSERT INTO reports (id, chat_id, title, storage_path, message_count, file_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, chat_id, title, storage_path, message_count, file_count, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rep.ID,
		rep.ChatID,
		rep.Title,
		rep.StoragePath,
		rep.MessageCount,
		rep.FileCount,
		rep.CreatedAt,
	)
	return scanReport(row)
}

// ListByChat returns the chat's reports, newest first.
func (r *ReportPostgres) ListByChat(ctx context.Context, chatID string) ([]model.Report, error) {
	const q = `
		SELECT id, chat_id, title, storage_path, message_count, file_count, created_at
		FROM reports
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanReport(row rowScanner) (*model.Report, error) {
	var rep model.Report
	if err := row.Scan(
		&rep.ID,
		&rep.ChatID,
		&rep.Title,
		&rep.StoragePath,
		&rep.MessageCount,
		&rep.FileCount,
		&rep.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}
