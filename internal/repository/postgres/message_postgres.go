package postgres

import (
	"context"
	"database/sql"

	"chatreport/internal/model"
	"chatreport/internal/repository"
)

const qMessagesByChat = `
	SELECT id, chat_id, role, content, content_type, file_id, created_at
	FROM messages
	WHERE chat_id = $1
	ORDER BY created_at ASC, id ASC
`

// MessagePostgres is a PostgreSQL implementation of repository.MessageRepository.
type MessagePostgres struct {
	db *sql.DB
}

// NewMessagePostgres creates a new MessagePostgres repository.
func NewMessagePostgres(db *sql.DB) *MessagePostgres {
	return &MessagePostgres{db: db}
}

var _ repository.MessageRepository = (*MessagePostgres)(nil)

// Create appends a message row and returns the stored record.
func (r *MessagePostgres) Create(ctx context.Context, msg *model.Message) (*model.Message, error) {
	const q = `
		INSERT INTO messages (id, chat_id, role, content, content_type, file_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, chat_id, role, content, content_type, file_id, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		msg.ID,
		msg.ChatID,
		msg.Role,
		msg.Content,
		msg.ContentType,
		nullString(msg.FileID),
		msg.CreatedAt,
	)
	return scanMessage(row)
}

// ListByChat returns the chat's messages in creation-time order.
func (r *MessagePostgres) ListByChat(ctx context.Context, chatID string) ([]model.Message, error) {
	return scanMessages(r.db.QueryContext(ctx, qMessagesByChat, chatID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var m model.Message
	var fileID sql.NullString
	if err := row.Scan(
		&m.ID,
		&m.ChatID,
		&m.Role,
		&m.Content,
		&m.ContentType,
		&fileID,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.FileID = fileID.String
	return &m, nil
}

func scanMessages(rows *sql.Rows, err error) ([]model.Message, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
