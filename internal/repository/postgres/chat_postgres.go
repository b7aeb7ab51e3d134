package postgres

import (
	"context"
	"database/sql"

	"chatreport/internal/model"
	"chatreport/internal/repository"
)

// ChatPostgres is a PostgreSQL implementation of repository.ChatRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ChatPostgres struct {
	db *sql.DB
}

// NewChatPostgres creates a new ChatPostgres repository.
func NewChatPostgres(db *sql.DB) *ChatPostgres {
	return &ChatPostgres{db: db}
}

var _ repository.ChatRepository = (*ChatPostgres)(nil)

// Create inserts a new chat row and returns the stored record.
func (r *ChatPostgres) Create(ctx context.Context, chat *model.Chat) (*model.Chat, error) {
	const q = `
		INSERT INTO chats (id, title, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, title, created_at
	`
	row := r.db.QueryRowContext(ctx, q, chat.ID, chat.Title, chat.CreatedAt)
	var out model.Chat
	if err := row.Scan(&out.ID, &out.Title, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single chat by its ID.
func (r *ChatPostgres) FindByID(ctx context.Context, id string) (*model.Chat, error) {
	const q = `
		SELECT id, title, created_at
		FROM chats
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var c model.Chat
	if err := row.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns chats using LIMIT/OFFSET pagination and a total count.
func (r *ChatPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Chat], error) {
	const qCount = `SELECT COUNT(*) FROM chats`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, title, created_at
		FROM chats
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Chat, 0)
	for rows.Next() {
		var c model.Chat
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Chat]{Items: items, Total: total}, nil
}

// Snapshot reads the chat's messages and files inside one repeatable-read
// read-only transaction, so report generation sees a single point-in-time
// view even while messages keep being appended.
func (r *ChatPostgres) Snapshot(ctx context.Context, chatID string) ([]model.Message, []model.File, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	msgs, err := scanMessages(tx.QueryContext(ctx, qMessagesByChat, chatID))
	if err != nil {
		return nil, nil, err
	}
	files, err := scanFiles(tx.QueryContext(ctx, qFilesByChat, chatID))
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return msgs, files, nil
}
