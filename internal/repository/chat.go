package repository

import (
	"context"

	"chatreport/internal/model"
)

// ChatRepository defines data access for chats.
type ChatRepository interface {
	// Create inserts a new chat and returns the stored row.
	Create(ctx context.Context, chat *model.Chat) (*model.Chat, error)

	// FindByID returns a chat by its ID.
	FindByID(ctx context.Context, id string) (*model.Chat, error)

	// List returns a paginated list of chats, newest first, and the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Chat], error)

	// Snapshot returns the chat's messages (creation order) and files as one
	// consistent point-in-time view. Rows appended after the snapshot begins
	// are not included.
	Snapshot(ctx context.Context, chatID string) ([]model.Message, []model.File, error)
}

// MessageRepository defines data access for chat messages. Messages are
// append-only; there is no update or delete.
type MessageRepository interface {
	// Create appends a message to its chat and returns the stored row.
	Create(ctx context.Context, msg *model.Message) (*model.Message, error)

	// ListByChat returns all messages of a chat in creation-time order.
	ListByChat(ctx context.Context, chatID string) ([]model.Message, error)
}
