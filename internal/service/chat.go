package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"chatreport/internal/model"
	"chatreport/internal/repository"
)

// ChatListResult is the service-level DTO for paginated chats.
type ChatListResult struct {
	Items []model.Chat `json:"data"`
	Total int          `json:"total"`
}

// ChatService defines the use cases for conversations and their messages.
type ChatService interface {
	// CreateChat starts a new conversation. An empty title gets a default.
	CreateChat(ctx context.Context, title string) (*model.Chat, error)

	// ListChats returns chats using limit/offset and a total count.
	ListChats(ctx context.Context, limit, offset int) (*ChatListResult, error)

	// AppendMessage adds a message to the chat's transcript. Messages are
	// append-only; there is no edit or delete.
	AppendMessage(ctx context.Context, chatID, role, content, contentType, fileID string) (*model.Message, error)

	// ListMessages returns the chat's transcript in creation order.
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
}

type chatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
}

// NewChatService constructs a new ChatService.
func NewChatService(chats repository.ChatRepository, messages repository.MessageRepository) ChatService {
	return &chatService{chats: chats, messages: messages}
}

func (s *chatService) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	if title == "" {
		title = "New Chat"
	}
	return s.chats.Create(ctx, &model.Chat{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *chatService) ListChats(ctx context.Context, limit, offset int) (*ChatListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.chats.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ChatListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *chatService) AppendMessage(ctx context.Context, chatID, role, content, contentType, fileID string) (*model.Message, error) {
	if chatID == "" {
		return nil, ErrIDRequired
	}
	if role != model.RoleUser && role != model.RoleAssistant {
		return nil, ErrInvalidRole
	}
	if content == "" {
		return nil, ErrEmptyContent
	}
	if _, err := s.chats.FindByID(ctx, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.messages.Create(ctx, &model.Message{
		ID:          uuid.New().String(),
		ChatID:      chatID,
		Role:        role,
		Content:     content,
		ContentType: contentType,
		FileID:      fileID,
		CreatedAt:   time.Now().UTC(),
	})
}

func (s *chatService) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	if chatID == "" {
		return nil, ErrIDRequired
	}
	return s.messages.ListByChat(ctx, chatID)
}
