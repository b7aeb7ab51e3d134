package model

import "time"

// Chat is a conversation: an ordered sequence of messages plus zero or more
// attached files. Reports are derived from it but never own its contents.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one turn in a chat. Append-only, ordered by CreatedAt within
// its chat.
type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	ContentType string    `json:"content_type,omitempty"`
	FileID      string    `json:"file_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
