package ai

// Package ai talks to an OpenAI-compatible chat-completions gateway. Both
// image text extraction (OCR) and conversation summarization go through the
// single Complete capability so the pipeline can be tested against a mock
// without network access.

import (
	"context"
)

// ContentPart is one piece of a message: plain text or an image reference.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps the URL the vision model should fetch.
type ImageURL struct {
	URL string `json:"url"`
}

// ChatMessage is a role-tagged message with multimodal content parts.
type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

// CompletionRequest names the model and carries the ordered messages.
type CompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// Client is the completion capability the pipeline depends on. The gateway
// model is non-deterministic; callers must not expect byte-identical output
// for identical input.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TextMessage builds a single-part text message.
func TextMessage(role, text string) ChatMessage {
	return ChatMessage{
		Role:    role,
		Content: []ContentPart{{Type: "text", Text: text}},
	}
}

// ImageMessage builds a message pairing an instruction with an image URL.
func ImageMessage(role, text, url string) ChatMessage {
	return ChatMessage{
		Role: role,
		Content: []ContentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &ImageURL{URL: url}},
		},
	}
}
