package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"chatreport/internal/config"
)

// StatusError is returned when the gateway answers with a non-2xx status.
// The caller treats it as a hard failure for the current file or report;
// nothing is persisted.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai gateway returned status %d: %s", e.StatusCode, e.Body)
}

// gateway is the HTTP-backed Client. Safe for concurrent use.
type gateway struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewGateway validates the AI configuration and returns an HTTP-backed
// Client. Missing endpoint or credential is a configuration error caught
// here, before any request is made.
func NewGateway(cfg config.AIConfig) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ai gateway base url is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai gateway api key is required")
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &gateway{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// completionResponse is the subset of the chat-completions reply we read.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete posts the request to /v1/chat/completions and returns the first
// choice's content.
func (g *gateway) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ai gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("ai gateway returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}
