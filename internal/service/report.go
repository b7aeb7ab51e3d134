package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chatreport/internal/ai"
	"chatreport/internal/model"
	"chatreport/internal/report"
	"chatreport/internal/repository"
	"chatreport/internal/storage"
)

const summarySystemPrompt = "You are an expert report writer. Create a comprehensive executive summary " +
	"of the following conversation. Include key points, insights, and recommendations."

// downloadExpiry is how long a freshly published report's download URL stays valid.
const downloadExpiry = 24 * time.Hour

// ReportService assembles and publishes reports for a chat.
type ReportService interface {
	// Generate snapshots the chat, summarizes it, renders the document in
	// the requested format and publishes it under a timestamp-scoped key.
	Generate(ctx context.Context, chatID string, format report.Format) (*model.Report, error)

	// ListReports returns the chat's published reports, newest first.
	ListReports(ctx context.Context, chatID string) ([]model.Report, error)
}

type reportService struct {
	store        storage.Storage
	chats        repository.ChatRepository
	reports      repository.ReportRepository
	gateway      ai.Client
	summaryModel string
}

// NewReportService constructs a new ReportService.
func NewReportService(store storage.Storage, chats repository.ChatRepository, reports repository.ReportRepository, gateway ai.Client, summaryModel string) ReportService {
	return &reportService{
		store:        store,
		chats:        chats,
		reports:      reports,
		gateway:      gateway,
		summaryModel: summaryModel,
	}
}

func (s *reportService) Generate(ctx context.Context, chatID string, format report.Format) (*model.Report, error) {
	if chatID == "" {
		return nil, ErrIDRequired
	}

	if _, err := s.chats.FindByID(ctx, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// Everything below works off one consistent snapshot; messages or files
	// added while the report renders land in the next one.
	messages, files, err := s.chats.Snapshot(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("snapshot chat: %w", err)
	}

	summary, err := s.summarize(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("summarize conversation: %w", err)
	}

	now := time.Now().UTC()
	in := report.Input{
		Title:       "Report - " + now.Format("2006-01-02"),
		GeneratedAt: now,
		Summary:     summary,
		Messages:    messages,
		Files:       files,
	}
	doc, err := report.Render(format, in)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%d.%s", chatID, now.UnixMilli(), format.Extension())
	taken, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check report key: %w", err)
	}
	if taken {
		return nil, ErrReportConflict
	}

	if _, err := s.store.Put(ctx, key, bytes.NewReader(doc), storage.PutObjectOptions{
		Size:        int64(len(doc)),
		ContentType: format.ContentType(),
	}); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, downloadExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign report url: %w", err)
	}

	rep := &model.Report{
		ID:           uuid.New().String(),
		ChatID:       chatID,
		Title:        in.Title,
		StoragePath:  key,
		MessageCount: len(messages),
		FileCount:    len(files),
		CreatedAt:    now,
	}
	stored, err := s.reports.Create(ctx, rep)
	if err != nil {
		// Keep storage and database consistent. If cleanup also fails the
		// orphan object is harmless: its key is never reused.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("save report: %w (cleanup failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("save report: %w", err)
	}
	stored.DownloadURL = url
	return stored, nil
}

func (s *reportService) ListReports(ctx context.Context, chatID string) ([]model.Report, error) {
	if chatID == "" {
		return nil, ErrIDRequired
	}
	reps, err := s.reports.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	// Download URLs are presigned on demand, never stored: a stored one
	// would expire in place.
	for i := range reps {
		url, err := s.store.PresignGet(ctx, reps[i].StoragePath, downloadExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign report url: %w", err)
		}
		reps[i].DownloadURL = url
	}
	return reps, nil
}

// summarize asks the gateway for an executive summary of the transcript.
// An empty conversation still produces a report, just without a summary call.
func (s *reportService) summarize(ctx context.Context, messages []model.Message) (string, error) {
	if len(messages) == 0 {
		return "This conversation contains no messages.", nil
	}

	var b strings.Builder
	b.WriteString("Please create an executive summary of this conversation:\n\n")
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.ToUpper(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}

	return s.gateway.Complete(ctx, ai.CompletionRequest{
		Model: s.summaryModel,
		Messages: []ai.ChatMessage{
			ai.TextMessage("system", summarySystemPrompt),
			ai.TextMessage(model.RoleUser, b.String()),
		},
	})
}
