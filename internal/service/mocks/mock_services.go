package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"chatreport/internal/model"
	"chatreport/internal/report"
	"chatreport/internal/service"
)

// MockChatService is a testify mock for service.ChatService.
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	args := m.Called(ctx, title)
	var c *model.Chat
	if v := args.Get(0); v != nil {
		c = v.(*model.Chat)
	}
	return c, args.Error(1)
}

func (m *MockChatService) ListChats(ctx context.Context, limit, offset int) (*service.ChatListResult, error) {
	args := m.Called(ctx, limit, offset)
	var res *service.ChatListResult
	if v := args.Get(0); v != nil {
		res = v.(*service.ChatListResult)
	}
	return res, args.Error(1)
}

func (m *MockChatService) AppendMessage(ctx context.Context, chatID, role, content, contentType, fileID string) (*model.Message, error) {
	args := m.Called(ctx, chatID, role, content, contentType, fileID)
	var msg *model.Message
	if v := args.Get(0); v != nil {
		msg = v.(*model.Message)
	}
	return msg, args.Error(1)
}

func (m *MockChatService) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []model.Message
	if v := args.Get(0); v != nil {
		msgs = v.([]model.Message)
	}
	return msgs, args.Error(1)
}

// MockFileService is a testify mock for service.FileService.
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, r io.Reader, chatID, userID, originalFilename, contentType string, size int64) (*model.File, error) {
	args := m.Called(ctx, r, chatID, userID, originalFilename, contentType, size)
	var f *model.File
	if v := args.Get(0); v != nil {
		f = v.(*model.File)
	}
	return f, args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	var f *model.File
	if v := args.Get(0); v != nil {
		f = v.(*model.File)
	}
	return f, args.Error(1)
}

func (m *MockFileService) ListByChat(ctx context.Context, chatID string) ([]model.File, error) {
	args := m.Called(ctx, chatID)
	var files []model.File
	if v := args.Get(0); v != nil {
		files = v.([]model.File)
	}
	return files, args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVerificationService is a testify mock for service.VerificationService.
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Verify(ctx context.Context, fileID string) (*model.Verification, error) {
	args := m.Called(ctx, fileID)
	var rec *model.Verification
	if v := args.Get(0); v != nil {
		rec = v.(*model.Verification)
	}
	return rec, args.Error(1)
}

func (m *MockVerificationService) Latest(ctx context.Context, fileID string) (*model.Verification, error) {
	args := m.Called(ctx, fileID)
	var rec *model.Verification
	if v := args.Get(0); v != nil {
		rec = v.(*model.Verification)
	}
	return rec, args.Error(1)
}

func (m *MockVerificationService) History(ctx context.Context, fileID string) ([]model.Verification, error) {
	args := m.Called(ctx, fileID)
	var recs []model.Verification
	if v := args.Get(0); v != nil {
		recs = v.([]model.Verification)
	}
	return recs, args.Error(1)
}

// MockReportService is a testify mock for service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Generate(ctx context.Context, chatID string, format report.Format) (*model.Report, error) {
	args := m.Called(ctx, chatID, format)
	var rep *model.Report
	if v := args.Get(0); v != nil {
		rep = v.(*model.Report)
	}
	return rep, args.Error(1)
}

func (m *MockReportService) ListReports(ctx context.Context, chatID string) ([]model.Report, error) {
	args := m.Called(ctx, chatID)
	var reps []model.Report
	if v := args.Get(0); v != nil {
		reps = v.([]model.Report)
	}
	return reps, args.Error(1)
}
