package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatreport/internal/ai"
	"chatreport/internal/model"
	"chatreport/internal/report"
	"chatreport/internal/repository"
	"chatreport/internal/service"
	serviceMocks "chatreport/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateChat(t *testing.T) {
	mockSvc := new(serviceMocks.MockChatService)
	app := fiber.New()
	app.Post("/chats", CreateChat(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("CreateChat", mock.Anything, "Q3 planning").
			Return(&model.Chat{ID: uuid.New().String(), Title: "Q3 planning"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/chats", strings.NewReader(`{"title":"Q3 planning"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var chat model.Chat
		json.NewDecoder(resp.Body).Decode(&chat)
		assert.Equal(t, "Q3 planning", chat.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty body uses default title", func(t *testing.T) {
		mockSvc.On("CreateChat", mock.Anything, "").
			Return(&model.Chat{ID: uuid.New().String(), Title: "New Chat"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/chats", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListChats(t *testing.T) {
	mockSvc := new(serviceMocks.MockChatService)
	app := fiber.New()
	app.Get("/chats", ListChats(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.ChatListResult{
			Items: []model.Chat{{ID: uuid.New().String(), Title: "New Chat"}},
			Total: 1,
		}
		mockSvc.On("ListChats", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/chats?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.ChatListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chats?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})
}

func TestAppendMessage(t *testing.T) {
	mockSvc := new(serviceMocks.MockChatService)
	app := fiber.New()
	app.Post("/chats/:id/messages", AppendMessage(mockSvc))

	chatID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("AppendMessage", mock.Anything, chatID, "user", "hello", "text", "").
			Return(&model.Message{ID: uuid.New().String(), Content: "hello"}, nil).Once()

		body := `{"role":"user","content":"hello","content_type":"text"}`
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid chat id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chats/not-a-uuid/messages", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid role", func(t *testing.T) {
		mockSvc.On("AppendMessage", mock.Anything, chatID, "system", "hi", "", "").
			Return(nil, service.ErrInvalidRole).Once()

		body := `{"role":"system","content":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var errBody errorPayload
		json.NewDecoder(resp.Body).Decode(&errBody)
		assert.Equal(t, "INVALID_ROLE", errBody.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("chat not found", func(t *testing.T) {
		mockSvc.On("AppendMessage", mock.Anything, chatID, "user", "hi", "", "").
			Return(nil, service.ErrNotFound).Once()

		body := `{"role":"user","content":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/messages", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	fw.Write([]byte(content))
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/chats/:id/files", UploadFile(mockSvc))

	chatID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.Anything, chatID, "", "receipt.png", mock.Anything, int64(5)).
			Return(&model.File{ID: uuid.New().String(), Filename: "receipt.png"}, nil).Once()

		body, ct := multipartBody(t, "file", "receipt.png", "bytes")
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/files", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/files", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var errBody errorPayload
		json.NewDecoder(resp.Body).Decode(&errBody)
		assert.Equal(t, "FILE_REQUIRED", errBody.Error.Code)
	})
}

func TestGetFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/files/:id", GetFile(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).
			Return(&model.File{ID: id, Filename: "receipt.png"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/files/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Delete("/files/:id", DeleteFile(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/files/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestVerifyFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockVerificationService)
	app := fiber.New()
	app.Post("/files/:id/verify", VerifyFile(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Verify", mock.Anything, id).
			Return(&model.Verification{ID: uuid.New().String(), FileID: id, Status: model.VerificationVerified}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/files/"+id+"/verify", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var rec model.Verification
		json.NewDecoder(resp.Body).Decode(&rec)
		assert.Equal(t, model.VerificationVerified, rec.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("concurrent verification conflict", func(t *testing.T) {
		mockSvc.On("Verify", mock.Anything, id).
			Return(nil, repository.ErrVerificationConflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/files/"+id+"/verify", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var errBody errorPayload
		json.NewDecoder(resp.Body).Decode(&errBody)
		assert.Equal(t, "VERIFICATION_CONFLICT", errBody.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("gateway failure maps to bad gateway", func(t *testing.T) {
		mockSvc.On("Verify", mock.Anything, id).
			Return(nil, &ai.StatusError{StatusCode: http.StatusInternalServerError}).Once()

		req := httptest.NewRequest(http.MethodPost, "/files/"+id+"/verify", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var errBody errorPayload
		json.NewDecoder(resp.Body).Decode(&errBody)
		assert.Equal(t, "UPSTREAM_ERROR", errBody.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetVerification(t *testing.T) {
	mockSvc := new(serviceMocks.MockVerificationService)
	app := fiber.New()
	app.Get("/files/:id/verification", GetVerification(mockSvc))

	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Latest", mock.Anything, id).
			Return(&model.Verification{ID: uuid.New().String(), FileID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/files/"+id+"/verification", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("never verified", func(t *testing.T) {
		mockSvc.On("Latest", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/files/"+id+"/verification", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGenerateReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Post("/chats/:id/report", GenerateReport(mockSvc))

	chatID := uuid.New().String()

	t.Run("success with default format", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, chatID, report.FormatPDF).
			Return(&model.Report{ID: uuid.New().String(), ChatID: chatID, DownloadURL: "https://minio/x?sig"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/report", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var rep model.Report
		json.NewDecoder(resp.Body).Decode(&rep)
		assert.NotEmpty(t, rep.DownloadURL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("html format", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, chatID, report.FormatHTML).
			Return(&model.Report{ID: uuid.New().String()}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/report?format=html", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unsupported format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/report?format=docx", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var errBody errorPayload
		json.NewDecoder(resp.Body).Decode(&errBody)
		assert.Equal(t, "INVALID_FORMAT", errBody.Error.Code)
	})

	t.Run("key conflict", func(t *testing.T) {
		mockSvc.On("Generate", mock.Anything, chatID, report.FormatPDF).
			Return(nil, service.ErrReportConflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/chats/"+chatID+"/report", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestListReports(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/chats/:id/reports", ListReports(mockSvc))

	chatID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("ListReports", mock.Anything, chatID).
			Return([]model.Report{{ID: uuid.New().String()}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/chats/"+chatID+"/reports", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var reps []model.Report
		json.NewDecoder(resp.Body).Decode(&reps)
		assert.Len(t, reps, 1)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	RegisterRoutes(app, db, Services{
		Chats:         new(serviceMocks.MockChatService),
		Files:         new(serviceMocks.MockFileService),
		Verifications: new(serviceMocks.MockVerificationService),
		Reports:       new(serviceMocks.MockReportService),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPatch, "/chats", nil)
	resp, _ = app.Test(req)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
