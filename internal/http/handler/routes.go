package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"chatreport/internal/ai"
	"chatreport/internal/repository"
	"chatreport/internal/service"
)

// Services bundles the injected use cases for route registration.
type Services struct {
	Chats         service.ChatService
	Files         service.FileService
	Verifications service.VerificationService
	Reports       service.ReportService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/chats", CreateChat(svcs.Chats))
	app.Get("/chats", ListChats(svcs.Chats))
	app.Post("/chats/:id/messages", AppendMessage(svcs.Chats))
	app.Get("/chats/:id/messages", ListMessages(svcs.Chats))

	app.Post("/chats/:id/files", UploadFile(svcs.Files))
	app.Get("/files/:id", GetFile(svcs.Files))
	app.Delete("/files/:id", DeleteFile(svcs.Files))

	app.Post("/files/:id/verify", VerifyFile(svcs.Verifications))
	app.Get("/files/:id/verification", GetVerification(svcs.Verifications))
	app.Get("/files/:id/verifications", ListVerifications(svcs.Verifications))

	app.Post("/chats/:id/report", GenerateReport(svcs.Reports))
	app.Get("/chats/:id/reports", ListReports(svcs.Reports))
}

// HealthCheck reports readiness: checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// writeServiceError translates service and repository errors into the
// standardized error response.
func writeServiceError(c *fiber.Ctx, err error) error {
	var gwErr *ai.StatusError
	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "ID_REQUIRED", "id is required")
	case errors.Is(err, service.ErrInvalidRole):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ROLE", "role must be user or assistant")
	case errors.Is(err, service.ErrEmptyContent):
		return writeError(c, fiber.StatusBadRequest, "EMPTY_CONTENT", "content is required")
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, repository.ErrVerificationConflict):
		return writeError(c, fiber.StatusConflict, "VERIFICATION_CONFLICT", "file was verified concurrently, retry")
	case errors.Is(err, service.ErrReportConflict):
		return writeError(c, fiber.StatusConflict, "REPORT_CONFLICT", "report key already exists, retry")
	case errors.As(err, &gwErr):
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "AI gateway request failed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
