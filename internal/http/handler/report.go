package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chatreport/internal/report"
	"chatreport/internal/service"
)

// GenerateReport assembles and publishes a report for the chat. The format
// query parameter selects pdf (default) or html.
func GenerateReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chatID := c.Params("id")
		if _, err := uuid.Parse(chatID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		format, err := report.ParseFormat(c.Query("format"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORMAT", "format must be pdf or html")
		}

		rep, err := svc.Generate(c.UserContext(), chatID, format)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rep)
	}
}

// ListReports returns the chat's published reports, newest first.
func ListReports(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chatID := c.Params("id")
		if _, err := uuid.Parse(chatID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		reps, err := svc.ListReports(c.UserContext(), chatID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(reps)
	}
}
