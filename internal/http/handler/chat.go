package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"chatreport/internal/service"
)

type createChatRequest struct {
	Title string `json:"title"`
}

type appendMessageRequest struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"`
	FileID      string `json:"file_id"`
}

// CreateChat starts a new conversation.
func CreateChat(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createChatRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}

		chat, err := svc.CreateChat(c.UserContext(), req.Title)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(chat)
	}
}

// ListChats returns chats with limit & offset.
func ListChats(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListChats(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// AppendMessage adds a message to the chat's transcript.
func AppendMessage(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chatID := c.Params("id")
		if _, err := uuid.Parse(chatID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		var req appendMessageRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		msg, err := svc.AppendMessage(c.UserContext(), chatID, req.Role, req.Content, req.ContentType, req.FileID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}

// ListMessages returns the chat's transcript in creation order.
func ListMessages(svc service.ChatService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		chatID := c.Params("id")
		if _, err := uuid.Parse(chatID); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		msgs, err := svc.ListMessages(c.UserContext(), chatID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(msgs)
	}
}
