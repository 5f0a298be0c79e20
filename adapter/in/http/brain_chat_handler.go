package http

import (
	"strings"

	"brain_server/core/service/chat"
	"brain_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler handles inbound chat messages from the generic HTTP surface.
type ChatHandler struct {
	service *chat.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service *chat.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// ChatMessageRequest is one inbound message.
type ChatMessageRequest struct {
	Platform string `json:"platform"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// HandleMessage classifies one message and returns the reply decision
// POST /api/v1/chat
func (h *ChatHandler) HandleMessage(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req ChatMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return ErrorResponse(c, fiber.StatusBadRequest, "user_id is required")
	}
	if req.Platform == "" {
		req.Platform = "web"
	}

	reply, err := h.service.HandleMessage(c.Context(), &chat.ChatRequest{
		CompanyID: companyID,
		Platform:  req.Platform,
		UserID:    req.UserID,
		Username:  req.Username,
		Message:   req.Message,
	})
	if err != nil {
		logger.WithError(err).Error("[ChatHandler] failed to handle message")
		return InternalErrorResponse(c, err, "handle message")
	}

	return SuccessResponse(c, reply)
}

// ReleaseRequest identifies the conversation to hand back to the bot.
type ReleaseRequest struct {
	Platform string `json:"platform"`
	UserID   string `json:"user_id"`
}

// Release hands a conversation back from the operator to the bot
// POST /api/v1/chat/release
func (h *ChatHandler) Release(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req ReleaseRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" || req.Platform == "" {
		return ErrorResponse(c, fiber.StatusBadRequest, "platform and user_id are required")
	}

	if err := h.service.Release(c.Context(), companyID, req.Platform, req.UserID); err != nil {
		logger.WithError(err).Error("[ChatHandler] failed to release conversation")
		return InternalErrorResponse(c, err, "release conversation")
	}

	return SuccessResponse(c, fiber.Map{"released": true})
}

// Register registers chat routes (authenticated)
func (h *ChatHandler) Register(router fiber.Router) {
	chatGroup := router.Group("/chat")
	chatGroup.Post("/", h.HandleMessage)
	chatGroup.Post("/release", h.Release)
}
