package http

import (
	"fmt"
	"strconv"
	"time"

	"brain_server/adapter/out/telegram"
	"brain_server/core/service/chat"
	"brain_server/pkg/logger"
	"brain_server/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// TelegramWebhookHandler receives Telegram bot updates. Each text message runs
// through the chat service; the reply (if any) goes back through the sender.
type TelegramWebhookHandler struct {
	service *chat.ChatService
	sender  *telegram.Sender
	// secret is the webhook path segment registered with setWebhook; requests
	// with a different value are rejected without processing.
	secret string
	// debouncer drops redelivered updates: Telegram resends an update until it
	// gets a 2xx, and a slow classify run can race the retry.
	debouncer *ratelimit.Debouncer
}

// NewTelegramWebhookHandler creates a new TelegramWebhookHandler
func NewTelegramWebhookHandler(service *chat.ChatService, sender *telegram.Sender, secret string, debouncer *ratelimit.Debouncer) *TelegramWebhookHandler {
	if debouncer == nil {
		debouncer = ratelimit.NewDebouncer(nil, 5*time.Minute)
	}
	return &TelegramWebhookHandler{service: service, sender: sender, secret: secret, debouncer: debouncer}
}

// telegramUpdate is the subset of the Bot API update payload we consume.
type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		From      *struct {
			ID        int64  `json:"id"`
			IsBot     bool   `json:"is_bot"`
			Username  string `json:"username"`
			FirstName string `json:"first_name"`
		} `json:"from"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// HandleUpdate processes one Telegram update
// POST /webhook/telegram/:secret/:companyId
func (h *TelegramWebhookHandler) HandleUpdate(c *fiber.Ctx) error {
	if h.secret == "" || c.Params("secret") != h.secret {
		return c.SendStatus(fiber.StatusNotFound)
	}
	companyID := c.Params("companyId")
	if companyID == "" {
		return c.SendStatus(fiber.StatusNotFound)
	}

	var update telegramUpdate
	if err := c.BodyParser(&update); err != nil {
		logger.WithError(err).Warn("[TelegramWebhook] unparseable update")
		// Always 200: Telegram retries non-2xx responses forever.
		return c.SendStatus(fiber.StatusOK)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Text == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	dedupKey := fmt.Sprintf("tg:%s:%d", companyID, update.UpdateID)
	if h.debouncer.IsDuplicate(c.Context(), dedupKey) {
		return c.SendStatus(fiber.StatusOK)
	}
	h.debouncer.Mark(c.Context(), dedupKey)

	username := msg.From.Username
	if username == "" {
		username = msg.From.FirstName
	}

	reply, err := h.service.HandleMessage(c.Context(), &chat.ChatRequest{
		CompanyID: companyID,
		Platform:  "telegram",
		UserID:    strconv.FormatInt(msg.From.ID, 10),
		Username:  username,
		Message:   msg.Text,
	})
	if err != nil {
		logger.WithError(err).Error("[TelegramWebhook] failed to handle message")
		return c.SendStatus(fiber.StatusOK)
	}

	if reply.Silenced || reply.Reply == "" || h.sender == nil || !h.sender.Enabled() {
		return c.SendStatus(fiber.StatusOK)
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if err := h.sender.SendMessage(c.Context(), chatID, reply.Reply); err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Error("[TelegramWebhook] failed to send reply")
	}
	return c.SendStatus(fiber.StatusOK)
}

// Register registers the webhook route (unauthenticated; guarded by secret)
func (h *TelegramWebhookHandler) Register(app *fiber.App) {
	app.Post("/webhook/telegram/:secret/:companyId", h.HandleUpdate)
}
