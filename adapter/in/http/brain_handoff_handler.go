package http

import (
	"brain_server/core/domain"
	"brain_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// HandoffHandler exposes the operator-handoff flag directly, for operator
// dashboards that take over or release a conversation without a chat turn.
type HandoffHandler struct {
	store domain.HandoffStore
}

// NewHandoffHandler creates a new HandoffHandler
func NewHandoffHandler(store domain.HandoffStore) *HandoffHandler {
	return &HandoffHandler{store: store}
}

// GetHandoff reports whether a conversation is human-controlled
// GET /api/v1/handoff/:platform/:userId
func (h *HandoffHandler) GetHandoff(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	active, err := h.store.Active(c.Context(), companyID, c.Params("platform"), c.Params("userId"))
	if err != nil {
		logger.WithError(err).Error("[HandoffHandler] failed to read handoff state")
		return InternalErrorResponse(c, err, "get handoff state")
	}

	return SuccessResponse(c, fiber.Map{"active": active})
}

// SetHandoffRequest toggles the handoff flag.
type SetHandoffRequest struct {
	Active bool   `json:"active"`
	Reason string `json:"reason"`
}

// SetHandoff takes over or releases a conversation
// PUT /api/v1/handoff/:platform/:userId
func (h *HandoffHandler) SetHandoff(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req SetHandoffRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Active && req.Reason == "" {
		req.Reason = "manual_takeover"
	}

	if err := h.store.Set(c.Context(), companyID, c.Params("platform"), c.Params("userId"), req.Active, req.Reason); err != nil {
		logger.WithError(err).Error("[HandoffHandler] failed to set handoff state")
		return InternalErrorResponse(c, err, "set handoff state")
	}

	return SuccessResponse(c, fiber.Map{"active": req.Active})
}

// Register registers handoff routes (authenticated)
func (h *HandoffHandler) Register(router fiber.Router) {
	handoff := router.Group("/handoff")
	handoff.Get("/:platform/:userId", h.GetHandoff)
	handoff.Put("/:platform/:userId", h.SetHandoff)
}
