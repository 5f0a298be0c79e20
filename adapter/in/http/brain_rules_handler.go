package http

import (
	"brain_server/core/domain"
	"brain_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RulesHandler manages the classification rule tables and the unknown-phrase
// feedback queue that drives rule authoring.
type RulesHandler struct {
	rules   domain.RuleSource
	unknown domain.UnknownPhraseRepository
}

// NewRulesHandler creates a new RulesHandler
func NewRulesHandler(rules domain.RuleSource, unknown domain.UnknownPhraseRepository) *RulesHandler {
	return &RulesHandler{rules: rules, unknown: unknown}
}

// GetRules returns the currently loaded rule tables
// GET /api/v1/rules
func (h *RulesHandler) GetRules(c *fiber.Ctx) error {
	if _, err := GetCompanyID(c); err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	tables := h.rules.Tables()
	return SuccessResponse(c, fiber.Map{
		"mood_categories":   len(tables.Mood),
		"intent_categories": len(tables.Intent),
		"state_rules":       len(tables.State),
		"mood":              tables.Mood,
		"intent":            tables.Intent,
		"state":             tables.State,
	})
}

// ReloadRules re-reads the rule files and publishes the result
// POST /api/v1/rules/reload
func (h *RulesHandler) ReloadRules(c *fiber.Ctx) error {
	if _, err := GetCompanyID(c); err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.rules.Reload(); err != nil {
		logger.WithError(err).Error("[RulesHandler] rule reload failed")
		return InternalErrorResponse(c, err, "reload rules")
	}

	tables := h.rules.Tables()
	return SuccessResponse(c, fiber.Map{
		"reloaded":          true,
		"mood_categories":   len(tables.Mood),
		"intent_categories": len(tables.Intent),
	})
}

// ListUnknownPhrases returns the most frequent unmatched phrases
// GET /api/v1/rules/unknown
func (h *RulesHandler) ListUnknownPhrases(c *fiber.Ctx) error {
	if _, err := GetCompanyID(c); err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit := GetLimit(c, 50, 200)
	phrases, err := h.unknown.ListUnknown(c.Context(), limit)
	if err != nil {
		logger.WithError(err).Error("[RulesHandler] failed to list unknown phrases")
		return InternalErrorResponse(c, err, "list unknown phrases")
	}

	return SuccessResponse(c, fiber.Map{
		"phrases": phrases,
		"count":   len(phrases),
	})
}

// ClearUnknownPhrases empties the unknown-phrase queue, typically after the
// phrases have been folded into the rule files
// DELETE /api/v1/rules/unknown
func (h *RulesHandler) ClearUnknownPhrases(c *fiber.Ctx) error {
	if _, err := GetCompanyID(c); err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	deleted, err := h.unknown.ClearUnknown(c.Context())
	if err != nil {
		logger.WithError(err).Error("[RulesHandler] failed to clear unknown phrases")
		return InternalErrorResponse(c, err, "clear unknown phrases")
	}

	return SuccessResponse(c, fiber.Map{"deleted": deleted})
}

// Register registers rule management routes (authenticated)
func (h *RulesHandler) Register(router fiber.Router) {
	rules := router.Group("/rules")
	rules.Get("/", h.GetRules)
	rules.Post("/reload", h.ReloadRules)
	rules.Get("/unknown", h.ListUnknownPhrases)
	rules.Delete("/unknown", h.ClearUnknownPhrases)
}
