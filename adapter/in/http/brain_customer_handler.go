package http

import (
	"context"

	"brain_server/core/domain"
	"brain_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// DecisionHistory is the read side of the decision audit log.
type DecisionHistory interface {
	ListRecent(ctx context.Context, companyID, platform, userID string, limit int) ([]*domain.DecisionRecord, error)
}

// CustomerHandler exposes the persisted customer brains and their decision
// history.
type CustomerHandler struct {
	repo    domain.CustomerRepository
	history DecisionHistory
}

// NewCustomerHandler creates a new CustomerHandler. history may be nil when no
// audit database is configured.
func NewCustomerHandler(repo domain.CustomerRepository, history DecisionHistory) *CustomerHandler {
	return &CustomerHandler{repo: repo, history: history}
}

// GetCustomer returns one customer brain
// GET /api/v1/customers/:platform/:userId
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	platform := c.Params("platform")
	userID := c.Params("userId")

	brain, err := h.repo.Get(c.Context(), companyID, platform, userID)
	if err != nil {
		logger.WithError(err).Error("[CustomerHandler] failed to get customer")
		return InternalErrorResponse(c, err, "get customer")
	}
	if brain == nil {
		return ErrorResponse(c, fiber.StatusNotFound, "customer not found")
	}

	return SuccessResponse(c, brain)
}

// ListCustomers returns recently active customers
// GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(c *fiber.Ctx) error {
	if _, err := GetCompanyID(c); err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit := GetLimit(c, 50, 200)
	brains, err := h.repo.ListRecent(c.Context(), limit)
	if err != nil {
		logger.WithError(err).Error("[CustomerHandler] failed to list customers")
		return InternalErrorResponse(c, err, "list customers")
	}

	return SuccessResponse(c, fiber.Map{
		"customers": brains,
		"count":     len(brains),
	})
}

// GetDecisions returns the recent decision history for one customer
// GET /api/v1/customers/:platform/:userId/decisions
func (h *CustomerHandler) GetDecisions(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if h.history == nil {
		return ErrorResponse(c, fiber.StatusNotFound, "decision history not configured")
	}

	platform := c.Params("platform")
	userID := c.Params("userId")
	limit := GetLimit(c, 50, 200)

	records, err := h.history.ListRecent(c.Context(), companyID, platform, userID, limit)
	if err != nil {
		logger.WithError(err).Error("[CustomerHandler] failed to list decisions")
		return InternalErrorResponse(c, err, "list decisions")
	}

	return SuccessResponse(c, fiber.Map{
		"decisions": records,
		"count":     len(records),
	})
}

// Register registers customer routes (authenticated)
func (h *CustomerHandler) Register(router fiber.Router) {
	customers := router.Group("/customers")
	customers.Get("/", h.ListCustomers)
	customers.Get("/:platform/:userId", h.GetCustomer)
	customers.Get("/:platform/:userId/decisions", h.GetDecisions)
}
