package http

import (
	"time"

	"brain_server/adapter/out/state"
	"brain_server/pkg/logger"
	"brain_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// StatsHandler serves the daily classification counters.
type StatsHandler struct {
	stats *state.StatsCounter
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats *state.StatsCounter) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetDailyStats returns one day's counters, defaulting to today
// GET /api/v1/stats/daily?date=2025-03-10
func (h *StatsHandler) GetDailyStats(c *fiber.Ctx) error {
	companyID, err := GetCompanyID(c)
	if err != nil {
		return ErrorResponse(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return ErrorResponse(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = parsed
	}

	stats, err := h.stats.Day(c.Context(), companyID, day)
	if err != nil {
		logger.WithError(err).Error("[StatsHandler] failed to read stats")
		return InternalErrorResponse(c, err, "get daily stats")
	}

	return SuccessResponse(c, stats)
}

// GetLatencyStats returns request latency percentiles per route
// GET /api/v1/stats/latency
func (h *StatsHandler) GetLatencyStats(c *fiber.Ctx) error {
	all := metrics.GetAllLatencyStats()
	out := make(map[string]map[string]any, len(all))
	for route, stats := range all {
		out[route] = stats.ToMap()
	}
	return SuccessResponse(c, out)
}

// Register registers stats routes (authenticated)
func (h *StatsHandler) Register(router fiber.Router) {
	stats := router.Group("/stats")
	stats.Get("/daily", h.GetDailyStats)
	stats.Get("/latency", h.GetLatencyStats)
}
