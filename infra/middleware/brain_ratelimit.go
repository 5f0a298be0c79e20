package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"brain_server/pkg/ratelimit"
)

// RateLimit throttles management API calls per company using a Redis sliding
// window. Requests before auth fall back to the client IP as the key.
func RateLimit(redisClient *redis.Client, requestsPerSecond, burstSize int) fiber.Handler {
	limiter := ratelimit.NewSlidingWindowLimiter(redisClient, requestsPerSecond, burstSize)

	return func(c *fiber.Ctx) error {
		key, _ := c.Locals("company_id").(string)
		if key == "" {
			key = c.IP()
		}

		allowed, wait := limiter.Allow(c.Context(), key)
		if !allowed {
			if wait > 0 {
				c.Set("Retry-After", wait.String())
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
				"code":  "RATE_LIMITED",
			})
		}

		return c.Next()
	}
}
