package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/chainware/supplyledger/internal/rate"
)

// actorHeader carries the caller's company address. The gateway in front of
// the service authenticates the caller and injects this header.
const actorHeader = "X-Actor-Address"

func actorFrom(c *fiber.Ctx) string {
	// c.Get returns a zero-copy view into the request buffer, which fasthttp
	// reuses after the handler returns; clone so callers may retain the value.
	return strings.Clone(strings.TrimSpace(c.Get(actorHeader)))
}

// RequireActor rejects mutating requests that arrive without a caller
// identity.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actorFrom(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": actorHeader + " header is required",
			})
		}
		return c.Next()
	}
}

// RateLimit throttles per actor using a shared token bucket manager.
// Anonymous reads share one bucket.
func RateLimit(mgr *rate.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := actorFrom(c)
		if actor == "" {
			actor = "anonymous"
		}
		if !mgr.Allow(actor) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
