package middlewares

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
)

const HeaderRequestID = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID or mints one, and exposes it
// as locals "reqid" for error logging.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = utils.UUID()
		}
		c.Locals("reqid", id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestTimeout bounds the user context handed to services.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
