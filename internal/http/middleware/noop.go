package middleware

import "github.com/gofiber/fiber/v2"

// Noop simply calls the next handler. Useful as a placeholder when a
// middleware slot is conditionally disabled.
func Noop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Next()
	}
}
