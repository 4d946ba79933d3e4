// Package auth provides API key middleware for Fiber.
package auth

import "github.com/gofiber/fiber/v2"

// HeaderKey is the request header carrying the API key.
const HeaderKey = "X-Api-Key"

// Config holds the middleware configuration.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check, which is
	// only sensible for local development.
	ApiKey string
}

// New creates a middleware that rejects requests without the configured API
// key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}
		if c.Get(HeaderKey) != cfg.ApiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or missing API key",
			})
		}
		return c.Next()
	}
}
