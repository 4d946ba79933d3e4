// Package rayid provides request ID middleware for Fiber.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header is the response header carrying the ray id.
const Header = "X-Ray-Id"

// LocalsKey is the Fiber locals key the ray id is stored under.
const LocalsKey = "ray_id"

// New creates a middleware that assigns every request a unique ray id.
// An id supplied by the client in the request header is kept, so upstream
// proxies can thread their own correlation ids through.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(Header)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals(LocalsKey, rid)
		c.Set(Header, rid)

		return c.Next()
	}
}
