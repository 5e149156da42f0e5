package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// Header is the response (and accepted request) header carrying the ray ID.
	Header = "X-Ray-ID"
	// LocalsKey is where the ray ID is stored on the Fiber context.
	LocalsKey = "ray_id"
)

// New returns a middleware assigning every request a ray ID. A well formed ID sent by
// the caller is kept.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
