package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// HeaderUser carries the already-authenticated caller's username.
const HeaderUser = "X-User"

const userKey = "user"

// Identity stores the requesting user from HeaderUser in the request
// locals. The value is copied out of the request buffer since it outlives
// the request as a storage key. A missing header is not rejected here; the
// use cases answer it with an invalid-argument error.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(userKey, utils.CopyString(strings.TrimSpace(c.Get(HeaderUser))))
		return c.Next()
	}
}

// User returns the requesting user saved by Identity.
func User(c *fiber.Ctx) string {
	user, _ := c.Locals(userKey).(string)
	return user
}
