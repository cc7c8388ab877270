package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userIDKey = "userID"

// UserIdentity resolves the caller from the X-User-ID header and stores the
// parsed id in the request locals. Requests without a valid id are rejected.
func UserIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized,
				"Unauthorized", "X-User-ID header is required")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized,
				"Unauthorized", "X-User-ID header must be a valid UUID")
		}
		c.Locals(userIDKey, id)
		return c.Next()
	}
}

func requireUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := c.Locals(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrorResponseJSON(c, fiber.StatusUnauthorized,
			"Unauthorized", "missing user identity")
	}
	return id, nil
}
