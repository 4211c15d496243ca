package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals keys written by the auth middleware.
const (
	LocalsUserID = "user_id"
	LocalsRole   = "role"
	LocalsEmail  = "email"
	LocalsToken  = "token"
)

// CurrentUserID returns nil on public routes.
func CurrentUserID(c *fiber.Ctx) *uuid.UUID {
	switch v := c.Locals(LocalsUserID).(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return nil
		}
		return &v
	case string:
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		return &id
	}
	return nil
}

func CurrentRole(c *fiber.Ctx) string {
	r, _ := c.Locals(LocalsRole).(string)
	return strings.ToLower(strings.TrimSpace(r))
}

// ParseUUIDParam reads a path param as UUID; name is used in the message.
func ParseUUIDParam(c *fiber.Ctx, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(param))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, param+" is not a valid UUID")
	}
	return id, nil
}
