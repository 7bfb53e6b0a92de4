package middleware

import (
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/models"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

// RoleRequired runs after SessionRequired and rejects callers whose role is
// not one of allowed.
func RoleRequired(allowed ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := CurrentAccount(c)
		if account == nil {
			return unauthorized(c)
		}
		if err := services.RequireRole(account, allowed...); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Next()
	}
}

// AdminRequired is RoleRequired(models.RoleAdmin).
func AdminRequired() fiber.Handler {
	return RoleRequired(models.RoleAdmin)
}
