// handlers/respond.go
package handlers

import (
	"errors"

	"word-stats-system/services"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps the service error taxonomy onto HTTP statuses. The
// opaque session error intentionally reads the same whether the session is
// missing, foreign, or already completed.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrBadInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSessionUnavailable):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": services.ErrSessionUnavailable.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "unauthorized"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
