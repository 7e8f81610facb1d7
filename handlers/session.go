// handlers/session.go
package handlers

import (
	"word-stats-system/middleware"
	"word-stats-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoutes(app *fiber.App, sessionService *services.SessionService) {
	securedGroup := app.Group("/solo", middleware.UserContextMiddleware())

	// Reserve a pending play at game start. Posting before playing keeps a
	// bad game from being discarded by closing the browser.
	securedGroup.Post("/plays", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var body struct {
			Mode string `json:"mode"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}

		result, err := sessionService.Start(c.Context(), userID, body.Mode)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	// Commit the final result of a pending play and return the game-over
	// stats summary.
	securedGroup.Patch("/plays/:id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		playID := c.Params("id")

		var body services.FinalResult
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}

		summary, err := sessionService.End(c.Context(), playID, userID, body)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(summary)
	})
}
