// handlers/stats.go
package handlers

import (
	"word-stats-system/middleware"
	"word-stats-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupStatsRoutes(app *fiber.App, statsService *services.StatsService, ledgerService *services.LedgerService) {
	securedGroup := app.Group("/users", middleware.UserContextMiddleware())

	securedGroup.Get("/:id/stats", func(c *fiber.Ctx) error {
		stats, err := statsService.RollingStats(c.Context(), c.Params("id"), c.Query("mode"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"stats": stats})
	})

	securedGroup.Get("/:id/best-scores", func(c *fiber.Ctx) error {
		entries, err := statsService.BestScores(
			c.Context(), c.Params("id"), c.Query("mode"), c.QueryInt("limit"), c.QueryInt("offset"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"best_scores": entries})
	})

	securedGroup.Get("/:id/best-words", func(c *fiber.Ctx) error {
		entries, err := statsService.BestWords(
			c.Context(), c.Params("id"), c.Query("mode"), c.QueryInt("limit"), c.QueryInt("offset"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"best_words": entries})
	})

	// Admin repair tool: drop a single ledger row. Deleting an id that is
	// already gone succeeds.
	securedGroup.Delete("/:id/best-entries/:entryId", func(c *fiber.Ctx) error {
		if !middleware.IsAdmin(c) {
			return serviceError(c, services.ErrUnauthorized)
		}
		entryID, err := c.ParamsInt("entryId")
		if err != nil || entryID < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid entry id"})
		}
		if err := ledgerService.DeleteEntry(uint(entryID)); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": entryID})
	})
}
