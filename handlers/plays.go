// handlers/plays.go
package handlers

import (
	"strconv"

	"word-stats-system/middleware"
	"word-stats-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayRoutes(app *fiber.App, playService *services.PlayService) {
	securedGroup := app.Group("/plays", middleware.UserContextMiddleware())

	securedGroup.Get("/", func(c *fiber.Ctx) error {
		filters := services.PlayFilters{
			UserID:       c.Query("userId"),
			Mode:         c.Query("mode"),
			BestWordLike: c.Query("bestWord"),
		}
		numericFilters := map[string]**int{
			"minScore":     &filters.MinScore,
			"maxScore":     &filters.MaxScore,
			"minWordCount": &filters.MinWordCount,
			"maxWordCount": &filters.MaxWordCount,
		}
		for key, dst := range numericFilters {
			v, err := intQuery(c, key)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid numeric value for " + key})
			}
			*dst = v
		}
		var err error
		if filters.Limit, err = intQueryOr(c, "limit", 0); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid numeric value for limit"})
		}
		if filters.Offset, err = intQueryOr(c, "offset", 0); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid numeric value for offset"})
		}
		// Non-admins may only browse their own history.
		if !middleware.IsAdmin(c) {
			filters.UserID = c.Locals("user_id").(string)
		}

		plays, err := playService.List(c.Context(), filters)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"plays": plays})
	})

	securedGroup.Get("/:id", func(c *fiber.Ctx) error {
		play, err := playService.Get(c.Context(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		if play.UserID != c.Locals("user_id").(string) && !middleware.IsAdmin(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.JSON(play)
	})

	securedGroup.Delete("/:id", func(c *fiber.Ctx) error {
		if err := playService.Delete(c.Context(), c.Params("id"), middleware.IsAdmin(c)); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"deleted": c.Params("id")})
	})
}

// intQuery parses an optional numeric query parameter. A present but
// malformed value is a client error, not an absent filter.
func intQuery(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func intQueryOr(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
