// handlers/leaderboard.go
package handlers

import (
	"strings"

	"word-stats-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	// Public: the global boards need no user context.
	app.Get("/leaderboards", func(c *fiber.Ctx) error {
		filters := services.LeaderboardFilters{
			Modes:       splitQuery(c.Query("modes")),
			MetricTypes: splitQuery(c.Query("metrics")),
			UserIDs:     splitQuery(c.Query("userIds")),
			Usernames:   splitQuery(c.Query("usernames")),
		}

		boards, err := leaderboardService.Leaderboards(c.Context(), filters)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"leaderboards": boards})
	})
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
