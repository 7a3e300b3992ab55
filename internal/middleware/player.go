package middleware

import (
	"github.com/apex/log"
	"github.com/gofiber/fiber/v2"
)

const PlayerIDHeader = "X-Player-ID"

// EnsurePlayerID reads the caller's player id from the X-Player-ID header or
// the playerId query parameter and stores it in Locals("playerID").
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get(PlayerIDHeader)
		if playerID == "" {
			playerID = c.Query("playerId")
		}

		if playerID == "" {
			log.WithField("path", c.Path()).Debug("request without player id")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals("playerID", playerID)
		return c.Next()
	}
}
