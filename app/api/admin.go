package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.telemetrySvc.Snapshot())
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	records, err := s.historySvc.Session(sessionID)
	if err != nil {
		slog.Error("Failed to read session history",
			"session_id", sessionID,
			"error", err)

		return errorJSON(c, fiber.StatusInternalServerError, "failed to read session history")
	}

	return c.JSON(fiber.Map{
		"sessionId": sessionID,
		"exchanges": records,
	})
}
