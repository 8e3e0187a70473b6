package handlers

import (
	"errors"
	"log"

	"swiss-tournament/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	status, message := fiber.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, services.ErrInvalidMatch), errors.Is(err, services.ErrInvalidName):
		status, message = fiber.StatusBadRequest, "invalid request"
	case errors.Is(err, services.ErrUnknownPlayer):
		status, message = fiber.StatusNotFound, "player not found"
	case errors.Is(err, services.ErrInsufficientPlayers), errors.Is(err, services.ErrOddPlayerCount):
		status, message = fiber.StatusConflict, "players cannot be paired"
	case errors.Is(err, services.ErrStorageUnavailable):
		status, message = fiber.StatusServiceUnavailable, "storage unavailable"
	}

	if status >= fiber.StatusInternalServerError {
		log.Printf("❌ [HTTP] %s %s (request %v): %v", c.Method(), c.Path(), c.Locals("request_id"), err)
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "details": err.Error()})
}
