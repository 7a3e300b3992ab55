package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/suggest"
)

// statusFor maps a service or rules error to the HTTP status reported for it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrGameExists),
		errors.Is(err, model.ErrPlayerInQueue),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrPromotionPending):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrPromotionRequired),
		errors.Is(err, model.ErrInvalidPromotion),
		errors.Is(err, model.ErrNoPendingPromotion),
		errors.Is(err, notation.ErrInvalidSquare),
		errors.Is(err, notation.ErrUnknownMove):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, suggest.ErrUnknownDifficulty):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
