package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/metropass/metropass-backend/internal/models"
)

// fail maps a domain error to an HTTP response. Every domain failure is
// request-scoped, so nothing here escalates past a status code.
func fail(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrUnknownStation),
		errors.Is(err, models.ErrLineNotFound),
		errors.Is(err, models.ErrConnectionNotFound),
		errors.Is(err, models.ErrPassengerNotFound),
		errors.Is(err, models.ErrTicketNotFound),
		errors.Is(err, models.ErrNoRouteFound):
		code = fiber.StatusNotFound
	case errors.Is(err, models.ErrSameStation),
		errors.Is(err, models.ErrInvalidOrExpiredOTP):
		code = fiber.StatusBadRequest
	case errors.Is(err, models.ErrInsufficientBalance):
		code = fiber.StatusPaymentRequired
	case errors.Is(err, models.ErrDuplicateConnection),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrTicketNotPending):
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
