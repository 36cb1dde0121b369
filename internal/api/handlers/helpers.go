package handlers

import (
	"errors"

	"github.com/crosspost-app/composer-api/internal/composer"
	"github.com/crosspost-app/composer-api/internal/service"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps service and composer errors onto HTTP statuses: missing
// sessions and media 404, duplicate async triggers 409, precondition and
// input problems 400, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrMediaNotAttached):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrGenerationInFlight),
		errors.Is(err, service.ErrSubmissionInFlight):
		return fiber.StatusConflict
	case errors.Is(err, composer.ErrMixedMediaKinds),
		errors.Is(err, composer.ErrNothingToSubmit),
		errors.Is(err, composer.ErrNoAccountsSelected),
		errors.Is(err, composer.ErrScheduleMissing),
		errors.Is(err, composer.ErrScheduleNotFuture),
		errors.Is(err, composer.ErrContentConfirmed),
		errors.Is(err, composer.ErrNoContentEntry),
		errors.Is(err, service.ErrNoFiles),
		errors.Is(err, service.ErrNoVariantKeys),
		errors.Is(err, service.ErrInvalidScheduleTime),
		errors.Is(err, service.ErrNoPendingConfirmation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
