package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/optimistic-forecast/internal/weather"
)

// StatusFor maps an error to the HTTP status returned to clients.
func StatusFor(err error) int {
	var (
		fe  *fiber.Error
		nf  *weather.NotFoundError
		pe  *weather.ProviderError
		me  *weather.MalformedDataError
		cfg *weather.ConfigurationError
	)
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, weather.ErrEmptyQuery):
		return fiber.StatusBadRequest
	case errors.As(err, &nf), errors.Is(err, weather.ErrNoSnapshots):
		return fiber.StatusNotFound
	case errors.As(err, &cfg):
		return fiber.StatusInternalServerError
	case errors.As(err, &pe), errors.As(err, &me),
		errors.Is(err, weather.ErrProviderUnavailable), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// NewErrorHandler returns the centralized error handler. Error messages are
// passed through verbatim so clients can show them to users.
func NewErrorHandler(logger logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			logger.WithFields(logrus.Fields{
				"path":      c.Path(),
				"status":    code,
				"requestId": c.Locals("requestid"),
				"error":     err,
			}).Error("request failed")
		}
		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}
}
