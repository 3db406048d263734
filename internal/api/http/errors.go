package httpapi

import (
	"errors"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/activity-ranking/internal/activity"
	"github.com/i474232898/activity-ranking/internal/common"
	"github.com/i474232898/activity-ranking/internal/geocode"
	"github.com/i474232898/activity-ranking/internal/store"
	"github.com/i474232898/activity-ranking/internal/weather"
)

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &ve), errors.Is(err, geocode.ErrEmptyAddress):
		return fiber.StatusBadRequest
	case errors.Is(err, geocode.ErrAddressNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, activity.ErrInvalidMetrics):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, weather.ErrUpstream), errors.Is(err, geocode.ErrLookupFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, geocode.ErrNotConfigured):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the centralized Fiber error handler. Server-side failures are
// reported to Sentry; capturing is a no-op when Sentry is not initialized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	if code >= fiber.StatusInternalServerError {
		common.Logger("http").WithFields(log.Fields{
			"path":   c.Path(),
			"status": code,
		}).WithError(err).Error("request failed")
		sentry.CaptureException(err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
