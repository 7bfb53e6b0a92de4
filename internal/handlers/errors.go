package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/dto"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/services"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

const internalError = "Internal server error"

// statusFor maps a service error kind to its HTTP status. Conflicts are
// reported as 400.
func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation, services.KindConflict:
		return fiber.StatusBadRequest
	case services.KindAuth:
		return fiber.StatusUnauthorized
	case services.KindAuthorization:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Unclassified errors are logged,
// reported to Sentry and replaced with a generic message.
func respondError(c *fiber.Ctx, action string, err error) error {
	code := statusFor(services.KindOf(err))
	if code < fiber.StatusInternalServerError {
		return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	logServerError(c, action, err)
	return c.Status(code).JSON(dto.ErrorResponse{Error: internalError})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg})
}

// ErrorHandler is the fiber.Config error handler for errors that escape a
// handler: routing misses, body limits and panics recovered upstream.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := internalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logServerError(c, "unhandled", err)
		message = internalError
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}

func logServerError(c *fiber.Ctx, action string, err error) {
	attrs := []interface{}{
		"action", action,
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, "request_id", rid)
	}
	if account := middleware.CurrentAccount(c); account != nil {
		attrs = append(attrs, "account_id", account.ID)
	}
	slog.Error("request failed", attrs...)

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

// idParam reads a positive integer path parameter.
func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
