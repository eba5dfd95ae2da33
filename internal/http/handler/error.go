package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"medstock/internal/http/response"
	"medstock/internal/service"
)

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return response.Error(c, status, code, message)
}

// serviceErrors maps service sentinels to their HTTP status and code. Order
// matters: the first match wins.
var serviceErrors = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID"},
	{service.ErrInvalidPeriod, fiber.StatusBadRequest, "INVALID_PERIOD"},
	{service.ErrValidation, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	{service.ErrInsufficientStock, fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{service.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{service.ErrArchiveUnavailable, fiber.StatusNotFound, "ARCHIVE_NOT_FOUND"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{service.ErrDuplicateMedicine, fiber.StatusConflict, "DUPLICATE_MEDICINE"},
	{service.ErrMedicineInUse, fiber.StatusConflict, "MEDICINE_IN_USE"},
	{service.ErrPeriodClosed, fiber.StatusConflict, "PERIOD_CLOSED"},
	{service.ErrMonthAlreadyClosed, fiber.StatusConflict, "MONTH_ALREADY_CLOSED"},
	{service.ErrPeriodNotOpen, fiber.StatusConflict, "PERIOD_NOT_OPEN"},
}

// writeServiceError translates a service error. Unknown errors are logged and
// reported as 500 without detail.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, err.Error())
		}
	}
	slog.Default().Error("request failed",
		"component", "http",
		"request_id", response.RequestID(c),
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			if status < fiber.StatusInternalServerError {
				return writeError(c, status, "REQUEST_ERROR", err.Error())
			}
			slog.Default().Error("unhandled error", "component", "http", "request_id", response.RequestID(c), "error", err)
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
