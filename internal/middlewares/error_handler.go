package middlewares

import (
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// APIError is an error the client is allowed to see.
type APIError struct {
	Code       int
	Status     string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code int, status string, message string) *APIError {
	return &APIError{Code: code, Status: status, Message: message}
}

func statusText(code int) string {
	return strings.ToUpper(strings.ReplaceAll(utils.StatusMessage(code), " ", "_"))
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			secs := int(math.Ceil(apiErr.RetryAfter.Seconds()))
			ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
		}
		status := apiErr.Status
		if status == "" {
			status = statusText(apiErr.Code)
		}
		return ctx.Status(apiErr.Code).JSON(NewErrorResponse(apiErr.Code, status, apiErr.Message))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return ctx.Status(fiberErr.Code).JSON(NewErrorResponse(fiberErr.Code, statusText(fiberErr.Code), fiberErr.Message))
	}

	slog.Error("unhandled error", "method", ctx.Method(), "path", ctx.Path(), "error", err)
	code := fiber.StatusInternalServerError
	return ctx.Status(code).JSON(NewErrorResponse(code, statusText(code), "Internal server error"))
}
