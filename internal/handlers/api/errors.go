package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/middlewares"
	"github.com/khanghh/clubhub/internal/settings"
	"github.com/khanghh/clubhub/internal/users"
)

func apiError(code int, status string, err error) error {
	return middlewares.NewAPIError(code, status, err.Error())
}

// userError maps registration and login failures to client errors. Anything
// unrecognised is passed through and logged by the error handler.
func userError(err error) error {
	var cooldown *users.CooldownError
	switch {
	case errors.As(err, &cooldown):
		return &middlewares.APIError{
			Code:       fiber.StatusTooManyRequests,
			Status:     "RESEND_COOLDOWN",
			Message:    cooldown.Error(),
			RetryAfter: cooldown.RetryAfter,
		}
	case errors.Is(err, users.ErrInvalidEmail), errors.Is(err, users.ErrPasswordTooShort):
		return apiError(fiber.StatusBadRequest, "BAD_REQUEST", err)
	case errors.Is(err, users.ErrNoPendingRegistration):
		return apiError(fiber.StatusBadRequest, "NO_PENDING_VERIFICATION", err)
	case errors.Is(err, users.ErrEmailRegistered):
		return apiError(fiber.StatusConflict, "EMAIL_REGISTERED", err)
	case errors.Is(err, users.ErrRegistrationExpired):
		return apiError(fiber.StatusGone, "CODE_EXPIRED", err)
	case errors.Is(err, users.ErrInvalidCode):
		return apiError(fiber.StatusUnauthorized, "INVALID_CODE", err)
	case errors.Is(err, users.ErrTooManyAttempts):
		return apiError(fiber.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", err)
	case errors.Is(err, users.ErrInvalidCredentials):
		return apiError(fiber.StatusUnauthorized, "INVALID_CREDENTIALS", err)
	case errors.Is(err, users.ErrPendingVerification):
		return apiError(fiber.StatusForbidden, statusPendingVerification, err)
	case errors.Is(err, users.ErrUserNotFound):
		return apiError(fiber.StatusNotFound, "NOT_FOUND", err)
	}
	return err
}

func settingsError(err error) error {
	var fieldsErr *settings.FieldsError
	switch {
	case errors.As(err, &fieldsErr):
		return apiError(fiber.StatusBadRequest, "BAD_REQUEST", err)
	case errors.Is(err, settings.ErrUnknownKind),
		errors.Is(err, settings.ErrInvalidID),
		errors.Is(err, settings.ErrNoFields),
		errors.Is(err, settings.ErrInvalidReference):
		return apiError(fiber.StatusBadRequest, "BAD_REQUEST", err)
	case errors.Is(err, settings.ErrNotFound), errors.Is(err, settings.ErrPageNotFound):
		return apiError(fiber.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, settings.ErrConflict):
		return apiError(fiber.StatusConflict, "CONFLICT", err)
	}
	return err
}
