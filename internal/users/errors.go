package users

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrNoPendingRegistration = errors.New("no pending registration for this email")
	ErrRegistrationExpired   = errors.New("verification code expired or not found")
	ErrInvalidCode           = errors.New("invalid verification code")
	ErrTooManyAttempts       = errors.New("too many failed verification attempts")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrPendingVerification   = errors.New("email verification pending")
	ErrUserNotFound          = errors.New("user not found")

	errResendSuperseded = errors.New("pending registration changed by another resend")
)

// CooldownError is returned when a verification code was sent too recently.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("verification code recently sent, retry in %s", e.RetryAfter.Round(time.Second))
}
