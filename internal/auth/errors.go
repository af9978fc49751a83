package auth

import "errors"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token is expired")
	ErrForbidden    = errors.New("insufficient permissions")
)
