package captcha

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrMissingCaptcha = errors.New("missing captcha token")
	ErrInvalidCaptcha = errors.New("invalid captcha")
)

// TokenHeader carries the client's captcha response.
const TokenHeader = "X-Captcha-Token"

type CaptchaVerifier interface {
	Verify(ctx *fiber.Ctx) error
}

// Require rejects requests that fail captcha verification. onError converts
// the verifier's error into the response error.
func Require(verifier CaptchaVerifier, onError func(err error) error) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := verifier.Verify(ctx); err != nil {
			return onError(err)
		}
		return ctx.Next()
	}
}

type NullVerifier struct{}

func (v *NullVerifier) Verify(ctx *fiber.Ctx) error {
	return nil
}

func NewNullVerifier() *NullVerifier {
	return &NullVerifier{}
}
