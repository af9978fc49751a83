package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/params"
)

const TurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// TurnstileVerifier checks tokens against Cloudflare Turnstile.
type TurnstileVerifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
}

func (v *TurnstileVerifier) Verify(ctx *fiber.Ctx) error {
	token := strings.TrimSpace(ctx.Get(TokenHeader))
	if token == "" {
		return ErrMissingCaptcha
	}

	form := url.Values{
		"secret":   {v.secretKey},
		"response": {token},
		"remoteip": {ctx.IP()},
	}
	reqCtx, cancel := context.WithTimeout(ctx.UserContext(), params.CaptchaVerifyTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("turnstile request failed: %w", err)
	}
	defer resp.Body.Close()

	var res turnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("turnstile response decode failed: %w", err)
	}
	if !res.Success {
		return ErrInvalidCaptcha
	}
	return nil
}

func NewTurnstileVerifier(secretKey string) *TurnstileVerifier {
	return &TurnstileVerifier{
		secretKey: secretKey,
		verifyURL: TurnstileVerifyURL,
		client:    &http.Client{Timeout: params.CaptchaVerifyTimeout},
	}
}
