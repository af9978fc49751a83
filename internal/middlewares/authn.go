package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/auth"
	"github.com/khanghh/clubhub/model"
)

const localsClaims = "claims"

var (
	errMissingToken = NewAPIError(fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authorization header")
	errInvalidToken = NewAPIError(fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
	errForbidden    = NewAPIError(fiber.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
)

func bearerToken(ctx *fiber.Ctx) (string, bool) {
	header := ctx.Get(fiber.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetClaims returns the session claims stored by Authenticate, or nil.
func GetClaims(ctx *fiber.Ctx) *auth.Claims {
	claims, _ := ctx.Locals(localsClaims).(*auth.Claims)
	return claims
}

// Authenticate requires a valid bearer session token.
func Authenticate(tokens *auth.TokenIssuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token, ok := bearerToken(ctx)
		if !ok {
			return errMissingToken
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			return errInvalidToken
		}
		ctx.Locals(localsClaims, claims)
		return ctx.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		claims := GetClaims(ctx)
		if claims == nil {
			return errMissingToken
		}
		if err := auth.Authorize(claims.Role, roles...); err != nil {
			return errForbidden
		}
		return ctx.Next()
	}
}

// RequireAdmin accepts either an ADMIN session token or, when adminSecret is
// set, the static admin secret as bearer token.
func RequireAdmin(tokens *auth.TokenIssuer, adminSecret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token, ok := bearerToken(ctx)
		if !ok {
			return errMissingToken
		}
		if adminSecret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(adminSecret)) == 1 {
			return ctx.Next()
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			return errInvalidToken
		}
		if err := auth.Authorize(claims.Role, model.RoleAdmin); err != nil {
			return errForbidden
		}
		ctx.Locals(localsClaims, claims)
		return ctx.Next()
	}
}
