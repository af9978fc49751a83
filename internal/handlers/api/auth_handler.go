package api

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/audit"
	"github.com/khanghh/clubhub/internal/middlewares"
	"github.com/khanghh/clubhub/internal/users"
)

type AuthHandler struct {
	userService UserService
}

func (h *AuthHandler) PostRegister(ctx *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := h.userService.Register(ctx.UserContext(), req.Email, req.Password)
	if err != nil {
		return userError(err)
	}
	message := "Verification code sent. Please check your email."
	if res.Pending {
		message = "Registration pending. Please verify your email or request a new code."
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(pendingResponse{
		Email:     res.Email,
		Status:    statusPendingVerification,
		Message:   message,
		ExpiresAt: res.ExpiresAt,
	}))
}

func (h *AuthHandler) PostResendCode(ctx *fiber.Ctx) error {
	var req resendCodeRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := h.userService.ResendCode(ctx.UserContext(), req.Email)
	if err != nil {
		return userError(err)
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(pendingResponse{
		Email:     res.Email,
		Status:    statusPendingVerification,
		Message:   "A new verification code has been sent.",
		ExpiresAt: res.ExpiresAt,
	}))
}

func (h *AuthHandler) PostVerify(ctx *fiber.Ctx) error {
	var req verifyRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	session, err := h.userService.Verify(ctx.UserContext(), req.Email, req.Code)
	h.recordAuthEvent(ctx, audit.RecordVerification, req.Email, session, err)
	if err != nil {
		return userError(err)
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(newSessionResponse(session)))
}

func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	session, err := h.userService.Login(ctx.UserContext(), req.Email, req.Password)
	h.recordAuthEvent(ctx, audit.RecordLogin, req.Email, session, err)
	if err != nil {
		return userError(err)
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(newSessionResponse(session)))
}

func (h *AuthHandler) GetMe(ctx *fiber.Ctx) error {
	claims := middlewares.GetClaims(ctx)
	if claims == nil {
		return fiber.ErrUnauthorized
	}
	user, err := h.userService.GetUserByID(ctx.UserContext(), claims.UserID)
	if err != nil {
		return userError(err)
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(newUserResponse(user)))
}

func (h *AuthHandler) recordAuthEvent(ctx *fiber.Ctx, recordFn func(context.Context, audit.AuthRecord) error, email string, session *users.Session, authErr error) {
	rec := audit.AuthRecord{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		IP:        ctx.IP(),
		UserAgent: string(ctx.Context().UserAgent()),
		Success:   authErr == nil,
	}
	if session != nil && session.User != nil {
		rec.UserID = session.User.ID
	}
	if authErr != nil {
		rec.Reason = authErr.Error()
	}
	if err := recordFn(ctx.UserContext(), rec); err != nil {
		slog.Warn("Failed to record audit event", "email", rec.Email, "error", err)
	}
}

func newSessionResponse(session *users.Session) sessionResponse {
	return sessionResponse{
		Token: session.Token,
		User:  newUserResponse(session.User),
	}
}

func NewAuthHandler(userService UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}
