package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/middlewares"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *HealthHandler) GetHealth(ctx *fiber.Ctx) error {
	if h.ping != nil {
		if err := h.ping(ctx.UserContext()); err != nil {
			slog.Warn("health check failed", "error", err)
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(
				middlewares.NewErrorResponse(fiber.StatusServiceUnavailable, "UNAVAILABLE", "Backend is degraded"),
			)
		}
	}
	return ctx.Status(fiber.StatusOK).JSON(middlewares.NewDataResponse(healthResponse{Status: "Backend is running"}))
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}
