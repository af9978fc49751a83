package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHealth(t *testing.T) {
	var pingErr error
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Get("/api/health", NewHealthHandler(func(ctx context.Context) error { return pingErr }).GetHealth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Backend is running", readResponse(t, resp).Data["status"])

	pingErr = errors.New("db down")
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
