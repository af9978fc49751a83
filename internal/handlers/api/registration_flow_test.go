package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/auth"
	"github.com/khanghh/clubhub/internal/store"
	"github.com/khanghh/clubhub/internal/users"
	"github.com/khanghh/clubhub/model"
	"github.com/khanghh/clubhub/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturedCodes struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *capturedCodes) SendVerificationCode(ctx context.Context, email string, code string, expiresIn time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = code
	return nil
}

func (c *capturedCodes) get(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

func newFlowTestApp(t *testing.T) (*fiber.App, *capturedCodes) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "flow.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))

	storage := store.NewMemoryStorage(time.Minute)
	t.Cleanup(func() { storage.Close() })

	codes := &capturedCodes{codes: make(map[string]string)}
	tokens := auth.NewTokenIssuer("jwt-secret", "clubhub", time.Hour)
	svc := users.NewUserService(
		users.NewUserRepository(db),
		store.New[users.PendingRegistration](storage, params.RegistrationKeyPrefix),
		codes,
		tokens,
		users.Options{MasterKey: "master-key"},
	)
	return newAuthTestApp(svc, tokens), codes
}

func TestRegistrationFlow(t *testing.T) {
	app, codes := newFlowTestApp(t)

	resp, body := postJSON(t, app, "/auth/register", `{"email":"member@club.org","password":"secret1"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PENDING_VERIFICATION", body.Data["status"])
	code := codes.get("member@club.org")
	require.Len(t, code, params.VerificationCodeLength)

	resp, body = postJSON(t, app, "/auth/login", `{"email":"member@club.org","password":"secret1"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "PENDING_VERIFICATION", body.Error.Status)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	resp, body = postJSON(t, app, "/auth/verify", fmt.Sprintf(`{"email":"member@club.org","code":"%s"}`, wrong))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CODE", body.Error.Status)

	resp, body = postJSON(t, app, "/auth/verify", fmt.Sprintf(`{"email":"member@club.org","code":"%s"}`, code))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body.Data["token"])

	resp, _ = postJSON(t, app, "/auth/verify", fmt.Sprintf(`{"email":"member@club.org","code":"%s"}`, code))
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)

	resp, body = postJSON(t, app, "/auth/login", `{"email":"member@club.org","password":"secret1"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body.Data["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	me := readResponse(t, resp)
	assert.Equal(t, "member@club.org", me.Data["email"])
	assert.Equal(t, "USER", me.Data["role"])

	resp, body = postJSON(t, app, "/auth/register", `{"email":"member@club.org","password":"secret1"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_REGISTERED", body.Error.Status)
}
