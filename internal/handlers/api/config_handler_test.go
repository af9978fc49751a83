package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/auth"
	"github.com/khanghh/clubhub/internal/middlewares"
	"github.com/khanghh/clubhub/internal/settings"
	"github.com/khanghh/clubhub/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) Snapshot(ctx context.Context) (*settings.Snapshot, error) {
	args := m.Called()
	snap, _ := args.Get(0).(*settings.Snapshot)
	return snap, args.Error(1)
}

func (m *mockSettingsService) Create(ctx context.Context, kind settings.Kind, data map[string]interface{}) (interface{}, error) {
	args := m.Called(kind, data)
	return args.Get(0), args.Error(1)
}

func (m *mockSettingsService) Update(ctx context.Context, kind settings.Kind, id uint, data map[string]interface{}) (interface{}, error) {
	args := m.Called(kind, id, data)
	return args.Get(0), args.Error(1)
}

func (m *mockSettingsService) Delete(ctx context.Context, kind settings.Kind, id uint) error {
	args := m.Called(kind, id)
	return args.Error(0)
}

const testAdminSecret = "admin-secret"

func newConfigTestApp(svc SettingsService, tokens *auth.TokenIssuer) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	h := NewConfigHandler(svc)
	app.Get("/api/config", h.GetConfig)
	requireAdmin := middlewares.RequireAdmin(tokens, testAdminSecret)
	app.Post("/api/config", requireAdmin, h.PostConfig)
	app.Patch("/api/config", requireAdmin, h.PatchConfig)
	app.Delete("/api/config", requireAdmin, h.DeleteConfig)
	return app
}

func sendJSON(t *testing.T, app *fiber.App, method string, body string, token string) (*http.Response, testResponse) {
	req := httptest.NewRequest(method, "/api/config", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp, readResponse(t, resp)
}

func TestGetConfig(t *testing.T) {
	svc := &mockSettingsService{}
	app := newConfigTestApp(svc, auth.NewTokenIssuer("secret", "club", time.Hour))
	svc.On("Snapshot").Return(&settings.Snapshot{
		CommunicationLinks: []model.CommunicationLink{{ID: 1, Platform: "discord"}},
		SponsorshipPages:   []model.SponsorshipPage{},
	}, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readResponse(t, resp)
	assert.Len(t, body.Data["communicationLinks"], 1)
	assert.Contains(t, body.Data, "mediaConfig")
	assert.Nil(t, body.Data["mediaConfig"])
}

func TestPostConfigRequiresAdmin(t *testing.T) {
	svc := &mockSettingsService{}
	tokens := auth.NewTokenIssuer("secret", "club", time.Hour)
	app := newConfigTestApp(svc, tokens)
	payload := `{"type":"mediaConfig","data":{"mediaDriveUrl":"https://drive"}}`

	resp, _ := sendJSON(t, app, http.MethodPost, payload, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	userToken, err := tokens.Issue(&model.User{ID: 1, Email: "u@x.com", Role: model.RoleUser})
	require.NoError(t, err)
	resp, _ = sendJSON(t, app, http.MethodPost, payload, userToken)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	svc.On("Create", settings.KindMediaConfig, map[string]interface{}{"mediaDriveUrl": "https://drive"}).
		Return(&model.MediaConfig{ID: 3, MediaDriveURL: "https://drive"}, nil)
	adminToken, err := tokens.Issue(&model.User{ID: 2, Email: "a@x.com", Role: model.RoleAdmin})
	require.NoError(t, err)
	resp, body := sendJSON(t, app, http.MethodPost, payload, adminToken)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "mediaConfig created successfully.", body.Data["message"])

	resp, _ = sendJSON(t, app, http.MethodPost, payload, testAdminSecret)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestPostConfigErrors(t *testing.T) {
	svc := &mockSettingsService{}
	app := newConfigTestApp(svc, auth.NewTokenIssuer("secret", "club", time.Hour))

	resp, _ := sendJSON(t, app, http.MethodPost, `{"type":"user","data":{}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = sendJSON(t, app, http.MethodPost, `{"type":"sponsor"}`, testAdminSecret)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	svc.On("Create", settings.KindSponsor, mock.Anything).Return(nil, settings.ErrPageNotFound).Once()
	resp, _ = sendJSON(t, app, http.MethodPost, `{"type":"sponsor","data":{"name":"Acme","sponsorshipPageId":9}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	svc.On("Create", settings.KindCommunicationLink, mock.Anything).Return(nil, settings.ErrConflict).Once()
	resp, _ = sendJSON(t, app, http.MethodPost, `{"type":"communicationLink","data":{"platform":"x","url":"u","imgUrl":"i"}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	svc.On("Create", settings.KindCommunicationLink, mock.Anything).
		Return(nil, &settings.FieldsError{Reason: "missing required fields", Fields: []string{"url"}}).Once()
	resp, body := sendJSON(t, app, http.MethodPost, `{"type":"communicationLink","data":{"platform":"x"}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing required fields: url", body.Error.Message)
}

func TestPatchConfig(t *testing.T) {
	svc := &mockSettingsService{}
	app := newConfigTestApp(svc, auth.NewTokenIssuer("secret", "club", time.Hour))
	svc.On("Update", settings.KindCommunicationLink, uint(4), map[string]interface{}{"isActive": false}).
		Return(&model.CommunicationLink{ID: 4}, nil)
	svc.On("Update", settings.KindCommunicationLink, uint(5), mock.Anything).Return(nil, settings.ErrNotFound)
	svc.On("Update", settings.KindCommunicationLink, uint(6), mock.Anything).Return(nil, settings.ErrNoFields)

	resp, body := sendJSON(t, app, http.MethodPatch, `{"type":"communicationLink","id":4,"data":{"isActive":false}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "communicationLink with id=4 updated successfully.", body.Data["message"])

	resp, _ = sendJSON(t, app, http.MethodPatch, `{"type":"communicationLink","id":5,"data":{"url":"x"}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = sendJSON(t, app, http.MethodPatch, `{"type":"communicationLink","id":6,"data":{"imgUrl":"x"}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Error.Message, "platform, url, isActive")

	resp, _ = sendJSON(t, app, http.MethodPatch, `{"type":"communicationLink","id":"4","data":{"url":"x"}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = sendJSON(t, app, http.MethodPatch, `{"type":"communicationLink","id":1.5,"data":{"url":"x"}}`, testAdminSecret)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteConfig(t *testing.T) {
	svc := &mockSettingsService{}
	app := newConfigTestApp(svc, auth.NewTokenIssuer("secret", "club", time.Hour))
	svc.On("Delete", settings.KindSponsorshipPage, uint(2)).Return(nil)
	svc.On("Delete", settings.KindSponsorshipPage, uint(3)).Return(settings.ErrNotFound)

	resp, body := sendJSON(t, app, http.MethodDelete, `{"type":"sponsorshipPage","id":2}`, testAdminSecret)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "sponsorshipPage with id=2 deleted successfully.", body.Data["message"])

	resp, _ = sendJSON(t, app, http.MethodDelete, `{"type":"sponsorshipPage","id":3}`, testAdminSecret)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
