// Copyright (c) 2026 RootLink. All rights reserved.

package app_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RuzhenWong/rootlink/internal/app"
	"github.com/RuzhenWong/rootlink/internal/mockapi"
	"github.com/RuzhenWong/rootlink/internal/platform/config"
	"github.com/RuzhenWong/rootlink/internal/platform/constants"
	"github.com/RuzhenWong/rootlink/internal/storage"
)

const (
	demoPhone    = "13800138000"
	demoPassword = "Abc123"
)

type harness struct {
	app     *app.App
	mock    *mockapi.Server
	backend *storage.MemoryBackend
	cfg     *config.Config
	logger  *slog.Logger
}

// viewEnvelope is the console's rendered view as seen by a browser.
type viewEnvelope struct {
	Code int `json:"code"`
	Data struct {
		Title   string `json:"title"`
		Name    string `json:"name"`
		Path    string `json:"path"`
		Session struct {
			UserID     string          `json:"userId"`
			UserInfo   json.RawMessage `json:"userInfo"`
			IsLoggedIn bool            `json:"isLoggedIn"`
		} `json:"session"`
		Notices []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"notices"`
		Data json.RawMessage `json:"data"`
	} `json:"data"`
}

func newHarness(t *testing.T, backend *storage.MemoryBackend) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock, err := mockapi.New(mockapi.Options{Secret: "test-secret", BcryptCost: bcrypt.MinCost, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, mock.Seed(demoPhone, demoPassword, "A"))

	upstream := httptest.NewServer(mock)
	t.Cleanup(upstream.Close)

	if backend == nil {
		backend = storage.NewMemoryBackend()
	}
	cfg := &config.Config{
		ConsoleAddr:   "127.0.0.1:0",
		Environment:   "test",
		APIBaseURL:    upstream.URL + "/api",
		APITimeout:    2 * time.Second,
		StorageDriver: config.StorageMemory,
	}

	application, err := app.Build(context.Background(), cfg, logger, app.Options{Backend: backend})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	return &harness{app: application, mock: mock, backend: backend, cfg: cfg, logger: logger}
}

// rebuild wires a second console over the same mock API and storage, as a
// restarted process would see them.
func (h *harness) rebuild(t *testing.T) *app.App {
	t.Helper()

	application, err := app.Build(context.Background(), h.cfg, h.logger, app.Options{Backend: h.backend})
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	return application
}

func (h *harness) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	incoming := httptest.NewRequest(method, target, body)
	if contentType != "" {
		incoming.Header.Set(constants.HeaderContentType, contentType)
	}
	recorder := httptest.NewRecorder()
	h.app.Server.Handler().ServeHTTP(recorder, incoming)
	return recorder
}

func (h *harness) login(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"phone":"` + demoPhone + `","password":"` + demoPassword + `"}`
	return h.do(t, http.MethodPost, target, strings.NewReader(body), constants.ContentTypeJSON)
}

func decodeView(t *testing.T, recorder *httptest.ResponseRecorder) viewEnvelope {
	t.Helper()
	var view viewEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &view), recorder.Body.String())
	return view
}

func noticeMessages(view viewEnvelope) []string {
	messages := make([]string, 0, len(view.Data.Notices))
	for _, notice := range view.Data.Notices {
		messages = append(messages, notice.Message)
	}
	return messages
}

func TestConsole_ProtectedViewRedirectsToLogin(t *testing.T) {
	h := newHarness(t, nil)

	recorder := h.do(t, http.MethodGet, "/eulogy/wall?page=2", nil, "")

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/login?redirect=%2Feulogy%2Fwall%3Fpage%3D2", recorder.Header().Get("Location"))
	assert.Equal(t, 0, h.app.History.Visits(), "a redirected navigation is not recorded")
}

func TestConsole_LoginLandsOnIntendedView(t *testing.T) {
	h := newHarness(t, nil)

	recorder := h.login(t, "/login?redirect="+url.QueryEscape("/profile"))
	require.Equal(t, http.StatusSeeOther, recorder.Code, recorder.Body.String())
	assert.Equal(t, "/profile", recorder.Header().Get("Location"))
	assert.Equal(t, "My Profile - RootLink", recorder.Header().Get(constants.HeaderPageTitle))

	snapshot := h.app.Session.Snapshot()
	assert.True(t, snapshot.IsLoggedIn)
	assert.Equal(t, "10001", snapshot.UserID.String())
	require.NotNil(t, snapshot.UserInfo)
	assert.Equal(t, "A", snapshot.UserInfo.RealName)

	token, found, err := h.backend.Get(context.Background(), constants.StorageKeyToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, snapshot.Token, token)

	recorder = h.do(t, http.MethodGet, "/profile", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.Equal(t, "My Profile - RootLink", recorder.Header().Get(constants.HeaderPageTitle))

	view := decodeView(t, recorder)
	assert.Equal(t, "Profile", view.Data.Name)
	assert.True(t, view.Data.Session.IsLoggedIn)
	assert.Equal(t, "10001", view.Data.Session.UserID)
	assert.Contains(t, string(view.Data.Data), `"realName":"A"`)
	assert.Contains(t, noticeMessages(view), "Logged in")
}

func TestConsole_LoginFormPostWithoutIntent(t *testing.T) {
	h := newHarness(t, nil)

	form := url.Values{"phone": {demoPhone}, "password": {demoPassword}}
	recorder := h.do(t, http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")

	require.Equal(t, http.StatusSeeOther, recorder.Code, recorder.Body.String())
	assert.Equal(t, constants.PathDashboard, recorder.Header().Get("Location"))

	recorder = h.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, constants.PathDashboard, recorder.Header().Get("Location"))

	recorder = h.do(t, http.MethodGet, "/dashboard", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Home - RootLink", recorder.Header().Get(constants.HeaderPageTitle))
	assert.Contains(t, string(decodeView(t, recorder).Data.Data), `"phone":"138****8000"`)
}

func TestConsole_LoginRejected(t *testing.T) {
	h := newHarness(t, nil)

	t.Run("invalid input", func(t *testing.T) {
		recorder := h.do(t, http.MethodPost, "/login", strings.NewReader(`{"phone":"123"}`), constants.ContentTypeJSON)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"phone":"` + demoPhone + `","password":"Wrong999"}`
		recorder := h.do(t, http.MethodPost, "/login", strings.NewReader(body), constants.ContentTypeJSON)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		assert.False(t, h.app.Session.IsLoggedIn())
		assert.Zero(t, h.backend.Len())
	})
}

func TestConsole_ExpiredSessionReturnsToLogin(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)
	h.app.Flash.Drain()

	h.mock.ExpireSessions()

	recorder := h.do(t, http.MethodGet, "/profile", nil, "")
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, constants.PathLogin, recorder.Header().Get("Location"))

	assert.False(t, h.app.Session.IsLoggedIn())
	assert.Empty(t, h.app.Session.Token())
	assert.Zero(t, h.backend.Len(), "durable keys are cleared")
	assert.Equal(t, constants.PathLogin, h.app.History.Current())

	recorder = h.do(t, http.MethodGet, "/login", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	view := decodeView(t, recorder)
	assert.False(t, view.Data.Session.IsLoggedIn)
	assert.Contains(t, noticeMessages(view), constants.NoticeSessionExpired)
}

func TestConsole_RestoredStaleSession(t *testing.T) {
	backend := storage.NewMemoryBackend()
	store := storage.NewSessionStore(backend)
	ctx := context.Background()
	require.NoError(t, store.SetToken(ctx, "tok1"))
	require.NoError(t, store.SetUserID(ctx, "u1"))

	h := newHarness(t, backend)
	require.True(t, h.app.Session.IsLoggedIn(), "hydrated from storage")
	assert.Equal(t, "tok1", h.app.Session.Token())

	recorder := h.do(t, http.MethodGet, "/dashboard", nil, "")

	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, constants.PathLogin, recorder.Header().Get("Location"))
	assert.False(t, h.app.Session.IsLoggedIn())
	assert.Zero(t, backend.Len())
}

func TestConsole_AbandonedRequestKeepsSession(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)
	token := h.app.Session.Token()

	// A restart with a live token but no cached profile.
	require.NoError(t, h.backend.Delete(context.Background(), constants.StorageKeyUserInfo))
	restarted := h.rebuild(t)
	require.Nil(t, restarted.Session.UserInfo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	incoming := httptest.NewRequest(http.MethodGet, "/dashboard", nil).WithContext(ctx)
	recorder := httptest.NewRecorder()
	restarted.Server.Handler().ServeHTTP(recorder, incoming)

	assert.Empty(t, recorder.Header().Get("Location"))
	assert.Zero(t, restarted.History.Visits())
	assert.True(t, restarted.Session.IsLoggedIn(), "a disconnected client does not log the user out")
	assert.Equal(t, token, restarted.Session.Token())

	recorder = httptest.NewRecorder()
	restarted.Server.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
}

func TestConsole_Logout(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)

	recorder := h.do(t, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, constants.PathLogin, recorder.Header().Get("Location"))
	assert.False(t, h.app.Session.IsLoggedIn())
	assert.Zero(t, h.backend.Len())

	recorder = h.do(t, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusSeeOther, recorder.Code, "logging out twice is harmless")
}

func TestConsole_RegisterWithCode(t *testing.T) {
	h := newHarness(t, nil)
	const phone = "13900139000"

	recorder := h.do(t, http.MethodPost, "/register/code", strings.NewReader(`{"phone":"`+phone+`"}`), constants.ContentTypeJSON)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	code := h.mock.LastCode(phone)
	require.Len(t, code, 6)

	body := `{"phone":"` + phone + `","password":"Secret123","code":"` + code + `"}`
	recorder = h.do(t, http.MethodPost, "/register", strings.NewReader(body), constants.ContentTypeJSON)
	require.Equal(t, http.StatusSeeOther, recorder.Code, recorder.Body.String())
	assert.Equal(t, constants.PathLogin, recorder.Header().Get("Location"))
	assert.False(t, h.app.Session.IsLoggedIn(), "registration does not log in")
}

func TestConsole_UnknownRouteIsPublic(t *testing.T) {
	h := newHarness(t, nil)

	recorder := h.do(t, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "RootLink", recorder.Header().Get(constants.HeaderPageTitle))
}

func TestConsole_Infrastructure(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/ready", nil, "").Code)

	recorder := h.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `rootlink_client_requests_total{method="POST",outcome="ok"}`)
}

func TestConsole_EulogyWallForwardsPaging(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)

	recorder := h.do(t, http.MethodGet, "/eulogy/wall?page=2&size=5", nil, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	view := decodeView(t, recorder)
	assert.Equal(t, "Eulogy Wall - RootLink", view.Data.Title)
	assert.Contains(t, string(view.Data.Data), `"current":2`)
	assert.Contains(t, string(view.Data.Data), `"size":5`)
}

func TestConsole_SubmitRealName(t *testing.T) {
	h := newHarness(t, nil)
	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)

	form := url.Values{"realName": {" Li Hua "}, "idCard": {"11010519491231002x"}}
	recorder := h.do(t, http.MethodPost, constants.PathRealName, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, recorder.Code, recorder.Body.String())
	assert.Equal(t, constants.PathRealName, recorder.Header().Get("Location"))

	recorder = h.do(t, http.MethodGet, constants.PathRealName, nil, "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	view := decodeView(t, recorder)
	assert.Contains(t, string(view.Data.Data), `"realNameStatus":2`)
	assert.Contains(t, string(view.Data.Data), `"realName":"Li Hua"`)
	assert.Contains(t, noticeMessages(view), "Real-name verification submitted")
}

func TestConsole_SubmitRealNameRejectsBadInput(t *testing.T) {
	h := newHarness(t, nil)

	recorder := h.do(t, http.MethodPost, constants.PathRealName, strings.NewReader(`{"realName":"Li Hua","idCard":"11010519491231002X"}`), constants.ContentTypeJSON)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/login?redirect=%2Frealname", recorder.Header().Get("Location"))

	require.Equal(t, http.StatusSeeOther, h.login(t, "/login").Code)

	recorder = h.do(t, http.MethodPost, constants.PathRealName, strings.NewReader(`{"realName":"Li Hua","idCard":"123"}`), constants.ContentTypeJSON)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "idCard")

	longName := strings.Repeat("a", 51)
	recorder = h.do(t, http.MethodPost, constants.PathRealName, strings.NewReader(`{"realName":"`+longName+`","idCard":"11010519491231002X"}`), constants.ContentTypeJSON)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "realName")
}
