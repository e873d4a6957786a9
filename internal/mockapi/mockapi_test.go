// Copyright (c) 2026 RootLink. All rights reserved.

package mockapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/RuzhenWong/rootlink/internal/api"
	"github.com/RuzhenWong/rootlink/internal/domain"
	"github.com/RuzhenWong/rootlink/internal/mockapi"
	"github.com/RuzhenWong/rootlink/internal/platform/apperr"
	"github.com/RuzhenWong/rootlink/internal/request"
)

// staticToken hands the pipeline a fixed token.
type staticToken struct{ token string }

func (s *staticToken) Token() string                 { return s.token }
func (s *staticToken) OnAuthExpired(context.Context) { s.token = "" }

func newMock(t *testing.T) (*mockapi.Server, *httptest.Server) {
	t.Helper()

	mock, err := mockapi.New(mockapi.Options{Secret: "test-secret", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	require.NoError(t, mock.Seed("13800138000", "Abc123", "A"))

	server := httptest.NewServer(mock)
	t.Cleanup(server.Close)
	return mock, server
}

func newAPI(t *testing.T, baseURL string, credentials *staticToken) *api.API {
	t.Helper()

	client, err := request.NewClient(request.Options{BaseURL: baseURL + "/api", Credentials: credentials})
	require.NoError(t, err)
	return api.New(client)
}

func TestMockAPI_LoginAndCurrentUser(t *testing.T) {
	_, server := newMock(t)
	credentials := &staticToken{}
	remote := newAPI(t, server.URL, credentials)
	ctx := context.Background()

	result, err := remote.Auth.Login(ctx, domain.Credentials{Phone: "13800138000", Password: "Abc123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.ID("10001"), result.UserID, "numeric ids decode to strings")
	assert.Equal(t, "A", result.RealName)
	assert.NotZero(t, result.ExpireTime)

	credentials.token = result.Token
	info, err := remote.User.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ID("10001"), info.UserID)
	assert.Equal(t, "138****8000", info.Phone)
	assert.Equal(t, "A", info.RealName)
}

func TestMockAPI_LoginFailures(t *testing.T) {
	_, server := newMock(t)
	remote := newAPI(t, server.URL, &staticToken{})

	tests := []struct {
		name     string
		input    domain.Credentials
		wantCode int
	}{
		{"unknown user", domain.Credentials{Phone: "13900000000", Password: "Abc123"}, mockapi.CodeUserNotFound},
		{"wrong password", domain.Credentials{Phone: "13800138000", Password: "Wrong1"}, mockapi.CodePasswordError},
		{"missing fields", domain.Credentials{}, mockapi.CodeParamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := remote.Auth.Login(context.Background(), tt.input)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.KindServer, ae.Kind)
			assert.Equal(t, tt.wantCode, ae.BusinessCode)
		})
	}
}

func TestMockAPI_ProtectedRoutesRequireToken(t *testing.T) {
	mock, server := newMock(t)

	t.Run("anonymous", func(t *testing.T) {
		_, err := newAPI(t, server.URL, &staticToken{}).User.Current(context.Background())
		assert.ErrorIs(t, err, apperr.ErrAuthExpired)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := newAPI(t, server.URL, &staticToken{token: "garbage"}).User.Current(context.Background())
		assert.ErrorIs(t, err, apperr.ErrAuthExpired)
	})

	t.Run("revoked by logout", func(t *testing.T) {
		credentials := &staticToken{}
		remote := newAPI(t, server.URL, credentials)
		result, err := remote.Auth.Login(context.Background(), domain.Credentials{Phone: "13800138000", Password: "Abc123"})
		require.NoError(t, err)
		credentials.token = result.Token

		require.NoError(t, remote.Auth.Logout(context.Background()))
		_, err = remote.User.Current(context.Background())
		assert.ErrorIs(t, err, apperr.ErrAuthExpired)
	})

	t.Run("expired sessions", func(t *testing.T) {
		credentials := &staticToken{}
		remote := newAPI(t, server.URL, credentials)
		result, err := remote.Auth.Login(context.Background(), domain.Credentials{Phone: "13800138000", Password: "Abc123"})
		require.NoError(t, err)
		credentials.token = result.Token

		mock.ExpireSessions()
		_, err = remote.User.Current(context.Background())
		assert.ErrorIs(t, err, apperr.ErrAuthExpired)
	})
}

func TestMockAPI_Register(t *testing.T) {
	mock, server := newMock(t)
	remote := newAPI(t, server.URL, &staticToken{})
	ctx := context.Background()

	require.NoError(t, remote.Auth.SendCode(ctx, api.SendCodeInput{Phone: "13900139000", Type: api.CodeTypeRegister}))
	code := mock.LastCode("13900139000")
	require.Len(t, code, 6)

	err := remote.Auth.Register(ctx, api.RegisterInput{Phone: "13900139000", Password: "Abc123", Code: "000000x"})
	assert.Equal(t, mockapi.CodeParamError, apperr.As(err).BusinessCode)

	require.NoError(t, remote.Auth.Register(ctx, api.RegisterInput{Phone: "13900139000", Password: "Abc123", Code: code}))
	assert.Empty(t, mock.LastCode("13900139000"), "codes are single use")

	err = remote.Auth.Register(ctx, api.RegisterInput{Phone: "13900139000", Password: "Abc123"})
	assert.Equal(t, mockapi.CodePhoneExists, apperr.As(err).BusinessCode)

	_, err = remote.Auth.Login(ctx, domain.Credentials{Phone: "13900139000", Password: "Abc123"})
	assert.NoError(t, err)
}

func TestMockAPI_UploadAvatar(t *testing.T) {
	_, server := newMock(t)
	credentials := &staticToken{}
	remote := newAPI(t, server.URL, credentials)
	ctx := context.Background()

	result, err := remote.Auth.Login(ctx, domain.Credentials{Phone: "13800138000", Password: "Abc123"})
	require.NoError(t, err)
	credentials.token = result.Token

	location, err := remote.User.UploadAvatar(ctx, "me.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://mock.rootlink.local/avatar/10001/me.png", location)
}

func TestMockAPI_RealNameVerification(t *testing.T) {
	_, server := newMock(t)
	credentials := &staticToken{}
	remote := newAPI(t, server.URL, credentials)
	ctx := context.Background()

	result, err := remote.Auth.Login(ctx, domain.Credentials{Phone: "13800138000", Password: "Abc123"})
	require.NoError(t, err)
	credentials.token = result.Token

	err = remote.User.SubmitRealName(ctx, api.RealNameInput{RealName: "Li Hua", IDCard: "11010519491231002"})
	assert.Equal(t, mockapi.CodeParamError, apperr.As(err).BusinessCode, "a short id card is rejected")

	require.NoError(t, remote.User.SubmitRealName(ctx, api.RealNameInput{RealName: "Li Hua", IDCard: "11010519491231002X"}))

	status, err := remote.User.RealNameStatus(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"realNameStatus":2,"realName":"Li Hua"}`, string(status))
}

func TestMockAPI_EulogyWallByUser(t *testing.T) {
	_, server := newMock(t)
	credentials := &staticToken{}
	remote := newAPI(t, server.URL, credentials)
	ctx := context.Background()

	result, err := remote.Auth.Login(ctx, domain.Credentials{Phone: "13800138000", Password: "Abc123"})
	require.NoError(t, err)
	credentials.token = result.Token

	page, err := remote.Eulogy.WallByUser(ctx, "10001", url.Values{"pageNum": {"3"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"records":[],"total":0,"current":3,"size":10,"targetUserId":10001}`, string(page))

	tests := []struct {
		name     string
		target   domain.ID
		wantCode int
	}{
		{"not a number", "abc", mockapi.CodeParamError},
		{"unknown user", "99999", mockapi.CodeUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := remote.Eulogy.WallByUser(ctx, tt.target, nil)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantCode, ae.BusinessCode)
		})
	}
}

func TestMockAPI_UnknownRoute(t *testing.T) {
	_, server := newMock(t)

	response, err := http.Get(server.URL + "/api/v1/nowhere")
	require.NoError(t, err)
	defer response.Body.Close()

	var envelope struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&envelope))
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
	assert.Equal(t, mockapi.CodeNotFound, envelope.Code)
}
