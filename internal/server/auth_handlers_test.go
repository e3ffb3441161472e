package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"folio/internal/config"
	"folio/internal/models"
	"folio/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	return &models.User{
		ID: 3, Name: "Ada", Email: "ada@example.com", Password: &h,
		Role: models.RoleUser, Status: models.StatusActive,
	}
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, app, repos := newMockServer(t, nil)
		repos.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(activeUser(t, "correct-horse"), nil)

		resp := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "Ada@Example.com", "password": "correct-horse",
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "password")

		var res service.LoginResult
		require.NoError(t, json.Unmarshal(raw, &res))
		assert.Equal(t, uint(3), res.User.ID)

		identity, err := s.tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, uint(3), identity.UserID)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, app, repos := newMockServer(t, nil)
		repos.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		resp := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "nobody@example.com", "password": "x",
		}, "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "User not found", body.Error)
	})

	t.Run("unknown email without password", func(t *testing.T) {
		_, app, repos := newMockServer(t, nil)
		repos.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		resp := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "nobody@example.com",
		}, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, app, repos := newMockServer(t, nil)
		repos.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(activeUser(t, "correct-horse"), nil)

		resp := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "ada@example.com", "password": "wrong",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("blocked account", func(t *testing.T) {
		_, app, repos := newMockServer(t, nil)
		user := activeUser(t, "correct-horse")
		user.Status = models.StatusBlocked
		repos.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)

		resp := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
			"email": "ada@example.com", "password": "correct-horse",
		}, "")
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "User account is blocked. Please contact support.", body.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, app, _ := newMockServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthWithGoogle_ReturnsSanitizedUser(t *testing.T) {
	_, app, repos := newMockServer(t, nil)
	repos.users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	repos.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = 11
	})

	resp := doRequest(t, app, http.MethodPost, "/api/auth/google", map[string]string{
		"email": "new@example.com", "name": "New", "picture": "https://img",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, float64(11), body["id"])
	assert.Equal(t, true, body["is_verified"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "token")
}

func TestMe(t *testing.T) {
	s, app, repos := newMockServer(t, nil)
	repos.users.On("GetByID", mock.Anything, uint(3)).Return(activeUser(t, "pw-123456"), nil)

	resp := doRequest(t, app, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, bearer(t, s, 3, models.RoleUser))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me models.PublicUser
	decodeBody(t, resp, &me)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestGoogleLogin_Disabled(t *testing.T) {
	_, app, _ := newMockServer(t, nil)

	resp := doRequest(t, app, http.MethodGet, "/api/auth/google/login", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGoogleOAuthFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"ada@example.com","verified_email":true,"name":"Ada"}`))
	})
	google := httptest.NewServer(mux)
	defer google.Close()

	s, app, repos := newMockServer(t, &config.Config{Env: "test", FrontendURL: "https://folio.example.com/"})
	s.google = service.NewGoogleProvider(service.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token"},
		UserInfoURL:  google.URL + "/userinfo",
	})
	repos.users.On("GetByEmail", mock.Anything, "ada@example.com").Return(activeUser(t, "pw-123456"), nil)

	resp := doRequest(t, app, http.MethodGet, "/api/auth/google/login", nil, "")
	require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), google.URL+"/auth"))

	var state string
	for _, cookie := range resp.Cookies() {
		if cookie.Name == oauthStateCookie {
			state = cookie.Value
		}
	}
	require.NotEmpty(t, state)

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state=other", nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: state})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("redirects with token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=abc&state="+state, nil)
		req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: state})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

		location := resp.Header.Get("Location")
		require.True(t, strings.HasPrefix(location, "https://folio.example.com/auth/callback#token="))
		token := strings.TrimPrefix(location, "https://folio.example.com/auth/callback#token=")
		identity, err := s.tokens.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, uint(3), identity.UserID)
	})
}
