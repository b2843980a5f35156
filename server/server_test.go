package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/keyflow/csrf"
	"github.com/jrsteele09/keyflow/internal/config"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/internal/utils"
	"github.com/jrsteele09/keyflow/server"
	"github.com/jrsteele09/keyflow/users"
	fakeuserrepo "github.com/jrsteele09/keyflow/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testFrontendOrigin = "https://app.keyflow.test"
	testAccessToken    = "gho_secret_access_token"
	testCode           = "auth-code-1"
)

var testSigningKey = strings.Repeat("s", 32)

// fakeProvider stands in for GitHub and records what the handshake sends it
type fakeProvider struct {
	mu            sync.Mutex
	exchangeCalls int
	gotCode       string
	gotVerifier   string
	authVerifier  string
	exchangeErr   error
	profileErr    error
	profile       users.Profile
}

func (f *fakeProvider) AuthCodeURL(state, verifier string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authVerifier = verifier
	return "https://github.test/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code, verifier string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	f.gotCode = code
	f.gotVerifier = verifier
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return testAccessToken, nil
}

func (f *fakeProvider) FetchProfile(_ context.Context, accessToken string) (users.Profile, error) {
	if f.profileErr != nil {
		return users.Profile{}, f.profileErr
	}
	if accessToken != testAccessToken {
		return users.Profile{}, apperrors.BadRequest("github api error: 401 Unauthorized")
	}
	return f.profile, nil
}

type testFixture struct {
	server   *server.Server
	provider *fakeProvider
	userRepo *fakeuserrepo.FakeUserRepo
}

func testEnv() map[string]string {
	return map[string]string{
		"APP_BASE_URL":               "https://api.keyflow.test",
		"FRONTEND_ORIGIN":            testFrontendOrigin,
		"GITHUB_CLIENT_ID":           "client-id",
		"GITHUB_CLIENT_SECRET":       "client-secret",
		"SESSION_SIGNING_KEYS":       testSigningKey,
		"AUTH_RATE_LIMIT_PER_MINUTE": "1000",
		"AUTH_RATE_LIMIT_BURST":      "1000",
	}
}

// setupTestFixture creates a server over an in-memory user repo and a fake provider
func setupTestFixture(t *testing.T, overrides ...map[string]string) *testFixture {
	t.Helper()

	vars := testEnv()
	for _, o := range overrides {
		for k, v := range o {
			vars[k] = v
		}
	}
	cfg, err := config.LoadFrom(vars)
	require.NoError(t, err)

	fp := &fakeProvider{profile: users.Profile{
		ID:        4242,
		Login:     "octocat",
		Name:      utils.Ptr("The Octocat"),
		AvatarURL: utils.Ptr("https://avatars.example/u/4242"),
		Email:     utils.Ptr("OctoCat@GitHub.com"),
	}}
	repo := fakeuserrepo.NewFakeUserRepo()

	s, err := server.New(cfg, repo, fp)
	require.NoError(t, err)

	return &testFixture{server: s, provider: fp, userRepo: repo}
}

func (f *testFixture) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, r)
	return rec
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

// login runs the initiation step and returns the state nonce and transient cookies
func (f *testFixture) login(t *testing.T) (string, []*http.Cookie) {
	t.Helper()
	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteProviderLogin, nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	return loc.Query().Get("state"), rec.Result().Cookies()
}

func callbackRequest(state, code string, cookies []*http.Cookie) *http.Request {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	if code != "" {
		q.Set("code", code)
	}
	r := httptest.NewRequest(http.MethodGet, server.RouteProviderCallback+"?"+q.Encode(), nil)
	for _, c := range cookies {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return r
}

// authenticate completes a full handshake and returns the session and CSRF cookies
func (f *testFixture) authenticate(t *testing.T) (*http.Cookie, *http.Cookie) {
	t.Helper()
	state, cookies := f.login(t)
	rec := f.do(callbackRequest(state, testCode, cookies))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code, rec.Body.String())

	set := rec.Result().Cookies()
	session := cookieByName(set, server.SessionCookieName)
	csrfCookie := cookieByName(set, csrf.CookieName)
	require.NotNil(t, session)
	require.NotNil(t, csrfCookie)
	return session, csrfCookie
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, server.RouteHealth, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	require.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=63072000")
	require.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("preflight from the front end", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, server.RouteAuthLogout, nil)
		r.Header.Set("Origin", testFrontendOrigin)
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := f.do(r)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, testFrontendOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")
	})

	t.Run("other origins get no grant", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, server.RouteHealth, nil)
		r.Header.Set("Origin", "https://evil.test")
		rec := f.do(r)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
