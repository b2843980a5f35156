package csrf_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/keyflow/csrf"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestIssue(t *testing.T) {
	t.Run("secure deployment", func(t *testing.T) {
		g := csrf.NewGuard(true, 12*time.Hour)
		rec := httptest.NewRecorder()

		token, err := g.Issue(rec)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(token)
		require.NoError(t, err)
		require.Len(t, raw, 32)

		c := findCookie(t, rec, csrf.CookieName)
		require.Equal(t, token, c.Value)
		require.False(t, c.HttpOnly, "token must be readable by script")
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteNoneMode, c.SameSite)
		require.Equal(t, "/", c.Path)
		require.Equal(t, int((12 * time.Hour).Seconds()), c.MaxAge)
	})

	t.Run("insecure deployment", func(t *testing.T) {
		g := csrf.NewGuard(false, time.Hour)
		rec := httptest.NewRecorder()

		_, err := g.Issue(rec)
		require.NoError(t, err)

		c := findCookie(t, rec, csrf.CookieName)
		require.False(t, c.Secure)
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		g := csrf.NewGuard(true, time.Hour)
		a, err := g.Issue(httptest.NewRecorder())
		require.NoError(t, err)
		b, err := g.Issue(httptest.NewRecorder())
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestEnsureIssued(t *testing.T) {
	g := csrf.NewGuard(true, time.Hour)

	t.Run("keeps existing token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/session", nil)
		r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: "existing-token"})
		rec := httptest.NewRecorder()

		token, err := g.EnsureIssued(rec, r)
		require.NoError(t, err)
		require.Equal(t, "existing-token", token)
		require.Empty(t, rec.Result().Cookies(), "no cookie is rotated")
	})

	t.Run("issues when absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/session", nil)
		rec := httptest.NewRecorder()

		token, err := g.EnsureIssued(rec, r)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Equal(t, token, findCookie(t, rec, csrf.CookieName).Value)
	})
}

func TestVerify(t *testing.T) {
	g := csrf.NewGuard(true, time.Hour)
	const token = "dG9rZW4tdmFsdWUtZm9yLXRlc3Rpbmc"

	newRequest := func(cookie, header string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		if cookie != "" {
			r.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: cookie})
		}
		if header != "" {
			r.Header.Set(csrf.HeaderName, header)
		}
		return r
	}

	tests := []struct {
		name    string
		cookie  string
		header  string
		wantErr error
	}{
		{name: "matching", cookie: token, header: token},
		{name: "missing header", cookie: token, wantErr: apperrors.ErrMissingCSRFHeader},
		{name: "missing cookie", header: token, wantErr: apperrors.ErrMissingCSRFCookie},
		{name: "missing both", wantErr: apperrors.ErrMissingCSRFHeader},
		{name: "trailing character differs", cookie: token, header: token + "x", wantErr: apperrors.ErrCSRFMismatch},
		{name: "last character differs", cookie: token, header: token[:len(token)-1] + "A", wantErr: apperrors.ErrCSRFMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Verify(newRequest(tt.cookie, tt.header))
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
			require.Equal(t, http.StatusForbidden, apperrors.StatusCode(err))
		})
	}
}

func TestExpire(t *testing.T) {
	g := csrf.NewGuard(false, time.Hour)
	rec := httptest.NewRecorder()
	g.Expire(rec)

	c := findCookie(t, rec, csrf.CookieName)
	require.Empty(t, c.Value)
	require.Equal(t, -1, c.MaxAge)
	require.True(t, c.Expires.Before(time.Now()))
	require.False(t, c.HttpOnly)
	require.Equal(t, "/", c.Path)
}
