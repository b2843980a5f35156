// Package csrf implements the double-submit cookie defence.
//
// The token lives in a script-readable cookie and must be echoed in the
// X-CSRF-Token header on mutating requests. A cross-origin page can make the
// browser send the cookie but cannot read it to produce the header.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/keyflow/internal/errors"
)

const (
	CookieName = "kf_csrf"
	HeaderName = "X-CSRF-Token"

	tokenLength = 32
)

// Guard issues and checks CSRF tokens. It holds no mutable state.
type Guard struct {
	secure   bool
	lifetime time.Duration
}

// NewGuard returns a Guard; secure selects Secure + SameSite=None cookies, otherwise SameSite=Lax
func NewGuard(secure bool, lifetime time.Duration) *Guard {
	return &Guard{secure: secure, lifetime: lifetime}
}

// SameSite is the cookie policy shared by every cookie this service sets
func SameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Issue sets a fresh token cookie and returns the token
func (g *Guard) Issue(w http.ResponseWriter) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", apperrors.Internal(err)
	}
	http.SetCookie(w, g.cookie(token))
	return token, nil
}

// EnsureIssued returns the request's existing token, issuing one only when absent
func (g *Guard) EnsureIssued(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return g.Issue(w)
}

// Verify requires the header and cookie to be present and equal.
// Every failure is forbidden-class.
func (g *Guard) Verify(r *http.Request) error {
	header := r.Header.Get(HeaderName)
	if header == "" {
		return apperrors.ForbiddenErr(apperrors.ErrMissingCSRFHeader)
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return apperrors.ForbiddenErr(apperrors.ErrMissingCSRFCookie)
	}
	if subtle.ConstantTimeCompare([]byte(c.Value), []byte(header)) != 1 {
		return apperrors.ForbiddenErr(apperrors.ErrCSRFMismatch)
	}
	return nil
}

// Expire sets a cookie directive that removes the token cookie
func (g *Guard) Expire(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: false,
		Secure:   g.secure,
		SameSite: SameSite(g.secure),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func (g *Guard) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:  CookieName,
		Value: token,
		Path:  "/",
		// read by front-end script so it can be echoed in HeaderName
		HttpOnly: false,
		Secure:   g.secure,
		SameSite: SameSite(g.secure),
		MaxAge:   int(g.lifetime.Seconds()),
	}
}

func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
