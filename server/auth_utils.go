package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/keyflow/csrf"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	// SessionCookieName holds the signed session credential
	SessionCookieName = "kf_session"
	// oauthStateCookieName holds the anti-forgery nonce of a pending login
	oauthStateCookieName = "kf_oauth_state"
	// oauthPKCECookieName holds the PKCE verifier of a pending login
	oauthPKCECookieName = "kf_oauth_pkce"
)

// transientCookie carries a per-attempt handshake secret between login and callback
func (s *Server) transientCookie(name, value string) *http.Cookie {
	secure := s.config.GetSecureCookies()
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: csrf.SameSite(secure),
		MaxAge:   int(s.config.GetOAuthStateTTL().Seconds()),
	}
}

func (s *Server) sessionCookie(value string) *http.Cookie {
	secure := s.config.GetSecureCookies()
	lifetime := s.config.GetSessionLifetime()
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: csrf.SameSite(secure),
		MaxAge:   int(lifetime.Seconds()),
		Expires:  time.Now().Add(lifetime),
	}
}

// expireCookie instructs the browser to drop an HTTP-only cookie
func (s *Server) expireCookie(name string) *http.Cookie {
	secure := s.config.GetSecureCookies()
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: csrf.SameSite(secure),
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError logs err with its detail and writes the client-safe JSON body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindInternal, apperrors.KindConfig:
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	default:
		log.Debug().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request rejected")
	}
	apperrors.WriteJSON(w, err)
}
