package server

import (
	"crypto/subtle"
	"net/http"

	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/rs/zerolog/log"
)

// OAuthCallbackHandler completes the handshake. The returned state must equal the nonce cookie
// before the provider is contacted; a failed attempt has to restart from the login route.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		state := query.Get("state")
		code := query.Get("code")
		errorParam := query.Get("error")

		// Check for authorization errors
		if errorParam != "" {
			s.expireTransientCookies(w)
			s.writeError(w, r, apperrors.BadRequest("authorization failed: %s", errorParam))
			return
		}

		if code == "" || state == "" {
			s.writeError(w, r, apperrors.BadRequest("missing code or state parameter"))
			return
		}

		stateCookie, err := r.Cookie(oauthStateCookieName)
		if err != nil || stateCookie.Value == "" {
			s.writeError(w, r, apperrors.BadRequestErr(apperrors.ErrMissingOAuthState))
			return
		}
		pkceCookie, err := r.Cookie(oauthPKCECookieName)
		if err != nil || pkceCookie.Value == "" {
			s.writeError(w, r, apperrors.BadRequestErr(apperrors.ErrMissingPKCE))
			return
		}

		// Both secrets are single use
		s.expireTransientCookies(w)

		clientIP := clientIPFrom(r).String()
		if subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 {
			log.Warn().Str("client_ip", clientIP).Msg("oauth state mismatch")
			s.writeError(w, r, apperrors.BadRequestErr(apperrors.ErrInvalidOAuthState))
			return
		}

		accessToken, err := s.provider.Exchange(r.Context(), code, pkceCookie.Value)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		profile, err := s.provider.FetchProfile(r.Context(), accessToken)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		user, err := s.users.UpsertByExternalID(r.Context(), profile)
		if err != nil {
			s.writeError(w, r, apperrors.Internal(apperrors.Wrapf(err, "upsert user %d", profile.ID)))
			return
		}

		sessionToken, err := s.sessions.Issue(user.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.SetCookie(w, s.sessionCookie(sessionToken))

		if _, err := s.csrf.Issue(w); err != nil {
			s.writeError(w, r, err)
			return
		}

		log.Info().
			Str("user_id", user.ID.String()).
			Str("login", user.Login).
			Str("client_ip", clientIP).
			Msg("user authenticated via provider")
		http.Redirect(w, r, s.config.GetFrontendOrigin(), http.StatusTemporaryRedirect)
	}
}

func (s *Server) expireTransientCookies(w http.ResponseWriter) {
	http.SetCookie(w, s.expireCookie(oauthStateCookieName))
	http.SetCookie(w, s.expireCookie(oauthPKCECookieName))
}
