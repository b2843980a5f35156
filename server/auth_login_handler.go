package server

import (
	"net/http"

	"github.com/jrsteele09/keyflow/provider"
	"github.com/rs/zerolog/log"
)

// ProviderLoginHandler starts the handshake: it parks a fresh nonce and PKCE verifier in
// short-lived cookies and redirects the browser to the provider.
func (s *Server) ProviderLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := provider.NewState()
		verifier := provider.NewVerifier()
		authURL := s.provider.AuthCodeURL(state, verifier)

		http.SetCookie(w, s.transientCookie(oauthStateCookieName, state))
		http.SetCookie(w, s.transientCookie(oauthPKCECookieName, verifier))

		log.Info().Str("client_ip", clientIPFrom(r).String()).Msg("redirecting user to provider")
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}
