package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LogoutHandler requires a valid CSRF pair, then clears the session and CSRF cookies.
// An unreadable session does not block logout.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.csrf.Verify(r); err != nil {
			s.writeError(w, r, err)
			return
		}

		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			if claims, err := s.sessions.Verify(cookie.Value); err == nil {
				log.Info().
					Str("user_id", claims.Subject.String()).
					Str("client_ip", clientIPFrom(r).String()).
					Msg("user logged out")
			}
		}

		http.SetCookie(w, s.expireCookie(SessionCookieName))
		s.csrf.Expire(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
