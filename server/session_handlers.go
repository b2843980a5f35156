package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/users"
)

type sessionResponse struct {
	User      users.PublicUser `json:"user"`
	CSRFToken string           `json:"csrfToken"`
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// SessionHandler returns the current user and makes sure a CSRF token exists for the front end
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cu, ok := CurrentUserFrom(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.Unauthorized(nil))
			return
		}
		csrfToken, err := s.csrf.EnsureIssued(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{User: cu.User.Public(), CSRFToken: csrfToken})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cu, ok := CurrentUserFrom(r.Context())
		if !ok {
			s.writeError(w, r, apperrors.Unauthorized(nil))
			return
		}
		writeJSON(w, http.StatusOK, cu.User.Public())
	}
}
