package server

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/jrsteele09/keyflow/clientip"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyCurrentUser stores the *CurrentUser resolved from the session cookie
	ContextKeyCurrentUser ContextKey = "current_user"
	// ContextKeyClientIP stores the netip.Addr resolved by the rate limiter
	ContextKeyClientIP ContextKey = "client_ip"
)

// CurrentUser is the authenticated identity of a request
type CurrentUser struct {
	User     *users.User
	ClientIP netip.Addr
}

// RequireRole fails with an unauthorized error unless the user holds exactly role
func (c *CurrentUser) RequireRole(role users.RoleType) error {
	if c == nil || c.User == nil || !c.User.HasRole(role) {
		return apperrors.Unauthorized(nil)
	}
	return nil
}

func (c *CurrentUser) RequireAdmin() error {
	return c.RequireRole(users.RoleAdmin)
}

// CurrentUserFrom returns the identity placed on ctx by RequireSession
func CurrentUserFrom(ctx context.Context) (*CurrentUser, bool) {
	cu, ok := ctx.Value(ContextKeyCurrentUser).(*CurrentUser)
	return cu, ok && cu != nil
}

// clientIPFrom returns the address resolved earlier in the chain, or resolves it now
func clientIPFrom(r *http.Request) netip.Addr {
	if addr, ok := r.Context().Value(ContextKeyClientIP).(netip.Addr); ok {
		return addr
	}
	return clientip.FromRequest(r)
}

// RequireSession authenticates the session cookie and loads its user.
// Any failure short-circuits with a generic 401.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cu, err := s.authenticate(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyCurrentUser, cu)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) authenticate(r *http.Request) (*CurrentUser, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, apperrors.Unauthorized(nil)
	}

	claims, err := s.sessions.Verify(cookie.Value)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(err)
		}
		return nil, apperrors.Internal(err)
	}

	cu := &CurrentUser{User: user, ClientIP: clientIPFrom(r)}
	log.Debug().
		Str("user_id", user.ID.String()).
		Str("login", user.Login).
		Str("client_ip", cu.ClientIP.String()).
		Msg("session validated")
	return cu, nil
}

// RequireRole must run after RequireSession
func (s *Server) RequireRole(role users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cu, _ := CurrentUserFrom(r.Context())
			if err := cu.RequireRole(role); err != nil {
				s.writeError(w, r, err)
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return s.RequireRole(users.RoleAdmin)
}
