package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/keyflow/csrf"
	"github.com/jrsteele09/keyflow/internal/config"
	"github.com/jrsteele09/keyflow/ratelimit"
	"github.com/jrsteele09/keyflow/token"
	"github.com/jrsteele09/keyflow/users"
	"github.com/rs/zerolog/log"
)

// IdentityProvider is the external OAuth2 provider used by the login handshake
type IdentityProvider interface {
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (users.Profile, error)
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	users    users.UserRepo
	provider IdentityProvider
	sessions *token.SessionSigner
	csrf     *csrf.Guard
	limiter  *ratelimit.Limiter
}

func New(cfg config.Config, userRepo users.UserRepo, idp IdentityProvider) (*Server, error) {
	sessions, err := token.NewSessionSigner(cfg.GetSessionSigningKeys())
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session signer: %w", err)
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		users:    userRepo,
		provider: idp,
		sessions: sessions,
		csrf:     csrf.NewGuard(cfg.GetSecureCookies(), cfg.GetSessionLifetime()),
		limiter:  ratelimit.New(cfg.GetRateLimitPerMinute(), cfg.GetRateLimitBurst()),
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("route registered")
	}
}
