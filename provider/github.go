// Package provider talks to the GitHub OAuth endpoints and user API.
package provider

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/keyflow/internal/config"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/users"
	"golang.org/x/oauth2"
)

const (
	userAgent = "keyflow-server"
	scopeUser = "read:user"
)

// GitHub drives the authorization-code exchange and profile lookup
type GitHub struct {
	oauth  *oauth2.Config
	apiURL string
	client *http.Client
}

// NewGitHub builds a client whose callback is redirectURL. All outbound calls share one http.Client
// bounded by the configured provider timeout.
func NewGitHub(cfg config.OAuthConfig, redirectURL string) *GitHub {
	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.GetProviderClientID(),
			ClientSecret: cfg.GetProviderClientSecret(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.GetProviderAuthURL(),
				TokenURL:  cfg.GetProviderTokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: redirectURL,
			Scopes:      []string{scopeUser},
		},
		apiURL: strings.TrimSuffix(cfg.GetProviderAPIURL(), "/"),
		client: &http.Client{
			Timeout:   cfg.GetProviderTimeout(),
			Transport: &userAgentTransport{base: http.DefaultTransport},
		},
	}
}

// NewState returns a random anti-forgery nonce for one login attempt
func NewState() string {
	return rand.Text()
}

// NewVerifier returns a PKCE code verifier
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthCodeURL returns the authorization URL bound to state and the S256 challenge of verifier
func (g *GitHub) AuthCodeURL(state, verifier string) string {
	return g.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange trades the authorization code and verifier for an access token.
// Provider rejections are bad-request failures carrying the provider's status.
func (g *GitHub) Exchange(ctx context.Context, code, verifier string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	token, err := g.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			if retrieveErr.ErrorCode != "" {
				return "", apperrors.BadRequest("github token exchange failed: %s", retrieveErr.ErrorCode)
			}
			if retrieveErr.Response != nil {
				return "", apperrors.BadRequest("github token exchange failed: %s", retrieveErr.Response.Status)
			}
		}
		return "", apperrors.BadRequest("github token exchange failed")
	}
	if token.AccessToken == "" {
		return "", apperrors.BadRequest("github token exchange failed: empty access token")
	}
	return token.AccessToken, nil
}

// FetchProfile loads the authenticated user's profile with a bearer credential
func (g *GitHub) FetchProfile(ctx context.Context, accessToken string) (users.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+"/user", nil)
	if err != nil {
		return users.Profile{}, apperrors.Internal(fmt.Errorf("build profile request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.client.Do(req)
	if err != nil {
		return users.Profile{}, apperrors.BadRequest("github api error: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return users.Profile{}, apperrors.BadRequest("github api error: %s", resp.Status)
	}

	var profile users.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return users.Profile{}, apperrors.BadRequest("github api error: invalid profile")
	}
	if profile.ID == 0 || profile.Login == "" {
		return users.Profile{}, apperrors.BadRequest("github api error: incomplete profile")
	}
	return profile, nil
}

type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(r)
}
