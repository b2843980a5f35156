package config

import "time"

// TransientCookieTTL bounds how long a login attempt may sit between redirect and callback
const TransientCookieTTL = 10 * time.Minute

type OAuthConfig interface {
	GetProviderClientID() string
	GetProviderClientSecret() string
	GetProviderAuthURL() string
	GetProviderTokenURL() string
	GetProviderAPIURL() string
	GetProviderTimeout() time.Duration
	GetOAuthStateTTL() time.Duration
}

type OAuth struct {
	clientID     string
	clientSecret string
	authURL      string
	tokenURL     string
	apiURL       string
	timeout      time.Duration
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetProviderClientID() string {
	return o.clientID
}

func (o OAuth) GetProviderClientSecret() string {
	return o.clientSecret
}

func (o OAuth) GetProviderAuthURL() string {
	return o.authURL
}

func (o OAuth) GetProviderTokenURL() string {
	return o.tokenURL
}

func (o OAuth) GetProviderAPIURL() string {
	return o.apiURL
}

func (o OAuth) GetProviderTimeout() time.Duration {
	if o.timeout <= 0 {
		return 10 * time.Second
	}
	return o.timeout
}

func (OAuth) GetOAuthStateTTL() time.Duration {
	return TransientCookieTTL
}
