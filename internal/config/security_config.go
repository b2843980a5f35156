package config

import "time"

const (
	// SessionLifetime is both the token expiry and the session cookie Max-Age
	SessionLifetime = 12 * time.Hour

	defaultRateLimitPerMinute = 60
	defaultRateLimitBurst     = 10
)

type SecurityConfig interface {
	GetSessionSigningKeys() []string
	GetSessionLifetime() time.Duration
	GetSecureCookies() bool
	GetRateLimitPerMinute() int
	GetRateLimitBurst() int
}

type Security struct {
	signingKeys   []string
	secureCookies bool
	perMinute     int
	burst         int
}

var _ SecurityConfig = Security{}

// GetSessionSigningKeys returns the keys in rotation order; the first one signs
func (s Security) GetSessionSigningKeys() []string {
	keys := make([]string, len(s.signingKeys))
	copy(keys, s.signingKeys)
	return keys
}

func (Security) GetSessionLifetime() time.Duration {
	return SessionLifetime
}

func (s Security) GetSecureCookies() bool {
	return s.secureCookies
}

func (s Security) GetRateLimitPerMinute() int {
	return s.perMinute
}

func (s Security) GetRateLimitBurst() int {
	return s.burst
}
