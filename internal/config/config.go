package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/rs/zerolog/log"
)

const minSigningKeyLength = 32

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
	StorageConfig
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Security
	Storage
}

// rawEnv mirrors the process environment before validation
type rawEnv struct {
	Port                 string   `env:"PORT"                       envDefault:"8080"`
	AppName              string   `env:"APP_NAME"                   envDefault:"Keyflow"`
	Env                  string   `env:"ENV"                        envDefault:"DEV"`
	LogLevel             string   `env:"LOG_LEVEL"                  envDefault:"info"`
	BaseURL              string   `env:"APP_BASE_URL"               envDefault:"http://localhost:8080"`
	FrontendOrigin       string   `env:"FRONTEND_ORIGIN"            envDefault:"http://localhost:5173"`
	DatabaseURL          string   `env:"DATABASE_URL"`
	SessionSigningKeys   []string `env:"SESSION_SIGNING_KEYS"       envSeparator:","`
	SessionSigningKey    string   `env:"SESSION_SIGNING_KEY"`
	RateLimitPerMinute   int      `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	RateLimitBurst       int      `env:"AUTH_RATE_LIMIT_BURST"      envDefault:"10"`
	AllowInsecureCookies bool     `env:"ALLOW_INSECURE_COOKIES"`

	ClientID     string        `env:"GITHUB_CLIENT_ID"`
	ClientSecret string        `env:"GITHUB_CLIENT_SECRET"`
	AuthURL      string        `env:"GITHUB_AUTH_URL"  envDefault:"https://github.com/login/oauth/authorize"`
	TokenURL     string        `env:"GITHUB_TOKEN_URL" envDefault:"https://github.com/login/oauth/access_token"`
	APIURL       string        `env:"GITHUB_API_URL"   envDefault:"https://api.github.com"`
	Timeout      time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
}

// Load reads and validates configuration from the process environment
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the process environment
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var raw rawEnv
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return nil, apperrors.Config("parse env: %v", err)
	}

	keys, err := loadSigningKeys(raw)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw.ClientID) == "" {
		return nil, apperrors.Config("GITHUB_CLIENT_ID missing")
	}
	if strings.TrimSpace(raw.ClientSecret) == "" {
		return nil, apperrors.Config("GITHUB_CLIENT_SECRET missing")
	}

	secure := strings.HasPrefix(raw.BaseURL, "https://")
	if !secure && !raw.AllowInsecureCookies {
		return nil, apperrors.Config("APP_BASE_URL must use https when issuing SameSite=None cookies; set ALLOW_INSECURE_COOKIES=true only for local development")
	}

	if raw.DatabaseURL == "" && raw.Env != devEnv {
		return nil, apperrors.Config("DATABASE_URL missing")
	}

	return mainConfig{
		EnvVars: EnvVars{
			port:           raw.Port,
			appName:        raw.AppName,
			env:            raw.Env,
			logLevel:       raw.LogLevel,
			baseURL:        strings.TrimRight(raw.BaseURL, "/"),
			frontendOrigin: raw.FrontendOrigin,
		},
		Cors: newCors(raw.FrontendOrigin),
		OAuth: OAuth{
			clientID:     raw.ClientID,
			clientSecret: raw.ClientSecret,
			authURL:      raw.AuthURL,
			tokenURL:     raw.TokenURL,
			apiURL:       strings.TrimRight(raw.APIURL, "/"),
			timeout:      raw.Timeout,
		},
		Security: Security{
			signingKeys:   keys,
			secureCookies: secure,
			perMinute:     positiveOr(raw.RateLimitPerMinute, defaultRateLimitPerMinute),
			burst:         positiveOr(raw.RateLimitBurst, defaultRateLimitBurst),
		},
		Storage: Storage{databaseURL: raw.DatabaseURL},
	}, nil
}

func loadSigningKeys(raw rawEnv) ([]string, error) {
	usedLegacy := len(raw.SessionSigningKeys) == 0
	var keys []string
	if usedLegacy {
		if raw.SessionSigningKey == "" {
			return nil, apperrors.Config("SESSION_SIGNING_KEY or SESSION_SIGNING_KEYS missing")
		}
		keys = []string{raw.SessionSigningKey}
	} else {
		for _, k := range raw.SessionSigningKeys {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}

	if len(keys) == 0 {
		return nil, apperrors.Config("no session signing keys provided")
	}
	for _, k := range keys {
		if len(k) < minSigningKeyLength {
			return nil, apperrors.Config("all session signing keys must be at least %d characters for HMAC signing", minSigningKeyLength)
		}
	}

	if usedLegacy {
		log.Warn().Msg("SESSION_SIGNING_KEY is deprecated; prefer SESSION_SIGNING_KEYS for key rotation")
	}
	if len(keys) == 1 {
		log.Warn().Msg("only one session signing key configured; provide multiple values in SESSION_SIGNING_KEYS to enable seamless rotation")
	}
	return keys, nil
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
