package config

import (
	"fmt"
	"strings"
)

const devEnv = "DEV"

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
	GetBaseURL() string
	GetFrontendOrigin() string
}

type EnvVars struct {
	port           string
	appName        string
	env            string
	logLevel       string
	baseURL        string
	frontendOrigin string
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.port
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetEnv() string {
	if e.env == "" {
		return devEnv
	}
	return e.env
}

func (e EnvVars) IsDev() bool {
	return e.GetEnv() == devEnv
}

func (e EnvVars) GetLogLevel() string {
	return e.logLevel
}

// GetBaseURL returns the public URL of this server (e.g., "https://api.example.com").
// It decides the OAuth redirect URI and whether cookies are issued as Secure.
func (e EnvVars) GetBaseURL() string {
	return e.baseURL
}

// GetFrontendOrigin is both the CORS origin and the post-login redirect target
func (e EnvVars) GetFrontendOrigin() string {
	return e.frontendOrigin
}
