package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
)

type StorageConfig interface {
	GetDatabaseURL() string
	IsPostgres() bool
}

type Storage struct {
	databaseURL string
}

var _ StorageConfig = Storage{}

// GetDatabaseURL is a postgres:// URL or a SQLite file path; empty selects the in-memory store
func (s Storage) GetDatabaseURL() string {
	return s.databaseURL
}

func (s Storage) IsPostgres() bool {
	return strings.HasPrefix(s.databaseURL, "postgres://") || strings.HasPrefix(s.databaseURL, "postgresql://")
}

type storageEnv struct {
	DatabaseURL string `env:"DATABASE_URL"`
}

// LoadStorage reads only the storage settings so maintenance commands need no provider secrets
func LoadStorage() (StorageConfig, error) {
	var raw storageEnv
	if err := env.Parse(&raw); err != nil {
		return nil, apperrors.Config("parse env: %v", err)
	}
	if strings.TrimSpace(raw.DatabaseURL) == "" {
		return nil, apperrors.Config("DATABASE_URL missing")
	}
	return Storage{databaseURL: raw.DatabaseURL}, nil
}
