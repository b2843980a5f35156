package main

import (
	"context"

	"github.com/jrsteele09/keyflow/internal/config"
	"github.com/jrsteele09/keyflow/users"
	"github.com/jrsteele09/keyflow/users/postgres"
	fakeuserrepo "github.com/jrsteele09/keyflow/users/repofake"
	"github.com/jrsteele09/keyflow/users/sqlite"
	"github.com/rs/zerolog/log"
)

// openUserRepo selects the user store from DATABASE_URL and brings its schema up to date
func openUserRepo(ctx context.Context, c config.StorageConfig) (users.UserRepo, func() error, error) {
	switch {
	case c.IsPostgres():
		repo, err := postgres.Open(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		if err := repo.RunMigrations(ctx); err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		log.Info().Str("store", "postgres").Msg("user store ready")
		return repo, repo.Close, nil

	case c.GetDatabaseURL() != "":
		store, err := sqlite.Open(ctx, c.GetDatabaseURL())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("store", "sqlite").Str("path", c.GetDatabaseURL()).Msg("user store ready")
		return store, store.Close, nil

	default:
		log.Warn().Msg("DATABASE_URL not set; users are kept in memory and lost on restart")
		return fakeuserrepo.NewFakeUserRepo(), func() error { return nil }, nil
	}
}
