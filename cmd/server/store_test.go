package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/keyflow/internal/config"
	"github.com/jrsteele09/keyflow/users"
	fakeuserrepo "github.com/jrsteele09/keyflow/users/repofake"
	"github.com/jrsteele09/keyflow/users/sqlite"
	"github.com/stretchr/testify/require"
)

func TestOpenUserRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("in memory without database url", func(t *testing.T) {
		repo, closeRepo, err := openUserRepo(ctx, storage(t, ""))
		require.NoError(t, err)
		require.IsType(t, &fakeuserrepo.FakeUserRepo{}, repo)
		require.NoError(t, closeRepo())
	})

	t.Run("sqlite for a file path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "keyflow.db")
		repo, closeRepo, err := openUserRepo(ctx, storage(t, path))
		require.NoError(t, err)
		require.IsType(t, &sqlite.Store{}, repo)

		u, err := repo.UpsertByExternalID(ctx, users.Profile{ID: 1, Login: "octocat"})
		require.NoError(t, err)
		require.Equal(t, "octocat", u.Login)
		require.NoError(t, closeRepo())
	})
}

func storage(t *testing.T, databaseURL string) config.StorageConfig {
	t.Helper()
	if databaseURL == "" {
		cfg, err := config.LoadFrom(map[string]string{
			"GITHUB_CLIENT_ID":       "id",
			"GITHUB_CLIENT_SECRET":   "secret",
			"SESSION_SIGNING_KEYS":   "0123456789abcdef0123456789abcdef",
			"ALLOW_INSECURE_COOKIES": "true",
		})
		require.NoError(t, err)
		return cfg
	}
	t.Setenv("DATABASE_URL", databaseURL)
	cfg, err := config.LoadStorage()
	require.NoError(t, err)
	return cfg
}
