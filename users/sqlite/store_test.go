package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/internal/utils"
	"github.com/jrsteele09/keyflow/users"
	"github.com/jrsteele09/keyflow/users/sqlite"
	"github.com/stretchr/testify/require"
)

func setupTestFixture(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "keyflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyflow.db")
	ctx := context.Background()

	first, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	u, err := first.UpsertByExternalID(ctx, users.Profile{ID: 1, Login: "octocat"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()
	got, err := second.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "octocat", got.Login)
}

func TestUpsertByExternalID(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user", func(t *testing.T) {
		store := setupTestFixture(t)
		u, err := store.UpsertByExternalID(ctx, users.Profile{
			ID:        42,
			Login:     "octocat",
			Name:      utils.Ptr("The Octocat"),
			AvatarURL: utils.Ptr("https://avatars.example/u/42"),
			Email:     utils.Ptr("OctoCat@GitHub.com"),
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, u.ID)
		require.Equal(t, int64(42), u.GitHubID)
		require.Equal(t, "The Octocat", utils.Value(u.Name))
		require.Equal(t, "octocat@github.com", utils.Value(u.Email))
		require.Equal(t, users.RoleUser, u.Role)
		require.False(t, u.CreatedAt.IsZero())
	})

	t.Run("repeat login updates in place", func(t *testing.T) {
		store := setupTestFixture(t)
		first, err := store.UpsertByExternalID(ctx, users.Profile{ID: 7, Login: "before", Email: utils.Ptr("kept@example.com")})
		require.NoError(t, err)

		second, err := store.UpsertByExternalID(ctx, users.Profile{ID: 7, Login: "after"})
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.Equal(t, "after", second.Login)
		require.Nil(t, second.Name)
		require.Equal(t, "kept@example.com", utils.Value(second.Email))
		require.Equal(t, first.CreatedAt, second.CreatedAt)
	})

	t.Run("new email replaces old", func(t *testing.T) {
		store := setupTestFixture(t)
		_, err := store.UpsertByExternalID(ctx, users.Profile{ID: 8, Login: "mover", Email: utils.Ptr("old@example.com")})
		require.NoError(t, err)

		u, err := store.UpsertByExternalID(ctx, users.Profile{ID: 8, Login: "mover", Email: utils.Ptr("New@Example.com")})
		require.NoError(t, err)
		require.Equal(t, "new@example.com", utils.Value(u.Email))
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	store := setupTestFixture(t)

	_, err := store.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	u, err := store.UpsertByExternalID(ctx, users.Profile{ID: 9, Login: "lookup"})
	require.NoError(t, err)

	got, err := store.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "lookup", got.Login)
	require.Equal(t, u.UpdatedAt, got.UpdatedAt)
}
