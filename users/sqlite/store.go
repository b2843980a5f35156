// Package sqlite provides a SQLite-backed user directory.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/internal/migrate"
	"github.com/jrsteele09/keyflow/users"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ users.UserRepo = (*Store)(nil)

// Store persists users in SQLite
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the database at path and applies embedded migrations
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	s := &Store{sqlDB: sqlDB, now: time.Now}
	if err := s.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies pending migrations
func (s *Store) Migrate(ctx context.Context) error {
	return migrate.Up(ctx, s.sqlDB, migrations, "sqlite3")
}

// Close closes the SQLite handle
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const userColumns = `id, github_id, login, name, avatar_url, email, role, created_at, updated_at`

func (s *Store) UpsertByExternalID(ctx context.Context, profile users.Profile) (*users.User, error) {
	now := toMillis(s.now())
	row := s.sqlDB.QueryRowContext(ctx, `
INSERT INTO users (id, github_id, login, name, avatar_url, email, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (github_id) DO UPDATE SET
    login = excluded.login,
    name = excluded.name,
    avatar_url = excluded.avatar_url,
    email = COALESCE(excluded.email, users.email),
    updated_at = excluded.updated_at
RETURNING `+userColumns,
		uuid.New().String(),
		profile.ID,
		profile.Login,
		profile.Name,
		profile.AvatarURL,
		profile.NormalizedEmail(),
		string(users.RoleUser),
		now,
		now,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert user %d: %w", profile.ID, err)
	}
	return user, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*users.User, error) {
	var (
		u                    users.User
		createdAt, updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.GitHubID, &u.Login, &u.Name, &u.AvatarURL, &u.Email, &u.Role, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return &u, nil
}
