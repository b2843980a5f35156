// Package postgres provides a PostgreSQL-backed user directory.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	apperrors "github.com/jrsteele09/keyflow/internal/errors"
	"github.com/jrsteele09/keyflow/internal/migrate"
	"github.com/jrsteele09/keyflow/users"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ users.UserRepo = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects using the pgx driver and verifies the connection
func Open(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db.SetMaxOpenConns(5)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return NewPostgresRepository(db), nil
}

// RunMigrations applies the embedded schema migrations
func (r *PostgresRepository) RunMigrations(ctx context.Context) error {
	return migrate.Up(ctx, r.db, migrations, "pgx")
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

func (r *PostgresRepository) UpsertByExternalID(ctx context.Context, profile users.Profile) (*users.User, error) {
	query :=
		`INSERT INTO users (id, github_id, login, name, avatar_url, email)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (github_id) DO UPDATE
		 SET login = EXCLUDED.login,
		     name = EXCLUDED.name,
		     avatar_url = EXCLUDED.avatar_url,
		     email = COALESCE(EXCLUDED.email, users.email),
		     updated_at = now()
		 RETURNING id, github_id, login, name, avatar_url, email, role, created_at, updated_at
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		uuid.New(), profile.ID, profile.Login, profile.Name, profile.AvatarURL, profile.NormalizedEmail()))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	query :=
		`SELECT id, github_id, login, name, avatar_url, email, role, created_at, updated_at FROM users
		 WHERE id = $1
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*users.User, error) {
	u := &users.User{}
	err := row.Scan(&u.ID, &u.GitHubID, &u.Login, &u.Name, &u.AvatarURL, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
