// Package migrate applies embedded goose migrations for the user stores.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// Dir is the directory inside each store's embedded filesystem holding its migrations
const Dir = "migrations"

// goose keeps its base filesystem and dialect in package state
var gooseMu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Up applies every pending migration under Dir in fsys using dialect ("pgx" or "sqlite3")
func Up(ctx context.Context, db *sql.DB, fsys fs.FS, dialect string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(zerologGoose{})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, Dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// zerologGoose routes goose output through the global zerolog logger
type zerologGoose struct{}

func (zerologGoose) Printf(format string, v ...interface{}) {
	log.Info().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (zerologGoose) Fatalf(format string, v ...interface{}) {
	log.Fatal().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
