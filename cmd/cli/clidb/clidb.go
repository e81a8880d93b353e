// Package clidb opens the database the CLI commands work on.
package clidb

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/myrjola/interrogation/internal/config"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/logging"
	"github.com/myrjola/interrogation/internal/sqlite"
)

// NewLogger logs to w at info level, keeping stdout free for command output.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	})))
}

// Open connects to the database configured in the process environment and synchronizes its schema.
func Open(ctx context.Context, logger *slog.Logger) (*sqlite.Database, error) {
	cfg, err := config.Parse(config.Environ(os.Environ()))
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("sqlite_url", cfg.SqliteURL))
	}
	return db, nil
}
