package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/sqlite"
	"github.com/myrjola/interrogation/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("INTERROGATION_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "INTERROGATION_SQLITE_URL not set")
		os.Exit(1)
	}

	// Opening the database migrates a copy of production data to the current schema.
	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	var counts struct {
		Scenarios int `db:"scenarios"`
		Sessions  int `db:"sessions"`
	}
	if err = db.ReadOnly.GetContext(ctx, &counts, `SELECT
		(SELECT COUNT(*) FROM scenarios) AS scenarios,
		(SELECT COUNT(*) FROM sessions)  AS sessions`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting rows", errors.SlogError(err))
		os.Exit(1)
	}
	if counts.Scenarios == 0 {
		logger.LogAttrs(ctx, slog.LevelError, "no scenarios found, something is likely wrong")
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "row counts",
		slog.Int("scenarios", counts.Scenarios), slog.Int("sessions", counts.Sessions))

	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
