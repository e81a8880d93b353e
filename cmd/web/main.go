package main

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/myrjola/interrogation/internal/ai"
	"github.com/myrjola/interrogation/internal/config"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/game"
	"github.com/myrjola/interrogation/internal/logging"
	"github.com/myrjola/interrogation/internal/pprofserver"
	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/scenario"
	"github.com/myrjola/interrogation/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

const optimizeInterval = 6 * time.Hour

type application struct {
	logger *slog.Logger
	engine *game.Engine
	db     *sqlite.Database
	cfg    config.Config
}

func run(ctx context.Context, logger *slog.Logger, environ map[string]string) error {
	cfg, err := config.Parse(environ)
	if err != nil {
		return errors.Wrap(err, "parse config")
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("sqlite_url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelError, "failed to close database",
				errors.SlogError(closeErr))
		}
	}()

	loader := scenario.NewLoader(db, repositories.NewScenarioRepository(logger), logger)
	var loaded []int64
	if loaded, err = loader.LoadDir(ctx, cfg.ScenarioDir); err != nil {
		return errors.Wrap(err, "bootstrap scenarios", slog.String("dir", cfg.ScenarioDir))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "scenarios ready", slog.Int("count", len(loaded)))

	app := application{
		logger: logger,
		engine: game.NewEngine(db, newReplyGenerator(cfg, logger), logger, game.Options{
			HistoryLimit: cfg.HistoryLimit,
			ReplyTimeout: cfg.ReplyTimeout,
			Now:          nil,
		}),
		db:  db,
		cfg: cfg,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.configureAndStartServer(gctx, cfg.Addr)
	})
	g.Go(func() error {
		db.RunOptimizer(gctx, optimizeInterval)
		return nil
	})
	if cfg.PprofAddr != "" {
		g.Go(func() error {
			return pprofserver.Run(gctx, cfg.PprofAddr, logger)
		})
	}
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "run")
	}
	return nil
}

func newReplyGenerator(cfg config.Config, logger *slog.Logger) game.ReplyGenerator {
	if cfg.ReplyProvider == config.ReplyProviderOpenAI {
		return ai.NewClient(ai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, logger)
	}
	return ai.Scripted{}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))

	// .env is optional, the real environment wins over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, config.Environ(os.Environ())); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
