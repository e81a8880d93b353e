// Package game implements the interrogation rules: sessions and suspect progress, secret revelation, the evidence
// usage ledger, interrogation turns and the verdict.
//
// Every mutating operation runs as one transaction on the single write connection. A failure anywhere, including the
// reply generator, leaves the session exactly as it was.
package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/interrogation/internal/models"
	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/sqlite"
)

// ReplyGenerator voices a suspect. It only ever sees what the player is allowed to know.
type ReplyGenerator interface {
	Generate(ctx context.Context, rc models.ReplyContext, player models.PlayerMessage) (string, error)
}

const (
	// MaxMessageLength limits the player's message in runes.
	MaxMessageLength   = 2000
	defaultHistory     = 10
	defaultReplyBudget = 20 * time.Second
)

// Options tunes the engine. Zero values fall back to the defaults.
type Options struct {
	// HistoryLimit is the number of earlier messages the reply generator sees.
	HistoryLimit int
	// ReplyTimeout bounds a single reply generation. Hitting it rolls the turn back like any other failure.
	ReplyTimeout time.Duration
	// Now is the clock. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Engine runs the interrogation game on top of the database.
type Engine struct {
	db        *sqlite.Database
	scenarios *repositories.ScenarioRepository
	sessions  *repositories.SessionRepository
	chat      *repositories.ChatRepository
	usages    *repositories.UsageRepository
	generator ReplyGenerator
	logger    *slog.Logger
	opts      Options
}

// NewEngine creates an engine that voices suspects with generator.
func NewEngine(db *sqlite.Database, generator ReplyGenerator, logger *slog.Logger, opts Options) *Engine {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistory
	}
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = defaultReplyBudget
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		db:        db,
		scenarios: repositories.NewScenarioRepository(logger),
		sessions:  repositories.NewSessionRepository(logger),
		chat:      repositories.NewChatRepository(logger),
		usages:    repositories.NewUsageRepository(logger),
		generator: generator,
		logger:    logger.With("source", "Engine"),
		opts:      opts,
	}
}
