package game

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
)

// Scenarios lists the playable scenarios.
func (e *Engine) Scenarios(ctx context.Context) ([]models.ScenarioSummary, error) {
	scenarios, err := e.scenarios.List(ctx, e.db.ReadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list scenarios")
	}
	return scenarios, nil
}

// CreateSession starts a playthrough of a scenario. Every suspect starts open with zero progress.
func (e *Engine) CreateSession(ctx context.Context, scenarioID int64) (models.Overview, error) {
	if scenarioID <= 0 {
		return models.Overview{}, errors.Wrap(models.ErrInvalidInput, "scenario id must be positive")
	}
	var sessionID int64
	err := e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if _, err = e.scenarios.Get(ctx, tx, scenarioID); err != nil {
			return err
		}
		sessionID, err = e.sessions.Create(ctx, tx, scenarioID, e.opts.Now())
		return err
	})
	if err != nil {
		return models.Overview{}, errors.Wrap(err, "create session", slog.Int64("scenario_id", scenarioID))
	}
	e.logger.LogAttrs(ctx, slog.LevelInfo, "session created",
		slog.Int64("session_id", sessionID), slog.Int64("scenario_id", scenarioID))
	return e.Overview(ctx, sessionID)
}

// Overview aggregates the session, its scenario summary and the progress of every suspect.
func (e *Engine) Overview(ctx context.Context, sessionID int64) (models.Overview, error) {
	var (
		overview models.Overview
		session  models.Session
		scenario models.Scenario
		err      error
	)
	if session, err = e.sessions.Get(ctx, e.db.ReadOnly, sessionID); err != nil {
		return overview, errors.Wrap(err, "get overview")
	}
	if scenario, err = e.scenarios.Get(ctx, e.db.ReadOnly, session.ScenarioID); err != nil {
		return overview, errors.Wrap(err, "get overview")
	}
	if overview.Suspects, err = e.sessions.Snapshots(ctx, e.db.ReadOnly, sessionID); err != nil {
		return overview, errors.Wrap(err, "get overview")
	}
	overview.SessionID = session.ID
	overview.Status = session.Status
	overview.Result = session.Result
	overview.Scenario = models.ScenarioSummary{
		ID:          scenario.ID,
		Title:       scenario.Title,
		Description: scenario.Description,
		Objective:   models.ObjectiveFindCulprit,
	}
	return overview, nil
}

// Suspects lists the suspects of a session with their progress and closed flag.
func (e *Engine) Suspects(ctx context.Context, sessionID int64) ([]models.SuspectSnapshot, error) {
	if _, err := e.sessions.Get(ctx, e.db.ReadOnly, sessionID); err != nil {
		return nil, errors.Wrap(err, "list suspects")
	}
	snapshots, err := e.sessions.Snapshots(ctx, e.db.ReadOnly, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list suspects")
	}
	return snapshots, nil
}

// ChatHistory returns the conversation with a suspect in the order it happened.
func (e *Engine) ChatHistory(ctx context.Context, sessionID, suspectID int64) ([]models.ChatMessage, error) {
	session, err := e.sessions.Get(ctx, e.db.ReadOnly, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "chat history")
	}
	if _, err = e.scenarios.Suspect(ctx, e.db.ReadOnly, session.ScenarioID, suspectID); err != nil {
		return nil, errors.Wrap(err, "chat history")
	}
	messages, err := e.chat.List(ctx, e.db.ReadOnly, sessionID, suspectID)
	if err != nil {
		return nil, errors.Wrap(err, "chat history")
	}
	return messages, nil
}

// Evidence lists the evidence the player can present. Whether evidence is required stays hidden.
func (e *Engine) Evidence(ctx context.Context, sessionID int64) ([]models.PublicEvidence, error) {
	session, err := e.sessions.Get(ctx, e.db.ReadOnly, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list evidence")
	}
	evidence, err := e.scenarios.PublicEvidence(ctx, e.db.ReadOnly, session.ScenarioID)
	if err != nil {
		return nil, errors.Wrap(err, "list evidence")
	}
	return evidence, nil
}

// ensureInProgress fails with a rule violation once the verdict has been given.
func ensureInProgress(session models.Session) error {
	if session.Finished() {
		return errors.Wrap(models.ErrRuleViolation, "session already finished", slog.Int64("session_id", session.ID))
	}
	return nil
}
