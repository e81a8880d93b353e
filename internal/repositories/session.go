package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
)

// SessionRepository persists sessions and the per-suspect interrogation state.
type SessionRepository struct {
	logger *slog.Logger
}

func NewSessionRepository(logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		logger: logger.With("source", "SessionRepository"),
	}
}

// Create inserts an in-progress session together with a fresh state for every suspect of the scenario.
func (r *SessionRepository) Create(
	ctx context.Context,
	tx sqlx.ExecerContext,
	scenarioID int64,
	now time.Time,
) (int64, error) {
	var (
		res       sql.Result
		sessionID int64
		err       error
	)
	if res, err = tx.ExecContext(ctx, `INSERT INTO sessions (scenario_id, status, created_at) VALUES (?, ?, ?)`,
		scenarioID, models.SessionStatusInProgress, now); err != nil {
		return 0, errors.Wrap(err, "insert session", slog.Int64("scenario_id", scenarioID))
	}
	if sessionID, err = lastInsertID(res); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO session_suspect_states
    (session_id, suspect_id, revealed_secret_ids, progress, closed)
SELECT ?, id, '[]', 0.0, 0
FROM suspects
WHERE scenario_id = ?`, sessionID, scenarioID); err != nil {
		return 0, errors.Wrap(err, "insert suspect states", slog.Int64("session_id", sessionID))
	}
	return sessionID, nil
}

func (r *SessionRepository) Get(ctx context.Context, q sqlx.QueryerContext, id int64) (models.Session, error) {
	var session models.Session
	err := sqlx.GetContext(ctx, q, &session, `SELECT id, scenario_id, status, created_at, chosen_suspect_id,
       chosen_evidence_ids, result, finished_at
FROM sessions
WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return session, errors.Wrap(models.ErrNotFound, "session not found", slog.Int64("session_id", id))
	}
	if err != nil {
		return session, errors.Wrap(err, "select session", slog.Int64("session_id", id))
	}
	return session, nil
}

// Finalize stores the verdict and finishes the session.
//
// The update only matches in-progress sessions. It returns false when the session had already finished, which makes
// the transition one-shot even if the caller's status check raced.
func (r *SessionRepository) Finalize(
	ctx context.Context,
	tx sqlx.ExecerContext,
	sessionID int64,
	chosenSuspectID int64,
	chosenEvidenceIDs []int64,
	result models.VerdictResult,
	now time.Time,
) (bool, error) {
	var (
		res      sql.Result
		affected int64
		err      error
	)
	if res, err = tx.ExecContext(ctx, `UPDATE sessions
SET status              = ?,
    chosen_suspect_id   = ?,
    chosen_evidence_ids = ?,
    result              = ?,
    finished_at         = ?
WHERE id = ? AND status = ?`,
		models.SessionStatusFinished, chosenSuspectID, models.IDList(chosenEvidenceIDs), result, now,
		sessionID, models.SessionStatusInProgress); err != nil {
		return false, errors.Wrap(err, "finalize session", slog.Int64("session_id", sessionID))
	}
	if affected, err = res.RowsAffected(); err != nil {
		return false, errors.Wrap(err, "rows affected")
	}
	if affected == 1 {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "session finalized",
			slog.Int64("session_id", sessionID), slog.String("result", string(result)))
	}
	return affected == 1, nil
}

// State returns the interrogation state of a suspect within a session.
func (r *SessionRepository) State(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
) (models.SuspectState, error) {
	var state models.SuspectState
	err := sqlx.GetContext(ctx, q, &state, `SELECT session_id, suspect_id, revealed_secret_ids, progress, closed
FROM session_suspect_states
WHERE session_id = ? AND suspect_id = ?`, sessionID, suspectID)
	if errors.Is(err, sql.ErrNoRows) {
		return state, errors.Wrap(models.ErrNotFound, "suspect state not found",
			slog.Int64("session_id", sessionID), slog.Int64("suspect_id", suspectID))
	}
	if err != nil {
		return state, errors.Wrap(err, "select suspect state",
			slog.Int64("session_id", sessionID), slog.Int64("suspect_id", suspectID))
	}
	return state, nil
}

// SaveState overwrites the revealed set, progress and closed flag of a suspect state.
func (r *SessionRepository) SaveState(ctx context.Context, tx sqlx.ExecerContext, state models.SuspectState) error {
	var (
		res      sql.Result
		affected int64
		err      error
	)
	if res, err = tx.ExecContext(ctx, `UPDATE session_suspect_states
SET revealed_secret_ids = ?,
    progress            = ?,
    closed              = ?
WHERE session_id = ? AND suspect_id = ?`,
		state.Revealed, state.Progress, state.Closed, state.SessionID, state.SuspectID); err != nil {
		return errors.Wrap(err, "update suspect state",
			slog.Int64("session_id", state.SessionID), slog.Int64("suspect_id", state.SuspectID))
	}
	if affected, err = res.RowsAffected(); err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(models.ErrNotFound, "suspect state not found",
			slog.Int64("session_id", state.SessionID), slog.Int64("suspect_id", state.SuspectID))
	}
	return nil
}

// Snapshots returns every suspect of the session with its progress, in scenario order.
func (r *SessionRepository) Snapshots(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
) ([]models.SuspectSnapshot, error) {
	snapshots := []models.SuspectSnapshot{}
	if err := sqlx.SelectContext(ctx, q, &snapshots, `SELECT s.id, s.name, s.backstory, s.initial_statement,
       st.progress, st.closed
FROM session_suspect_states st
JOIN suspects s ON s.id = st.suspect_id
WHERE st.session_id = ?
ORDER BY s.position`, sessionID); err != nil {
		return nil, errors.Wrap(err, "select suspect snapshots", slog.Int64("session_id", sessionID))
	}
	return snapshots, nil
}
