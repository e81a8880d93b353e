package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
)

// UsageRepository is the evidence usage ledger.
type UsageRepository struct {
	logger *slog.Logger
}

func NewUsageRepository(logger *slog.Logger) *UsageRepository {
	return &UsageRepository{
		logger: logger.With("source", "UsageRepository"),
	}
}

// Record upserts the usage of evidence against a suspect.
//
// A new record keeps effective as is. An existing record keeps its first use time and ORs effective into
// was_effective so that the flag never goes back to false.
func (r *UsageRepository) Record(
	ctx context.Context,
	tx sqlx.ExecerContext,
	sessionID int64,
	suspectID int64,
	evidenceID int64,
	effective bool,
	now time.Time,
) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO evidence_usages
    (session_id, suspect_id, evidence_id, first_used_at, was_effective)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (session_id, suspect_id, evidence_id)
    DO UPDATE SET was_effective = was_effective OR excluded.was_effective`,
		sessionID, suspectID, evidenceID, now, effective); err != nil {
		return errors.Wrap(err, "upsert evidence usage",
			slog.Int64("session_id", sessionID),
			slog.Int64("suspect_id", suspectID),
			slog.Int64("evidence_id", evidenceID))
	}
	return nil
}

// Get returns the usage record. The boolean is false when the evidence was never shown to the suspect.
func (r *UsageRepository) Get(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
	evidenceID int64,
) (models.EvidenceUsage, bool, error) {
	usages := []models.EvidenceUsage{}
	if err := sqlx.SelectContext(ctx, q, &usages, `SELECT session_id, suspect_id, evidence_id, first_used_at,
       was_effective
FROM evidence_usages
WHERE session_id = ? AND suspect_id = ? AND evidence_id = ?`, sessionID, suspectID, evidenceID); err != nil {
		return models.EvidenceUsage{}, false, errors.Wrap(err, "select evidence usage",
			slog.Int64("session_id", sessionID), slog.Int64("evidence_id", evidenceID))
	}
	if len(usages) == 0 {
		return models.EvidenceUsage{}, false, nil
	}
	return usages[0], true, nil
}

// WasUsed reports whether the evidence was presented to any suspect during the session.
func (r *UsageRepository) WasUsed(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	evidenceID int64,
) (bool, error) {
	var used bool
	if err := sqlx.GetContext(ctx, q, &used, `SELECT EXISTS (SELECT 1
              FROM evidence_usages
              WHERE session_id = ? AND evidence_id = ?)`, sessionID, evidenceID); err != nil {
		return false, errors.Wrap(err, "select evidence used",
			slog.Int64("session_id", sessionID), slog.Int64("evidence_id", evidenceID))
	}
	return used, nil
}

// WasEffective reports whether presenting the evidence to the suspect ever revealed a secret during the session.
func (r *UsageRepository) WasEffective(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
	evidenceID int64,
) (bool, error) {
	usage, found, err := r.Get(ctx, q, sessionID, suspectID, evidenceID)
	if err != nil {
		return false, err
	}
	return found && usage.WasEffective, nil
}
