package repositories

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/models"
)

// ChatRepository is the append-only interrogation log.
type ChatRepository struct {
	logger *slog.Logger
}

func NewChatRepository(logger *slog.Logger) *ChatRepository {
	return &ChatRepository{
		logger: logger.With("source", "ChatRepository"),
	}
}

// Append adds a message to the log and returns it with its id.
func (r *ChatRepository) Append(
	ctx context.Context,
	tx sqlx.ExecerContext,
	msg models.ChatMessage,
	now time.Time,
) (models.ChatMessage, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO chat_messages (session_id, suspect_id, sender, text, evidence_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`, msg.SessionID, msg.SuspectID, msg.Sender, msg.Text, msg.EvidenceID, now)
	if err != nil {
		return msg, errors.Wrap(err, "insert chat message",
			slog.Int64("session_id", msg.SessionID), slog.Int64("suspect_id", msg.SuspectID))
	}
	if msg.ID, err = lastInsertID(res); err != nil {
		return msg, err
	}
	msg.CreatedAt = now
	return msg, nil
}

// List returns the whole conversation with a suspect in insertion order.
func (r *ChatRepository) List(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	if err := sqlx.SelectContext(ctx, q, &messages, `SELECT id, session_id, suspect_id, sender, text, evidence_id,
       created_at
FROM chat_messages
WHERE session_id = ? AND suspect_id = ?
ORDER BY id`, sessionID, suspectID); err != nil {
		return nil, errors.Wrap(err, "select chat messages",
			slog.Int64("session_id", sessionID), slog.Int64("suspect_id", suspectID))
	}
	return messages, nil
}

// Recent returns at most limit messages written before message beforeID, oldest first.
func (r *ChatRepository) Recent(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
	beforeID int64,
	limit int,
) ([]models.ChatMessage, error) {
	messages := []models.ChatMessage{}
	if limit <= 0 {
		return messages, nil
	}
	if err := sqlx.SelectContext(ctx, q, &messages, `SELECT id, session_id, suspect_id, sender, text, evidence_id,
       created_at
FROM chat_messages
WHERE session_id = ? AND suspect_id = ? AND id < ?
ORDER BY id DESC
LIMIT ?`, sessionID, suspectID, beforeID, limit); err != nil {
		return nil, errors.Wrap(err, "select recent chat messages",
			slog.Int64("session_id", sessionID), slog.Int64("suspect_id", suspectID))
	}
	slices.Reverse(messages)
	return messages, nil
}

// PressurePoints returns the player's messages to a suspect that presented evidence, oldest first.
func (r *ChatRepository) PressurePoints(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
) ([]models.PressurePoint, error) {
	var rows []struct {
		EvidenceID   int64  `db:"evidence_id"`
		EvidenceName string `db:"evidence_name"`
		Text         string `db:"text"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, `SELECT m.evidence_id, e.name AS evidence_name, m.text
FROM chat_messages m
JOIN evidence e ON e.id = m.evidence_id
WHERE m.session_id = ? AND m.suspect_id = ? AND m.sender = ?
ORDER BY m.id`, sessionID, suspectID, models.SenderPlayer); err != nil {
		return nil, errors.Wrap(err, "select pressure points",
			slog.Int64("session_id", sessionID), slog.Int64("suspect_id", suspectID))
	}
	points := make([]models.PressurePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, models.PressurePoint{
			EvidenceID:   row.EvidenceID,
			EvidenceName: row.EvidenceName,
			Text:         row.Text,
		})
	}
	return points, nil
}
