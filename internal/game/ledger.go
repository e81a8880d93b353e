package game

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// recordUsage notes that evidence was presented to a suspect. An effective presentation marks the usage effective
// for good.
func (e *Engine) recordUsage(
	ctx context.Context,
	tx *sqlx.Tx,
	sessionID int64,
	suspectID int64,
	evidenceID int64,
	effective bool,
) error {
	return e.usages.Record(ctx, tx, sessionID, suspectID, evidenceID, effective, e.opts.Now())
}

// wasUsed reports whether the evidence was presented to any suspect during the session.
func (e *Engine) wasUsed(ctx context.Context, q sqlx.QueryerContext, sessionID, evidenceID int64) (bool, error) {
	return e.usages.WasUsed(ctx, q, sessionID, evidenceID)
}

// wasEffective reports whether presenting the evidence to the suspect revealed a secret before.
func (e *Engine) wasEffective(
	ctx context.Context,
	q sqlx.QueryerContext,
	sessionID int64,
	suspectID int64,
	evidenceID int64,
) (bool, error) {
	return e.usages.WasEffective(ctx, q, sessionID, suspectID, evidenceID)
}
