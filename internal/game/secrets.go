package game

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/models"
)

// applyEvidence reveals the suspect's secrets that are keyed to the evidence and recomputes progress.
//
// Secrets that were revealed before are skipped, so presenting the same evidence twice reveals nothing new. Evidence
// that matches no secret is not an error. The newly revealed secrets are returned.
func (e *Engine) applyEvidence(
	ctx context.Context,
	tx *sqlx.Tx,
	sessionID int64,
	suspectID int64,
	evidenceID int64,
) ([]models.RevealedSecret, models.SuspectState, error) {
	var (
		state   models.SuspectState
		secrets []models.Secret
		err     error
	)
	if state, err = e.sessions.State(ctx, tx, sessionID, suspectID); err != nil {
		return nil, state, err
	}
	if secrets, err = e.scenarios.SecretsFor(ctx, tx, suspectID, evidenceID); err != nil {
		return nil, state, err
	}

	revealedNow := []models.RevealedSecret{}
	var newIDs []int64
	for _, secret := range secrets {
		if state.Revealed.Contains(secret.ID) {
			continue
		}
		newIDs = append(newIDs, secret.ID)
		revealedNow = append(revealedNow, models.RevealedSecret{
			ID:      secret.ID,
			Content: secret.Content,
			IsCore:  secret.IsCore,
		})
	}
	state.Revealed = state.Revealed.With(newIDs...)

	if state, err = e.saveProgress(ctx, tx, state); err != nil {
		return nil, state, err
	}
	return revealedNow, state, nil
}

// refreshProgress recomputes progress without revealing anything. A suspect without core secrets closes on the
// first turn against them.
func (e *Engine) refreshProgress(
	ctx context.Context,
	tx *sqlx.Tx,
	sessionID int64,
	suspectID int64,
) (models.SuspectState, error) {
	state, err := e.sessions.State(ctx, tx, sessionID, suspectID)
	if err != nil {
		return state, err
	}
	return e.saveProgress(ctx, tx, state)
}

func (e *Engine) saveProgress(ctx context.Context, tx *sqlx.Tx, state models.SuspectState) (models.SuspectState, error) {
	coreIDs, err := e.scenarios.CoreSecretIDs(ctx, tx, state.SuspectID)
	if err != nil {
		return state, err
	}
	state.Progress = progress(coreIDs, state.Revealed)
	state.Closed = state.Closed || state.Progress >= 1
	if err = e.sessions.SaveState(ctx, tx, state); err != nil {
		return state, err
	}
	return state, nil
}

// progress is the share of core secrets that has been revealed. It is 1 when there are no core secrets.
func progress(coreIDs []int64, revealed models.SecretSet) float64 {
	if len(coreIDs) == 0 {
		return 1
	}
	var count int
	for _, id := range coreIDs {
		if revealed.Contains(id) {
			count++
		}
	}
	return float64(count) / float64(len(coreIDs))
}
