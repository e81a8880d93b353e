package game

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/models"
)

type replyInput struct {
	scenario     models.Scenario
	suspect      models.Suspect
	state        models.SuspectState
	closedBefore bool
	revealedNow  []models.RevealedSecret
	effect       models.EvidenceEffect
	evidence     *models.Evidence
	playerMsgID  int64
}

// buildReplyContext collects what the reply generator may know. Secrets enter only through the revealed set of the
// suspect state.
func (e *Engine) buildReplyContext(ctx context.Context, tx *sqlx.Tx, in replyInput) (models.ReplyContext, error) {
	var (
		rc  models.ReplyContext
		err error
	)
	if rc.Revealed, err = e.scenarios.RevealedSecrets(ctx, tx, in.suspect.ID, in.state.Revealed); err != nil {
		return rc, err
	}
	if rc.PressurePoints, err = e.chat.PressurePoints(ctx, tx, in.state.SessionID, in.suspect.ID); err != nil {
		return rc, err
	}
	if rc.History, err = e.chat.Recent(ctx, tx, in.state.SessionID, in.suspect.ID, in.playerMsgID,
		e.opts.HistoryLimit); err != nil {
		return rc, err
	}

	rc.CaseSummary = in.scenario.CaseSummary
	rc.Suspect = models.SuspectProfile{
		ID:               in.suspect.ID,
		Name:             in.suspect.Name,
		Backstory:        in.suspect.Backstory,
		InitialStatement: in.suspect.InitialStatement,
	}
	rc.Progress = in.state.Progress
	rc.Closed = in.state.Closed
	rc.FinalPhrase = in.suspect.FinalPhrase
	if rc.FinalPhrase == "" {
		rc.FinalPhrase = models.DefaultFinalPhrase
	}
	rc.RevealedNow = in.revealedNow
	rc.Rules = models.RuleFlags{
		EvidencePresented: in.evidence != nil,
		Effect:            in.effect,
		// A suspect that confesses its last secret this turn still gets to say it.
		MustRefuse: in.closedBefore || (in.state.Closed && len(in.revealedNow) == 0),
	}
	return rc, nil
}
