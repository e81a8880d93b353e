package game

import (
	"context"
	"log/slog"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/logging"
	"github.com/myrjola/interrogation/internal/models"
)

// AccuseInput names the accused suspect and the evidence cited against them.
type AccuseInput struct {
	SessionID   int64
	SuspectID   int64
	EvidenceIDs []int64
}

// caseFacts are the static scenario facts a verdict is judged against.
type caseFacts struct {
	culpritID           int64
	requiredEvidenceIDs []int64
}

// Accuse finishes the session with an accusation.
//
// The accusation may only cite evidence that was presented during the session, regardless of whether the accused
// is the culprit. A session can be finished once. Any later accusation fails with a rule violation and leaves the
// stored verdict untouched.
func (e *Engine) Accuse(ctx context.Context, in AccuseInput) (models.Verdict, error) {
	var verdict models.Verdict
	if in.SessionID <= 0 || in.SuspectID <= 0 {
		return verdict, errors.Wrap(models.ErrInvalidInput, "session and suspect ids must be positive")
	}
	provided := dedupe(in.EvidenceIDs)
	if len(provided) > 0 && provided[0] <= 0 {
		return verdict, errors.Wrap(models.ErrInvalidInput, "evidence ids must be positive")
	}

	ctx = logging.WithAttrs(ctx, slog.Int64("session_id", in.SessionID))
	err := e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		verdict, err = e.accuse(ctx, tx, in.SessionID, in.SuspectID, provided)
		return err
	})
	if err != nil {
		return models.Verdict{}, errors.Wrap(err, "accuse")
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "session finished",
		slog.String("result", string(verdict.Result)),
		slog.Int("missing_evidence", len(verdict.MissingEvidenceIDs)))
	return verdict, nil
}

func (e *Engine) accuse(
	ctx context.Context,
	tx *sqlx.Tx,
	sessionID int64,
	suspectID int64,
	provided []int64,
) (models.Verdict, error) {
	var (
		verdict  models.Verdict
		session  models.Session
		scenario models.Scenario
		required []int64
		err      error
	)

	if session, err = e.sessions.Get(ctx, tx, sessionID); err != nil {
		return verdict, err
	}
	if err = ensureInProgress(session); err != nil {
		return verdict, err
	}
	if _, err = e.scenarios.Suspect(ctx, tx, session.ScenarioID, suspectID); err != nil {
		return verdict, err
	}
	for _, evidenceID := range provided {
		if _, err = e.scenarios.EvidenceByID(ctx, tx, session.ScenarioID, evidenceID); err != nil {
			return verdict, err
		}
	}
	for _, evidenceID := range provided {
		var used bool
		if used, err = e.wasUsed(ctx, tx, session.ID, evidenceID); err != nil {
			return verdict, err
		}
		if !used {
			return verdict, errors.Wrap(models.ErrRuleViolation, "evidence not used during the session",
				slog.Int64("evidence_id", evidenceID))
		}
	}

	if scenario, err = e.scenarios.Get(ctx, tx, session.ScenarioID); err != nil {
		return verdict, err
	}
	if scenario.CulpritSuspectID == nil {
		return verdict, errors.New("scenario has no culprit", slog.Int64("scenario_id", scenario.ID))
	}
	if required, err = e.scenarios.RequiredEvidenceIDs(ctx, tx, scenario.ID); err != nil {
		return verdict, err
	}

	verdict = evaluateVerdict(caseFacts{
		culpritID:           *scenario.CulpritSuspectID,
		requiredEvidenceIDs: required,
	}, suspectID, provided)
	verdict.SessionID = session.ID

	var finalized bool
	if finalized, err = e.sessions.Finalize(ctx, tx, session.ID, suspectID, provided, verdict.Result,
		e.opts.Now()); err != nil {
		return verdict, err
	}
	if !finalized {
		return verdict, errors.Wrap(models.ErrRuleViolation, "session already finished")
	}
	return verdict, nil
}

// evaluateVerdict judges an accusation. provided must be deduplicated.
func evaluateVerdict(facts caseFacts, chosenSuspectID int64, provided []int64) models.Verdict {
	required := slices.Clone(facts.requiredEvidenceIDs)
	slices.Sort(required)
	verdict := models.Verdict{
		Status:              models.SessionStatusFinished,
		ChosenSuspectID:     chosenSuspectID,
		CulpritID:           facts.culpritID,
		RequiredEvidenceIDs: required,
		MissingEvidenceIDs:  []int64{},
	}

	if chosenSuspectID != facts.culpritID {
		verdict.Result = models.VerdictResultWrong
		verdict.MissingEvidenceIDs = slices.Clone(required)
		verdict.Description = "You accused the wrong suspect. The real culprit walks free."
		return verdict
	}

	for _, id := range required {
		if !slices.Contains(provided, id) {
			verdict.MissingEvidenceIDs = append(verdict.MissingEvidenceIDs, id)
		}
	}
	if len(verdict.MissingEvidenceIDs) == 0 {
		verdict.Result = models.VerdictResultCorrect
		verdict.Description = "You identified the culprit and backed the accusation with all the key evidence."
		return verdict
	}
	verdict.Result = models.VerdictResultPartial
	verdict.Description = "You identified the culprit, but the accusation lacks key evidence."
	return verdict
}

// dedupe returns the distinct ids in ascending order.
func dedupe(ids []int64) []int64 {
	distinct := slices.Clone(ids)
	slices.Sort(distinct)
	return slices.Compact(distinct)
}
