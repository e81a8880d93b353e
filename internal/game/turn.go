package game

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/logging"
	"github.com/myrjola/interrogation/internal/models"
)

// TurnInput is the player's side of a turn. EvidenceID is nil when no evidence is presented.
type TurnInput struct {
	SessionID  int64
	SuspectID  int64
	Text       string
	EvidenceID *int64
}

// TurnResult holds both persisted messages and what the turn changed for the suspect.
type TurnResult struct {
	PlayerMessage  models.ChatMessage      `json:"player_message"`
	NPCMessage     models.ChatMessage      `json:"npc_message"`
	RevealedNow    []models.RevealedSecret `json:"revealed_secrets"`
	EvidenceEffect models.EvidenceEffect   `json:"evidence_effect"`
	Suspect        models.SuspectSnapshot  `json:"suspect"`
}

func (in TurnInput) validate() error {
	var problems []error
	if in.SessionID <= 0 {
		problems = append(problems, errors.New("session id must be positive"))
	}
	if in.SuspectID <= 0 {
		problems = append(problems, errors.New("suspect id must be positive"))
	}
	if in.EvidenceID != nil && *in.EvidenceID <= 0 {
		problems = append(problems, errors.New("evidence id must be positive"))
	}
	if strings.TrimSpace(in.Text) == "" {
		problems = append(problems, errors.New("message is empty"))
	}
	if utf8.RuneCountInString(in.Text) > MaxMessageLength {
		problems = append(problems, errors.New("message is too long", slog.Int("max_length", MaxMessageLength)))
	}
	if len(problems) > 0 {
		return errors.Join(append([]error{models.ErrInvalidInput}, problems...)...)
	}
	return nil
}

// Turn plays one interrogation turn: the player's message, evidence effects and the suspect's reply.
//
// Everything happens in one transaction. When the reply generator fails or times out, neither message, no revealed
// secret and no evidence usage is persisted.
func (e *Engine) Turn(ctx context.Context, in TurnInput) (TurnResult, error) {
	var result TurnResult
	if err := in.validate(); err != nil {
		return result, errors.Wrap(err, "validate turn")
	}

	ctx = logging.WithAttrs(ctx, slog.Int64("session_id", in.SessionID), slog.Int64("suspect_id", in.SuspectID))
	err := e.db.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = e.turn(ctx, tx, in)
		return err
	})
	if err != nil {
		return TurnResult{}, errors.Wrap(err, "interrogation turn")
	}

	e.logger.LogAttrs(ctx, slog.LevelInfo, "turn played",
		slog.String("evidence_effect", string(result.EvidenceEffect)),
		slog.Int("revealed", len(result.RevealedNow)),
		slog.Float64("progress", result.Suspect.Progress),
		slog.Bool("closed", result.Suspect.Closed))
	return result, nil
}

func (e *Engine) turn(ctx context.Context, tx *sqlx.Tx, in TurnInput) (TurnResult, error) {
	var (
		result   TurnResult
		session  models.Session
		scenario models.Scenario
		suspect  models.Suspect
		evidence *models.Evidence
		before   models.SuspectState
		state    models.SuspectState
		err      error
	)

	if session, err = e.sessions.Get(ctx, tx, in.SessionID); err != nil {
		return result, err
	}
	if err = ensureInProgress(session); err != nil {
		return result, err
	}
	if suspect, err = e.scenarios.Suspect(ctx, tx, session.ScenarioID, in.SuspectID); err != nil {
		return result, err
	}
	if in.EvidenceID != nil {
		var found models.Evidence
		if found, err = e.scenarios.EvidenceByID(ctx, tx, session.ScenarioID, *in.EvidenceID); err != nil {
			return result, err
		}
		evidence = &found
	}
	if before, err = e.sessions.State(ctx, tx, session.ID, suspect.ID); err != nil {
		return result, err
	}

	if result.PlayerMessage, err = e.chat.Append(ctx, tx, models.ChatMessage{ //nolint:exhaustruct // id is generated.
		SessionID:  session.ID,
		SuspectID:  suspect.ID,
		Sender:     models.SenderPlayer,
		Text:       in.Text,
		EvidenceID: in.EvidenceID,
	}, e.opts.Now()); err != nil {
		return result, err
	}

	result.EvidenceEffect = models.EvidenceEffectNone
	result.RevealedNow = []models.RevealedSecret{}
	if evidence != nil {
		var effectiveBefore bool
		if effectiveBefore, err = e.wasEffective(ctx, tx, session.ID, suspect.ID, evidence.ID); err != nil {
			return result, err
		}
		if result.RevealedNow, state, err = e.applyEvidence(ctx, tx, session.ID, suspect.ID, evidence.ID); err != nil {
			return result, err
		}
		if err = e.recordUsage(ctx, tx, session.ID, suspect.ID, evidence.ID, len(result.RevealedNow) > 0); err != nil {
			return result, err
		}
		result.EvidenceEffect = classifyEffect(len(result.RevealedNow), effectiveBefore)
	} else if state, err = e.refreshProgress(ctx, tx, session.ID, suspect.ID); err != nil {
		return result, err
	}

	if scenario, err = e.scenarios.Get(ctx, tx, session.ScenarioID); err != nil {
		return result, err
	}
	rc, err := e.buildReplyContext(ctx, tx, replyInput{
		scenario:     scenario,
		suspect:      suspect,
		state:        state,
		closedBefore: before.Closed,
		revealedNow:  result.RevealedNow,
		effect:       result.EvidenceEffect,
		evidence:     evidence,
		playerMsgID:  result.PlayerMessage.ID,
	})
	if err != nil {
		return result, err
	}

	player := models.PlayerMessage{Text: in.Text, Evidence: nil}
	if evidence != nil {
		player.Evidence = &models.PublicEvidence{ID: evidence.ID, Name: evidence.Name, Description: evidence.Description}
	}
	replyCtx, cancel := context.WithTimeout(ctx, e.opts.ReplyTimeout)
	defer cancel()
	reply, err := e.generator.Generate(replyCtx, rc, player)
	if err != nil {
		return result, errors.Wrap(err, "generate reply")
	}
	// A generator that ignores ctx may still answer after the deadline.
	if err = replyCtx.Err(); err != nil {
		return result, errors.Wrap(err, "generate reply")
	}

	if result.NPCMessage, err = e.chat.Append(ctx, tx, models.ChatMessage{ //nolint:exhaustruct // id is generated.
		SessionID: session.ID,
		SuspectID: suspect.ID,
		Sender:    models.SenderNPC,
		Text:      reply,
	}, e.opts.Now()); err != nil {
		return result, err
	}

	result.Suspect = models.SuspectSnapshot{
		ID:               suspect.ID,
		Name:             suspect.Name,
		Backstory:        suspect.Backstory,
		InitialStatement: suspect.InitialStatement,
		Progress:         state.Progress,
		Closed:           state.Closed,
	}
	return result, nil
}

// classifyEffect decides the evidence effect of a turn where evidence was presented.
func classifyEffect(revealedNow int, effectiveBefore bool) models.EvidenceEffect {
	switch {
	case revealedNow > 0:
		return models.EvidenceEffectRevealedSecret
	case effectiveBefore:
		return models.EvidenceEffectDuplicate
	default:
		return models.EvidenceEffectNone
	}
}
