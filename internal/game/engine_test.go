package game_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/game"
	"github.com/myrjola/interrogation/internal/gametest"
	"github.com/myrjola/interrogation/internal/models"
	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/sqlite"
	"github.com/myrjola/interrogation/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGenerator replies with a fixed text or fails, and remembers every context it was given.
type recordingGenerator struct {
	mu       sync.Mutex
	err      error
	contexts []models.ReplyContext
	players  []models.PlayerMessage
	block    bool
	// delay is slept without watching ctx.
	delay time.Duration
}

func (g *recordingGenerator) Generate(
	ctx context.Context,
	rc models.ReplyContext,
	player models.PlayerMessage,
) (string, error) {
	g.mu.Lock()
	g.contexts = append(g.contexts, rc)
	g.players = append(g.players, player)
	err, block, delay := g.err, g.block, g.delay
	g.mu.Unlock()
	time.Sleep(delay)
	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s answers.", rc.Suspect.Name), nil
}

func (g *recordingGenerator) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *recordingGenerator) last(t *testing.T) models.ReplyContext {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.contexts)
	return g.contexts[len(g.contexts)-1]
}

type fixture struct {
	engine    *game.Engine
	db        *sqlite.Database
	generator *recordingGenerator
	seeded    gametest.Seeded
	usages    *repositories.UsageRepository
	sessions  *repositories.SessionRepository
	chat      *repositories.ChatRepository
}

func newFixture(t *testing.T, opts game.Options) fixture {
	t.Helper()
	db := gametest.NewDatabase(t)
	logger := testhelpers.NewTestLogger(t)
	generator := &recordingGenerator{}
	return fixture{
		engine:    game.NewEngine(db, generator, logger, opts),
		db:        db,
		generator: generator,
		seeded:    gametest.Seed(t, db, gametest.TwoSuspectCase()),
		usages:    repositories.NewUsageRepository(logger),
		sessions:  repositories.NewSessionRepository(logger),
		chat:      repositories.NewChatRepository(logger),
	}
}

func (f fixture) newSession(t *testing.T) int64 {
	t.Helper()
	overview, err := f.engine.CreateSession(context.Background(), f.seeded.ScenarioID)
	require.NoError(t, err)
	return overview.SessionID
}

func (f fixture) turn(t *testing.T, sessionID int64, suspect, evidence string) game.TurnResult {
	t.Helper()
	result, err := f.engine.Turn(context.Background(), f.input(t, sessionID, suspect, evidence))
	require.NoError(t, err)
	return result
}

func (f fixture) input(t *testing.T, sessionID int64, suspect, evidence string) game.TurnInput {
	t.Helper()
	in := game.TurnInput{
		SessionID:  sessionID,
		SuspectID:  f.seeded.Suspect(t, suspect),
		Text:       "Where were you last night?",
		EvidenceID: nil,
	}
	if evidence != "" {
		id := f.seeded.EvidenceID(t, evidence)
		in.EvidenceID = &id
		in.Text = "Explain this."
	}
	return in
}

func (f fixture) messageCount(t *testing.T, sessionID int64, suspect string) int {
	t.Helper()
	messages, err := f.engine.ChatHistory(context.Background(), sessionID, f.seeded.Suspect(t, suspect))
	require.NoError(t, err)
	return len(messages)
}

func TestEngine_CreateSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})

	overview, err := f.engine.CreateSession(ctx, f.seeded.ScenarioID)
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusInProgress, overview.Status)
	require.Nil(t, overview.Result)
	require.Equal(t, "The Study", overview.Scenario.Title)
	require.Equal(t, models.ObjectiveFindCulprit, overview.Scenario.Objective)
	require.Len(t, overview.Suspects, 2)
	for _, s := range overview.Suspects {
		require.InDelta(t, 0.0, s.Progress, 1e-9)
		require.False(t, s.Closed)
	}
	require.Equal(t, "Alice", overview.Suspects[0].Name)

	_, err = f.engine.CreateSession(ctx, f.seeded.ScenarioID+100)
	require.ErrorIs(t, err, models.ErrNotFound)

	_, err = f.engine.CreateSession(ctx, 0)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = f.engine.Overview(ctx, overview.SessionID+100)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestEngine_Lists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	scenarios, err := f.engine.Scenarios(ctx)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)

	suspects, err := f.engine.Suspects(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, suspects, 2)

	evidence, err := f.engine.Evidence(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, evidence, 3)
	raw, err := json.Marshal(evidence)
	require.NoError(t, err)
	require.NotContains(t, strings.ToLower(string(raw)), "required")
	require.NotContains(t, strings.ToLower(string(raw)), "mandatory")

	_, err = f.engine.Suspects(ctx, sessionID+1)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.engine.Evidence(ctx, sessionID+1)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.engine.ChatHistory(ctx, sessionID, f.seeded.Suspect(t, "Alice")+100)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestEngine_TurnProgressesTowardsClosure(t *testing.T) {
	t.Parallel()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	result := f.turn(t, sessionID, "Alice", "Knife")
	require.Equal(t, models.EvidenceEffectRevealedSecret, result.EvidenceEffect)
	require.Len(t, result.RevealedNow, 1)
	require.Equal(t, "The letter opener is mine.", result.RevealedNow[0].Content)
	require.True(t, result.RevealedNow[0].IsCore)
	require.InDelta(t, 0.5, result.Suspect.Progress, 1e-9)
	require.False(t, result.Suspect.Closed)

	result = f.turn(t, sessionID, "Alice", "Letter")
	require.Equal(t, models.EvidenceEffectRevealedSecret, result.EvidenceEffect)
	require.InDelta(t, 1.0, result.Suspect.Progress, 1e-9)
	require.True(t, result.Suspect.Closed)

	// Closed stays closed.
	result = f.turn(t, sessionID, "Alice", "")
	require.True(t, result.Suspect.Closed)
	require.Equal(t, models.EvidenceEffectNone, result.EvidenceEffect)
	require.True(t, f.generator.last(t).Rules.MustRefuse)
	require.Equal(t, "I have said all I will say.", f.generator.last(t).FinalPhrase)

	overview, err := f.engine.Overview(context.Background(), sessionID)
	require.NoError(t, err)
	require.True(t, overview.Suspects[0].Closed)
	require.False(t, overview.Suspects[1].Closed, "Bob has not been interrogated yet")
}

func TestEngine_TurnWithoutCoreSecretsClosesImmediately(t *testing.T) {
	t.Parallel()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	result := f.turn(t, sessionID, "Bob", "")
	require.InDelta(t, 1.0, result.Suspect.Progress, 1e-9)
	require.True(t, result.Suspect.Closed)
	require.Equal(t, models.EvidenceEffectNone, result.EvidenceEffect)
	require.Empty(t, result.RevealedNow)
}

func TestEngine_TurnNonCoreSecretKeepsProgress(t *testing.T) {
	t.Parallel()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	result := f.turn(t, sessionID, "Alice", "Photo")
	require.Equal(t, models.EvidenceEffectRevealedSecret, result.EvidenceEffect)
	require.Len(t, result.RevealedNow, 1)
	require.False(t, result.RevealedNow[0].IsCore)
	require.InDelta(t, 0.0, result.Suspect.Progress, 1e-9)
	require.False(t, result.Suspect.Closed)
}

func TestEngine_TurnEvidenceEffects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)
	alice := f.seeded.Suspect(t, "Alice")
	knife := f.seeded.EvidenceID(t, "Knife")

	first := f.turn(t, sessionID, "Alice", "Knife")
	require.Equal(t, models.EvidenceEffectRevealedSecret, first.EvidenceEffect)

	second := f.turn(t, sessionID, "Alice", "Knife")
	require.Equal(t, models.EvidenceEffectDuplicate, second.EvidenceEffect)
	require.Empty(t, second.RevealedNow)
	require.InDelta(t, 0.5, second.Suspect.Progress, 1e-9)

	state, err := f.sessions.State(ctx, f.db.ReadOnly, sessionID, alice)
	require.NoError(t, err)
	require.Equal(t, 1, state.Revealed.Len(), "re-applying evidence must not reveal a secret twice")

	// The ineffective second presentation keeps the usage effective.
	usage, found, err := f.usages.Get(ctx, f.db.ReadOnly, sessionID, alice, knife)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, usage.WasEffective)

	// Evidence that never revealed anything to this suspect has no effect, even when repeated.
	for range 2 {
		result := f.turn(t, sessionID, "Bob", "Knife")
		require.Equal(t, models.EvidenceEffectNone, result.EvidenceEffect)
	}
	usage, found, err = f.usages.Get(ctx, f.db.ReadOnly, sessionID, f.seeded.Suspect(t, "Bob"), knife)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, usage.WasEffective)
}

func TestEngine_TurnRollsBackWhenReplyFails(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		evidence string
	}{
		{name: "with evidence", evidence: "Knife"},
		{name: "without evidence", evidence: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t, game.Options{})
			sessionID := f.newSession(t)
			alice := f.seeded.Suspect(t, "Alice")

			generatorErr := errors.NewSentinel("model unavailable")
			f.generator.fail(generatorErr)
			_, err := f.engine.Turn(ctx, f.input(t, sessionID, "Alice", tt.evidence))
			require.ErrorIs(t, err, generatorErr)

			require.Equal(t, 0, f.messageCount(t, sessionID, "Alice"))
			state, err := f.sessions.State(ctx, f.db.ReadOnly, sessionID, alice)
			require.NoError(t, err)
			require.Equal(t, 0, state.Revealed.Len())
			require.InDelta(t, 0.0, state.Progress, 1e-9)
			used, err := f.usages.WasUsed(ctx, f.db.ReadOnly, sessionID, f.seeded.EvidenceID(t, "Knife"))
			require.NoError(t, err)
			require.False(t, used)

			// The same turn succeeds once the generator recovers.
			f.generator.fail(nil)
			result := f.turn(t, sessionID, "Alice", tt.evidence)
			require.Equal(t, 2, f.messageCount(t, sessionID, "Alice"))
			if tt.evidence != "" {
				require.Equal(t, models.EvidenceEffectRevealedSecret, result.EvidenceEffect)
			}
		})
	}
}

func TestEngine_TurnRollsBackOnReplyTimeout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{ReplyTimeout: 20 * time.Millisecond})
	sessionID := f.newSession(t)
	f.generator.block = true

	_, err := f.engine.Turn(ctx, f.input(t, sessionID, "Alice", "Knife"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 0, f.messageCount(t, sessionID, "Alice"))
}

func TestEngine_TurnRollsBackLateReply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{ReplyTimeout: 10 * time.Millisecond})
	sessionID := f.newSession(t)
	f.generator.mu.Lock()
	f.generator.delay = 100 * time.Millisecond
	f.generator.mu.Unlock()

	_, err := f.engine.Turn(ctx, f.input(t, sessionID, "Alice", "Knife"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 0, f.messageCount(t, sessionID, "Alice"))

	state, err := f.sessions.State(ctx, f.db.ReadOnly, sessionID, f.seeded.Suspect(t, "Alice"))
	require.NoError(t, err)
	require.Zero(t, state.Revealed.Len())
}

func TestEngine_TurnValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	other := gametest.TwoSuspectCase()
	other.Title = "Another Study"
	otherSeed := gametest.Seed(t, f.db, other)
	foreignEvidence := otherSeed.EvidenceID(t, "Knife")
	zero := int64(0)

	tests := []struct {
		name    string
		mutate  func(in *game.TurnInput)
		wantErr error
	}{
		{name: "blank text", mutate: func(in *game.TurnInput) { in.Text = "  " }, wantErr: models.ErrInvalidInput},
		{
			name:    "too long text",
			mutate:  func(in *game.TurnInput) { in.Text = strings.Repeat("å", game.MaxMessageLength+1) },
			wantErr: models.ErrInvalidInput,
		},
		{name: "zero session", mutate: func(in *game.TurnInput) { in.SessionID = 0 }, wantErr: models.ErrInvalidInput},
		{name: "zero evidence", mutate: func(in *game.TurnInput) { in.EvidenceID = &zero }, wantErr: models.ErrInvalidInput},
		{name: "unknown session", mutate: func(in *game.TurnInput) { in.SessionID += 100 }, wantErr: models.ErrNotFound},
		{
			name:    "suspect of another scenario",
			mutate:  func(in *game.TurnInput) { in.SuspectID = otherSeed.Suspect(t, "Alice") },
			wantErr: models.ErrNotFound,
		},
		{
			name:    "evidence of another scenario",
			mutate:  func(in *game.TurnInput) { in.EvidenceID = &foreignEvidence },
			wantErr: models.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input(t, sessionID, "Alice", "")
			tt.mutate(&in)
			_, err := f.engine.Turn(ctx, in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	require.Equal(t, 0, f.messageCount(t, sessionID, "Alice"))

	// A message of exactly the maximum length is fine.
	in := f.input(t, sessionID, "Alice", "")
	in.Text = strings.Repeat("å", game.MaxMessageLength)
	_, err := f.engine.Turn(ctx, in)
	require.NoError(t, err)
}

func TestEngine_ReplyContext(t *testing.T) {
	t.Parallel()
	f := newFixture(t, game.Options{HistoryLimit: 3})
	sessionID := f.newSession(t)

	f.turn(t, sessionID, "Alice", "")
	f.turn(t, sessionID, "Alice", "Knife")
	rc := f.generator.last(t)

	require.Equal(t, "Alice stabbed Lord Pembrook after he threatened to change his will.", rc.CaseSummary)
	require.Equal(t, "Alice", rc.Suspect.Name)
	require.Equal(t, "I was reading in the library.", rc.Suspect.InitialStatement)
	require.Len(t, rc.Revealed, 1)
	require.Equal(t, "The letter opener is mine.", rc.Revealed[0].Content)
	require.Equal(t, rc.Revealed, rc.RevealedNow)
	require.True(t, rc.Rules.EvidencePresented)
	require.Equal(t, models.EvidenceEffectRevealedSecret, rc.Rules.Effect)
	require.False(t, rc.Rules.MustRefuse)
	require.Len(t, rc.PressurePoints, 1)
	require.Equal(t, "Knife", rc.PressurePoints[0].EvidenceName)

	// History holds the earlier exchange but not the current player message.
	require.Len(t, rc.History, 2)
	require.Equal(t, models.SenderPlayer, rc.History[0].Sender)
	require.Equal(t, models.SenderNPC, rc.History[1].Sender)

	f.turn(t, sessionID, "Alice", "")
	rc = f.generator.last(t)
	require.Len(t, rc.History, 3, "history is capped")
	require.Equal(t, models.SenderNPC, rc.History[0].Sender)

	// Unrevealed secrets never reach the generator.
	raw, err := json.Marshal(f.generator.contexts)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "He was going to disinherit me.")
	require.NotContains(t, string(raw), "That is my mother.")
}

func TestEngine_TurnOnFinishedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	_, err := f.engine.Accuse(ctx, game.AccuseInput{
		SessionID:   sessionID,
		SuspectID:   f.seeded.Suspect(t, "Bob"),
		EvidenceIDs: nil,
	})
	require.NoError(t, err)

	_, err = f.engine.Turn(ctx, f.input(t, sessionID, "Alice", ""))
	require.ErrorIs(t, err, models.ErrRuleViolation)
	require.ErrorContains(t, err, "already finished")
}

func TestEngine_Accuse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		suspect     string
		used        []string
		accuseWith  []string
		wantResult  models.VerdictResult
		wantMissing []string
	}{
		{
			name:        "wrong suspect with all required evidence",
			suspect:     "Bob",
			used:        []string{"Knife", "Letter"},
			accuseWith:  []string{"Knife", "Letter"},
			wantResult:  models.VerdictResultWrong,
			wantMissing: []string{"Knife", "Letter"},
		},
		{
			name:        "culprit with part of the required evidence",
			suspect:     "Alice",
			used:        []string{"Knife", "Letter"},
			accuseWith:  []string{"Knife"},
			wantResult:  models.VerdictResultPartial,
			wantMissing: []string{"Letter"},
		},
		{
			name:        "culprit with all required evidence",
			suspect:     "Alice",
			used:        []string{"Knife", "Letter"},
			accuseWith:  []string{"Letter", "Knife", "Knife"},
			wantResult:  models.VerdictResultCorrect,
			wantMissing: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			f := newFixture(t, game.Options{})
			sessionID := f.newSession(t)
			for _, evidence := range tt.used {
				f.turn(t, sessionID, "Bob", evidence)
			}
			var accuseWith []int64
			for _, evidence := range tt.accuseWith {
				accuseWith = append(accuseWith, f.seeded.EvidenceID(t, evidence))
			}
			wantMissing := []int64{}
			for _, evidence := range tt.wantMissing {
				wantMissing = append(wantMissing, f.seeded.EvidenceID(t, evidence))
			}

			verdict, err := f.engine.Accuse(ctx, game.AccuseInput{
				SessionID:   sessionID,
				SuspectID:   f.seeded.Suspect(t, tt.suspect),
				EvidenceIDs: accuseWith,
			})
			require.NoError(t, err)
			require.Equal(t, tt.wantResult, verdict.Result)
			require.ElementsMatch(t, wantMissing, verdict.MissingEvidenceIDs)
			require.Equal(t, models.SessionStatusFinished, verdict.Status)
			require.Equal(t, f.seeded.Suspect(t, "Alice"), verdict.CulpritID)

			session, err := f.sessions.Get(ctx, f.db.ReadOnly, sessionID)
			require.NoError(t, err)
			require.True(t, session.Finished())
			require.NotNil(t, session.Result)
			require.Equal(t, tt.wantResult, *session.Result)
			require.Len(t, []int64(session.ChosenEvidenceIDs), len(dedupeNames(tt.accuseWith)))
			require.NotNil(t, session.FinishedAt)
		})
	}
}

func dedupeNames(names []string) map[string]bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return set
}

func TestEngine_AccuseTwice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)
	f.turn(t, sessionID, "Alice", "Knife")
	f.turn(t, sessionID, "Alice", "Letter")

	first, err := f.engine.Accuse(ctx, game.AccuseInput{
		SessionID:   sessionID,
		SuspectID:   f.seeded.Suspect(t, "Alice"),
		EvidenceIDs: []int64{f.seeded.EvidenceID(t, "Knife")},
	})
	require.NoError(t, err)
	require.Equal(t, models.VerdictResultPartial, first.Result)

	_, err = f.engine.Accuse(ctx, game.AccuseInput{
		SessionID:   sessionID,
		SuspectID:   f.seeded.Suspect(t, "Alice"),
		EvidenceIDs: []int64{f.seeded.EvidenceID(t, "Knife"), f.seeded.EvidenceID(t, "Letter")},
	})
	require.ErrorIs(t, err, models.ErrRuleViolation)
	require.ErrorContains(t, err, "already finished")

	session, err := f.sessions.Get(ctx, f.db.ReadOnly, sessionID)
	require.NoError(t, err)
	require.Equal(t, models.VerdictResultPartial, *session.Result)
	require.Equal(t, []int64{f.seeded.EvidenceID(t, "Knife")}, []int64(session.ChosenEvidenceIDs))
}

func TestEngine_AccuseValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)
	f.turn(t, sessionID, "Alice", "Knife")

	other := gametest.TwoSuspectCase()
	other.Title = "Another Study"
	otherSeed := gametest.Seed(t, f.db, other)

	tests := []struct {
		name    string
		in      game.AccuseInput
		wantErr error
	}{
		{
			name:    "unknown session",
			in:      game.AccuseInput{SessionID: sessionID + 100, SuspectID: f.seeded.Suspect(t, "Alice")},
			wantErr: models.ErrNotFound,
		},
		{
			name:    "suspect of another scenario",
			in:      game.AccuseInput{SessionID: sessionID, SuspectID: otherSeed.Suspect(t, "Alice")},
			wantErr: models.ErrNotFound,
		},
		{
			name: "evidence of another scenario",
			in: game.AccuseInput{
				SessionID:   sessionID,
				SuspectID:   f.seeded.Suspect(t, "Alice"),
				EvidenceIDs: []int64{otherSeed.EvidenceID(t, "Knife")},
			},
			wantErr: models.ErrNotFound,
		},
		{
			name: "unused evidence against the culprit",
			in: game.AccuseInput{
				SessionID:   sessionID,
				SuspectID:   f.seeded.Suspect(t, "Alice"),
				EvidenceIDs: []int64{f.seeded.EvidenceID(t, "Knife"), f.seeded.EvidenceID(t, "Letter")},
			},
			wantErr: models.ErrRuleViolation,
		},
		{
			name: "unused evidence against an innocent",
			in: game.AccuseInput{
				SessionID:   sessionID,
				SuspectID:   f.seeded.Suspect(t, "Bob"),
				EvidenceIDs: []int64{f.seeded.EvidenceID(t, "Photo")},
			},
			wantErr: models.ErrRuleViolation,
		},
		{
			name:    "zero suspect",
			in:      game.AccuseInput{SessionID: sessionID, SuspectID: 0},
			wantErr: models.ErrInvalidInput,
		},
		{
			name: "negative evidence",
			in: game.AccuseInput{
				SessionID:   sessionID,
				SuspectID:   f.seeded.Suspect(t, "Alice"),
				EvidenceIDs: []int64{-1},
			},
			wantErr: models.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Accuse(ctx, tt.in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	session, err := f.sessions.Get(ctx, f.db.ReadOnly, sessionID)
	require.NoError(t, err)
	require.False(t, session.Finished(), "failed accusations must not finish the session")
}

func TestEngine_ConcurrentTurnsDoNotLoseReveals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, game.Options{})
	sessionID := f.newSession(t)

	var wg sync.WaitGroup
	for _, evidence := range []string{"Knife", "Letter", "Photo"} {
		in := f.input(t, sessionID, "Alice", evidence)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Turn(ctx, in)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	state, err := f.sessions.State(ctx, f.db.ReadOnly, sessionID, f.seeded.Suspect(t, "Alice"))
	require.NoError(t, err)
	require.Equal(t, 3, state.Revealed.Len())
	require.InDelta(t, 1.0, state.Progress, 1e-9)
	require.True(t, state.Closed)
	require.Equal(t, 6, f.messageCount(t, sessionID, "Alice"))
}
