// Package gametest provides an isolated database with seeded scenarios for tests.
package gametest

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/scenario"
	"github.com/myrjola/interrogation/internal/sqlite"
	"github.com/myrjola/interrogation/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// NewDatabase creates a fresh in-memory database that is closed when the test ends.
func NewDatabase(t testing.TB) *sqlite.Database {
	t.Helper()
	db, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

// Seeded resolves the names of a loaded case to ids.
type Seeded struct {
	ScenarioID int64
	Suspects   map[string]int64
	Evidence   map[string]int64
	// Secrets is keyed by secret content.
	Secrets map[string]int64
}

// Suspect returns the id of the named suspect and fails the test if it is unknown.
func (s Seeded) Suspect(t testing.TB, name string) int64 {
	t.Helper()
	id, ok := s.Suspects[name]
	require.True(t, ok, "unknown suspect %q", name)
	return id
}

// EvidenceID returns the id of the named evidence and fails the test if it is unknown.
func (s Seeded) EvidenceID(t testing.TB, name string) int64 {
	t.Helper()
	id, ok := s.Evidence[name]
	require.True(t, ok, "unknown evidence %q", name)
	return id
}

// Seed loads c into db.
func Seed(t testing.TB, db *sqlite.Database, c *scenario.Case) Seeded {
	t.Helper()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)
	scenarios := repositories.NewScenarioRepository(logger)

	scenarioID, err := scenario.NewLoader(db, scenarios, logger).Load(ctx, c)
	require.NoError(t, err)

	seeded := Seeded{
		ScenarioID: scenarioID,
		Suspects:   map[string]int64{},
		Evidence:   map[string]int64{},
		Secrets:    map[string]int64{},
	}
	suspects, err := scenarios.Suspects(ctx, db.ReadOnly, scenarioID)
	require.NoError(t, err)
	for _, s := range suspects {
		seeded.Suspects[s.Name] = s.ID
	}
	evidence, err := scenarios.Evidence(ctx, db.ReadOnly, scenarioID)
	require.NoError(t, err)
	for _, e := range evidence {
		seeded.Evidence[e.Name] = e.ID
	}
	for _, secret := range c.Secrets {
		secrets, secretsErr := scenarios.SecretsFor(ctx, db.ReadOnly,
			seeded.Suspects[secret.Suspect], seeded.Evidence[secret.Evidence])
		require.NoError(t, secretsErr)
		for _, s := range secrets {
			seeded.Secrets[s.Content] = s.ID
		}
	}
	return seeded
}

// TwoSuspectCase is a small case used across tests.
//
// Alice is the culprit with core secrets behind the knife and the letter. Bob has a single non-core secret behind the
// letter, so he has no core secrets at all. The knife and the letter are required, the photo is not.
func TwoSuspectCase() *scenario.Case {
	return &scenario.Case{
		Title:       "The Study",
		Description: "Lord Pembrook was found dead in his study.",
		CaseSummary: "Alice stabbed Lord Pembrook after he threatened to change his will.",
		Culprit:     "Alice",
		Suspects: []scenario.Suspect{
			{
				Name:             "Alice",
				Backstory:        "The niece.",
				InitialStatement: "I was reading in the library.",
				FinalPhrase:      "I have said all I will say.",
			},
			{
				Name:             "Bob",
				Backstory:        "The gardener.",
				InitialStatement: "I was in the greenhouse.",
			},
		},
		Evidence: []scenario.Evidence{
			{Name: "Knife", Description: "A bloody letter opener.", Mandatory: true},
			{Name: "Letter", Description: "A draft of the new will.", Mandatory: true},
			{Name: "Photo", Description: "A faded photograph.", Mandatory: false},
		},
		Secrets: []scenario.Secret{
			{Suspect: "Alice", Evidence: "Knife", Content: "The letter opener is mine.", Core: true},
			{Suspect: "Alice", Evidence: "Letter", Content: "He was going to disinherit me.", Core: true},
			{Suspect: "Alice", Evidence: "Photo", Content: "That is my mother.", Core: false},
			{Suspect: "Bob", Evidence: "Letter", Content: "I saw Alice read the letter.", Core: false},
		},
	}
}
