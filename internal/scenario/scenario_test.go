package scenario_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/interrogation/internal/gametest"
	"github.com/myrjola/interrogation/internal/models"
	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/scenario"
	"github.com/myrjola/interrogation/internal/sqlite"
	"github.com/myrjola/interrogation/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newLoader(t *testing.T) (*scenario.Loader, *sqlite.Database, *repositories.ScenarioRepository) {
	t.Helper()
	db := gametest.NewDatabase(t)
	logger := testhelpers.NewLogger(io.Discard)
	scenarios := repositories.NewScenarioRepository(logger)
	return scenario.NewLoader(db, scenarios, logger), db, scenarios
}

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name: "yaml",
			input: `title: T
culprit: A
suspects: [{name: A}]`,
		},
		{
			name:  "json",
			input: `{"title": "T", "culprit": "A", "suspects": [{"name": "A"}]}`,
		},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown field", input: "title: T\nculprits: A\n", wantErr: true},
		{name: "malformed", input: "title: [", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := scenario.Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				require.ErrorIs(t, err, models.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "T", c.Title)
			require.NoError(t, c.Validate())
		})
	}
}

func TestCase_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(c *scenario.Case)
		want   string
	}{
		{name: "empty title", mutate: func(c *scenario.Case) { c.Title = " " }, want: "title is empty"},
		{name: "no suspects", mutate: func(c *scenario.Case) { c.Suspects = nil }, want: "case has no suspects"},
		{
			name:   "duplicate suspect",
			mutate: func(c *scenario.Case) { c.Suspects = append(c.Suspects, scenario.Suspect{Name: "Bob"}) },
			want:   `suspect "Bob" is defined twice`,
		},
		{
			name:   "duplicate evidence",
			mutate: func(c *scenario.Case) { c.Evidence = append(c.Evidence, scenario.Evidence{Name: "Knife"}) },
			want:   `evidence "Knife" is defined twice`,
		},
		{name: "unknown culprit", mutate: func(c *scenario.Case) { c.Culprit = "Eve" }, want: `culprit "Eve"`},
		{name: "missing culprit", mutate: func(c *scenario.Case) { c.Culprit = "" }, want: "culprit is not set"},
		{
			name:   "secret with unknown suspect",
			mutate: func(c *scenario.Case) { c.Secrets[0].Suspect = "Eve" },
			want:   `unknown suspect "Eve"`,
		},
		{
			name:   "secret with unknown evidence",
			mutate: func(c *scenario.Case) { c.Secrets[0].Evidence = "Gun" },
			want:   `unknown evidence "Gun"`,
		},
		{name: "secret without content", mutate: func(c *scenario.Case) { c.Secrets[0].Content = "" }, want: "no content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gametest.TwoSuspectCase()
			tt.mutate(c)
			err := c.Validate()
			require.ErrorIs(t, err, models.ErrInvalidInput)
			require.ErrorContains(t, err, tt.want)
		})
	}

	require.NoError(t, gametest.TwoSuspectCase().Validate())
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loader, db, scenarios := newLoader(t)

	c := gametest.TwoSuspectCase()
	id, err := loader.Load(ctx, c)
	require.NoError(t, err)

	// Loading the same title again is idempotent.
	again, err := loader.Load(ctx, c)
	require.NoError(t, err)
	require.Equal(t, id, again)

	list, err := scenarios.List(ctx, db.ReadOnly)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.ObjectiveFindCulprit, list[0].Objective)

	stored, err := scenarios.Get(ctx, db.ReadOnly, id)
	require.NoError(t, err)
	require.Equal(t, c.CaseSummary, stored.CaseSummary)

	suspects, err := scenarios.Suspects(ctx, db.ReadOnly, id)
	require.NoError(t, err)
	require.Len(t, suspects, 2)
	require.Equal(t, "Alice", suspects[0].Name)
	require.Equal(t, "Bob", suspects[1].Name)
	require.Equal(t, "I have said all I will say.", suspects[0].FinalPhrase)
	require.Equal(t, models.DefaultFinalPhrase, suspects[1].FinalPhrase)
	require.NotNil(t, stored.CulpritSuspectID)
	require.Equal(t, suspects[0].ID, *stored.CulpritSuspectID)

	required, err := scenarios.RequiredEvidenceIDs(ctx, db.ReadOnly, id)
	require.NoError(t, err)
	require.Len(t, required, 2)

	core, err := scenarios.CoreSecretIDs(ctx, db.ReadOnly, suspects[0].ID)
	require.NoError(t, err)
	require.Len(t, core, 2)
	core, err = scenarios.CoreSecretIDs(ctx, db.ReadOnly, suspects[1].ID)
	require.NoError(t, err)
	require.Empty(t, core)
}

func TestLoader_LoadInvalidLeavesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loader, db, scenarios := newLoader(t)

	c := gametest.TwoSuspectCase()
	c.Culprit = "Nobody"
	_, err := loader.Load(ctx, c)
	require.ErrorIs(t, err, models.ErrInvalidInput)

	list, err := scenarios.List(ctx, db.ReadOnly)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestLoader_LoadRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loader, db, scenarios := newLoader(t)

	// The scenario row is inserted before the trigger aborts the first suspect.
	require.NoError(t, db.InTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `CREATE TRIGGER fail_suspects BEFORE INSERT ON suspects
BEGIN SELECT RAISE(ABORT, 'no suspects today'); END;`)
		return err
	}))

	_, err := loader.Load(ctx, gametest.TwoSuspectCase())
	require.ErrorContains(t, err, "no suspects today")

	list, err := scenarios.List(ctx, db.ReadOnly)
	require.NoError(t, err)
	require.Empty(t, list, "scenario row must be rolled back with the failed suspects")
}

func TestLoader_LoadDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loader, db, scenarios := newLoader(t)

	ids, err := loader.LoadDir(ctx, "testdata")
	require.NoError(t, err)
	require.Len(t, ids, 2)

	list, err := scenarios.List(ctx, db.ReadOnly)
	require.NoError(t, err)
	titles := []string{list[0].Title, list[1].Title}
	require.ElementsMatch(t, []string{"JSON case", "The Lighthouse Keeper"}, titles)

	ids, err = loader.LoadDir(ctx, filepath.Join("testdata", "missing"))
	require.NoError(t, err)
	require.Empty(t, ids)
}
