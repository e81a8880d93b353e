// Package sessioncmd has the commands for inspecting and starting game sessions.
package sessioncmd

import (
	"encoding/json"
	"strconv"

	"github.com/myrjola/interrogation/cmd/cli/clidb"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/game"
	"github.com/myrjola/interrogation/internal/models"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "session",
	Title: "Session operations",
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:     "session",
		GroupID: Group.ID,
		Short:   "Start and inspect sessions",
	}
	cmd.AddCommand(
		newOverviewCommand("create [scenario-id]", "Start a session of a scenario",
			func(cmd *cobra.Command, engine *game.Engine, id int64) (models.Overview, error) {
				return engine.CreateSession(cmd.Context(), id)
			}),
		newOverviewCommand("show [session-id]", "Show the overview of a session",
			func(cmd *cobra.Command, engine *game.Engine, id int64) (models.Overview, error) {
				return engine.Overview(cmd.Context(), id)
			}),
	)
	return cmd
}

// newOverviewCommand builds a command that takes one id argument and prints the resulting overview as JSON.
func newOverviewCommand(
	use, short string,
	fn func(cmd *cobra.Command, engine *game.Engine, id int64) (models.Overview, error),
) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.Join(models.ErrInvalidInput, errors.Wrap(err, "parse id"))
			}
			logger := clidb.NewLogger(cmd.ErrOrStderr())
			db, err := clidb.Open(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			// Sessions are only created and inspected here, no suspect is voiced.
			overview, err := fn(cmd, game.NewEngine(db, nil, logger, game.Options{}), id) //nolint:exhaustruct // defaults
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(overview); err != nil {
				return errors.Wrap(err, "write overview")
			}
			return nil
		},
	}
}
