// Package scenariocmd has the commands for managing scenario case files.
package scenariocmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/myrjola/interrogation/cmd/cli/clidb"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/myrjola/interrogation/internal/game"
	"github.com/myrjola/interrogation/internal/repositories"
	"github.com/myrjola/interrogation/internal/scenario"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "scenario",
	Title: "Scenario operations",
}

// NewCommand returns the scenario command with its validate, load and list subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:     "scenario",
		GroupID: Group.ID,
		Short:   "Manage scenarios",
	}
	cmd.AddCommand(newValidateCommand(), newLoadCommand(), newListCommand())
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:   "validate [file]",
		Short: "Validate a case file",
		Long:  `Parses and validates a YAML or JSON case file without touching the database.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := scenario.ParseFile(args[0])
			if err == nil {
				err = c.Validate()
			}
			if err != nil {
				return errors.Wrap(err, "validate case file", slog.String("path", args[0]))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d suspects, %d evidence, %d secrets)\n",
				c.Title, len(c.Suspects), len(c.Evidence), len(c.Secrets))
			return nil
		},
	}
}

func newLoadCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:   "load [file]",
		Short: "Load a case file into the database",
		Long:  `Loads a case file. Loading a scenario whose title already exists is a no-op.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := clidb.NewLogger(cmd.ErrOrStderr())
			db, err := clidb.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			loader := scenario.NewLoader(db, repositories.NewScenarioRepository(logger), logger)
			id, err := loader.LoadFile(ctx, args[0])
			if err != nil {
				return errors.Wrap(err, "load case file", slog.String("path", args[0]))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\n", id)
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:   "list",
		Short: "List loaded scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := clidb.NewLogger(cmd.ErrOrStderr())
			db, err := clidb.Open(ctx, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			scenarios, err := game.NewEngine(db, nil, logger, game.Options{}).Scenarios(ctx) //nolint:exhaustruct // defaults
			if err != nil {
				return errors.Wrap(err, "list scenarios")
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint:mnd // column layout
			_, _ = fmt.Fprintln(w, "ID\tTITLE")
			for _, s := range scenarios {
				_, _ = fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Title)
			}
			if err = w.Flush(); err != nil {
				return errors.Wrap(err, "write scenarios")
			}
			return nil
		},
	}
}
