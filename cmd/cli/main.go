package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/interrogation/cmd/cli/scenariocmd"
	"github.com/myrjola/interrogation/cmd/cli/sessioncmd"
	"github.com/myrjola/interrogation/internal/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{ //nolint:exhaustruct // this is better for readability
		Use:           "interrogation-cli",
		Long:          `Command line utilities for managing interrogation scenarios and sessions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddGroup(scenariocmd.Group, sessioncmd.Group)
	rootCmd.AddCommand(scenariocmd.NewCommand(), sessioncmd.NewCommand())
	return rootCmd
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
