package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// newRootCmd builds the keyflow command tree; running it without a subcommand serves
func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:   "keyflow",
		Short: "Authentication and session service",
		Long: `keyflow signs users in with GitHub, issues signed session cookies
and guards state-changing requests with a double-submit CSRF token.`,
		// SilenceUsage prevents Cobra from printing the usage message on runtime errors.
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd(), newKeygenCmd())
	return root
}

// setupLogger configures the global zerolog logger: console output in DEV, JSON otherwise
func setupLogger(env, level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
