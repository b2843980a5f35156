package main

import (
	"github.com/jrsteele09/keyflow/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply user store migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger("", "info")
			c, err := config.LoadStorage()
			if err != nil {
				return err
			}
			_, closeRepo, err := openUserRepo(cmd.Context(), c)
			if err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return closeRepo()
		},
	}
}
