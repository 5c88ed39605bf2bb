package main

import (
	"fmt"
	"time"

	"github.com/jrsteele09/go-bucket-browser/internal/config"
	"github.com/jrsteele09/go-bucket-browser/sessions/sqlitestore"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Maintain the session store",
	}
	cmd.AddCommand(newSessionsPurgeCmd())
	return cmd
}

func newSessionsPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions and login states from the sqlite store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.New()
			if err != nil {
				return err
			}
			setupLogging(c)
			if c.GetSessionStore() != config.SessionStoreSQLite {
				return fmt.Errorf("sessions purge needs SESSION_STORE=%s, got %q", config.SessionStoreSQLite, c.GetSessionStore())
			}

			db, err := sqlitestore.Open(cmd.Context(), c.GetSessionDBPath())
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.PurgeExpired(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			log.Info().Int64("removed", n).Str("path", c.GetSessionDBPath()).Msg("purged expired entries")
			return nil
		},
	}
}
