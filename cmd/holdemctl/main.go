package main

import (
	"database/sql"
	"encoding/json"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"holdem-server/internal/config"
	"holdem-server/pkg/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "holdemctl",
		Short: "Administer the hold'em server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newRoomCmd())

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run the database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Instance()
			dbh, err := db.Open(cfg.PGDSN)
			if err != nil {
				return err
			}
			defer dbh.Close()

			return db.Migrate(dbh, cfg.MigrationsPath)
		},
	}
}

func openDB() (*sql.DB, error) {
	return db.Open(config.Instance().PGDSN)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
