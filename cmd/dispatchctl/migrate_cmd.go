package main

import (
	"database/sql"

	"dispatch-voice/internal/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.Up(cmd.Context(), db); err != nil {
				return err
			}
			return printVersion(cmd, db)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.Down(cmd.Context(), db); err != nil {
				return err
			}
			return printVersion(cmd, db)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return printVersion(cmd, db)
		},
	})

	return cmd
}

type versionOutput struct {
	Version int64 `json:"version"`
}

func printVersion(cmd *cobra.Command, db *sql.DB) error {
	v, err := migrations.Version(cmd.Context(), db)
	if err != nil {
		return err
	}
	return writeJSON(cmd, versionOutput{Version: v})
}
