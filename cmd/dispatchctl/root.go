package main

import (
	"context"
	"database/sql"
	"encoding/json"

	"dispatch-voice/internal/config"
	"dispatch-voice/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dispatchctl",
		Short:         "Operator tooling for the dispatch voice service",
		SilenceUsage: true,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newAgentsCmd())
	return cmd
}

func connectDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.LoadDB()
	if err != nil {
		return nil, err
	}
	return utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
