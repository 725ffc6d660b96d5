package main

import (
	"context"

	"github.com/spf13/cobra"

	"timetable/internal/adapters/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx, nil)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrateDB(ctx, db); err != nil {
				return err
			}
			a.log.Info().Str("dialect", db.Dialect().String()).Msg("schema_ready")
			return nil
		},
	}
}

func migrateDB(ctx context.Context, db *storage.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	return storage.InitDB(ctx, conn, db.Dialect())
}
