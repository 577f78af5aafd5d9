package main

import (
	"github.com/spf13/cobra"

	pginfra "github.com/oksasatya/go-ddd-auth/internal/infrastructure/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all up migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return pginfra.RunMigrations(a.cfg.PostgresDSN(), a.cfg.MigrationsDir, pginfra.Up, a.logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return pginfra.RunMigrations(a.cfg.PostgresDSN(), a.cfg.MigrationsDir, pginfra.Down, a.logger)
			},
		},
	)
	return cmd
}
