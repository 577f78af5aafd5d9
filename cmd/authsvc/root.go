package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-auth/config"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

// app is filled by the root command before any subcommand runs.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "authsvc",
		Short:        "Account registration and login service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load() // load .env if present

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = helpers.NewLogger(cfg.AppName, cfg.Env)
			return nil
		},
	}

	root.AddCommand(newServeCmd(a), newMigrateCmd(a), newSeedCmd(a))
	return root
}
