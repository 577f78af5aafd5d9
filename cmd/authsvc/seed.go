package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-auth/internal/application"
	"github.com/oksasatya/go-ddd-auth/internal/container"
	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	pginfra "github.com/oksasatya/go-ddd-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-auth/internal/router"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

func newSeedCmd(a *app) *cobra.Command {
	in := application.RegisterUserInput{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Register a demo account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.seed(cmd.Context(), in)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.AccountID, "account-id", "demo_user", "account id")
	f.StringVar(&in.Email, "email", "demo@example.com", "email")
	f.StringVar(&in.Name, "name", "Demo User", "display name")
	f.StringVar(&in.Password, "password", "demo-passw0rd!", "password")
	return cmd
}

// seed goes through RegisterUser so the demo account obeys every validation
// rule. An existing account is not an error.
func (a *app) seed(ctx context.Context, in application.RegisterUserInput) error {
	pool, err := pginfra.NewPool(ctx, a.cfg.PostgresDSN(), a.cfg.DBMaxConns, a.cfg.DBMinConns, a.cfg.DBMaxConnLife)
	if err != nil {
		return err
	}
	defer pool.Close()

	jwtManager, err := helpers.NewJWTManager(a.cfg.JWTSecret, a.cfg.JWTExpiresIn)
	if err != nil {
		return err
	}

	container.SetConfig(a.cfg)
	container.SetLogger(a.logger)
	container.SetPGPool(pool)
	container.SetJWT(jwtManager)

	return seedAccount(ctx, a.logger, router.BuildAuthDeps().Register, in)
}

type registerer interface {
	Execute(ctx context.Context, in application.RegisterUserInput) (*entity.User, error)
}

func seedAccount(ctx context.Context, logger *logrus.Logger, reg registerer, in application.RegisterUserInput) error {
	u, err := reg.Execute(ctx, in)
	switch {
	case errs.HasCode(err, errs.AccountIDAlreadyExists), errs.HasCode(err, errs.EmailAlreadyExists):
		logger.WithField("account_id", in.AccountID).Info("demo account already exists")
		return nil
	case err != nil:
		return err
	}
	helpers.LogInfo(logger, "seeded demo account", logrus.Fields{"id": u.ID(), "account_id": u.AccountID().String()})
	return nil
}
