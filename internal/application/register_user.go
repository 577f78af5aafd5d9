package application

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
	"github.com/oksasatya/go-ddd-auth/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth/internal/domain/service"
	"github.com/oksasatya/go-ddd-auth/internal/domain/valueobject"
)

type RegisterUserInput struct {
	AccountID string
	Email     string
	Name      string
	Password  string
}

// RegisterUser creates an account. Every failure path leaves the store
// untouched; success performs exactly one Save.
type RegisterUser struct {
	Users   repository.UserStore
	Hasher  service.PasswordHasher
	Events  EventPublisher
	Metrics Metrics
	Logger  logrus.FieldLogger
}

func NewRegisterUser(users repository.UserStore, hasher service.PasswordHasher, events EventPublisher, metrics Metrics, logger logrus.FieldLogger) *RegisterUser {
	if events == nil {
		events = NoopPublisher{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &RegisterUser{Users: users, Hasher: hasher, Events: events, Metrics: metrics, Logger: orDiscard(logger)}
}

func (uc *RegisterUser) Execute(ctx context.Context, in RegisterUserInput) (*entity.User, error) {
	u, err := uc.register(ctx, in)
	if err != nil {
		uc.Metrics.ObserveRegistration(outcomeOf(err))
		return nil, err
	}
	uc.Metrics.ObserveRegistration(OutcomeSuccess)

	log := orDiscard(uc.Logger)
	log.WithFields(logrus.Fields{
		"user_id":    u.ID(),
		"account_id": u.AccountID().String(),
	}).Info("user registered")
	publish(ctx, uc.Events, log, event.AuthEvent{
		Type:       event.UserRegistered,
		UserID:     u.ID(),
		AccountID:  u.AccountID().String(),
		Email:      u.Email().String(),
		Name:       u.Name(),
		OccurredAt: time.Now().UTC(),
	})
	return u, nil
}

func (uc *RegisterUser) register(ctx context.Context, in RegisterUserInput) (*entity.User, error) {
	// Local checks first; none of them touch the store.
	accountID, err := valueobject.NewAccountID(in.AccountID)
	if err != nil {
		return nil, err
	}
	email, err := valueobject.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := valueobject.NewPassword(in.Password)
	if err != nil {
		return nil, err
	}

	existing, err := uc.Users.FindByAccountID(ctx, accountID.String())
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").With("account_id", accountID.String()).Wrap(err)
	}
	if existing != nil {
		return nil, errs.ErrAccountIDAlreadyExists
	}

	existing, err = uc.Users.FindByEmail(ctx, email.String())
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").With("account_id", accountID.String()).Wrap(err)
	}
	if existing != nil {
		return nil, errs.ErrEmailAlreadyExists
	}

	hash, err := uc.Hasher.Hash(password.Reveal())
	if err != nil {
		return nil, oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}

	u, err := entity.NewUser(entity.CreateUserParams{
		AccountID:    accountID.String(),
		Email:        email.String(),
		Name:         in.Name,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	saved, err := uc.Users.Save(ctx, u)
	if err != nil {
		if _, ok := errs.CodeOf(err); ok {
			return nil, err
		}
		return nil, oops.Code("USER_SAVE_FAILED").With("account_id", accountID.String()).Wrap(err)
	}
	return saved, nil
}

// outcomeOf classifies a failed registration: domain rejections versus
// everything else.
func outcomeOf(err error) string {
	if code, ok := errs.CodeOf(err); ok && errs.KindOf(code) != errs.KindUnknown {
		return OutcomeRejected
	}
	return OutcomeError
}
