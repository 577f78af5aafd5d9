package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
)

type LoginInput struct {
	AccountID string
	Password  string
	IP        string
}

// Login wraps AuthenticateUser with per (account id, ip) throttling.
type Login struct {
	Auth    *AuthenticateUser
	Limiter LoginLimiter
	Events  EventPublisher
	Metrics Metrics
	Logger  logrus.FieldLogger
}

func NewLogin(auth *AuthenticateUser, limiter LoginLimiter, events EventPublisher, metrics Metrics, logger logrus.FieldLogger) *Login {
	if events == nil {
		events = NoopPublisher{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Login{Auth: auth, Limiter: limiter, Events: events, Metrics: metrics, Logger: orDiscard(logger)}
}

// Execute rejects a locked pair before touching credentials. A failed
// attempt is recorded and, when it trips the lock, reported as
// ACCOUNT_TEMPORARILY_LOCKED instead of INVALID_CREDENTIALS. Success clears
// the pair's history.
func (uc *Login) Execute(ctx context.Context, in LoginInput) (*AuthenticateUserOutput, error) {
	log := uc.log(in)
	// Limiter bookkeeping must finish even if the client goes away.
	limitCtx := context.WithoutCancel(ctx)

	if err := uc.Limiter.AssertNotLocked(limitCtx, in.AccountID, in.IP); err != nil {
		if errors.Is(err, errs.ErrAccountTemporarilyLocked) {
			uc.Metrics.ObserveLogin(OutcomeLocked)
			log.Warn("login rejected: pair locked")
		} else {
			uc.Metrics.ObserveLogin(OutcomeError)
		}
		return nil, err
	}

	out, err := uc.Auth.Execute(ctx, AuthenticateUserInput{AccountID: in.AccountID, Password: in.Password})
	if err != nil {
		if !errors.Is(err, errs.ErrInvalidCredentials) {
			uc.Metrics.ObserveLogin(OutcomeError)
			return nil, err
		}
		return nil, uc.failed(limitCtx, log, in, err)
	}

	if err := uc.Limiter.Reset(limitCtx, in.AccountID, in.IP); err != nil {
		uc.Metrics.ObserveLogin(OutcomeError)
		return nil, err
	}

	uc.Metrics.ObserveLogin(OutcomeSuccess)
	log.WithField("user_id", out.User.ID()).Info("login succeeded")
	publish(ctx, uc.Events, log, event.AuthEvent{
		Type:       event.LoginSucceeded,
		UserID:     out.User.ID(),
		AccountID:  out.User.AccountID().String(),
		IP:         in.IP,
		OccurredAt: time.Now().UTC(),
	})
	return out, nil
}

func (uc *Login) failed(ctx context.Context, log logrus.FieldLogger, in LoginInput, authErr error) error {
	res, err := uc.Limiter.RecordFailure(ctx, in.AccountID, in.IP)
	if err != nil {
		uc.Metrics.ObserveLogin(OutcomeError)
		return err
	}

	now := time.Now().UTC()
	if res.Locked {
		uc.Metrics.ObserveLogin(OutcomeLocked)
		uc.Metrics.ObserveLockout()
		log.Warn("login failed: pair locked")
		publish(ctx, uc.Events, log, event.AuthEvent{
			Type:       event.AccountLocked,
			AccountID:  in.AccountID,
			IP:         in.IP,
			OccurredAt: now,
		})
		return errs.ErrAccountTemporarilyLocked
	}

	uc.Metrics.ObserveLogin(OutcomeInvalidCredentials)
	log.Warn("login failed: invalid credentials")
	publish(ctx, uc.Events, log, event.AuthEvent{
		Type:       event.LoginFailed,
		AccountID:  in.AccountID,
		IP:         in.IP,
		OccurredAt: now,
	})
	return authErr
}

func (uc *Login) log(in LoginInput) logrus.FieldLogger {
	return orDiscard(uc.Logger).WithFields(logrus.Fields{"account_id": in.AccountID, "ip": in.IP})
}
