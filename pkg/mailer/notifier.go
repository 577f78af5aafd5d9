package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

// ErrUndeliverable marks a notification that fails the same way on every
// attempt.
var ErrUndeliverable = errors.New("undeliverable notification")

// Permanent reports whether retrying err cannot succeed: rendering failures
// and stored data that no longer validates.
func Permanent(err error) bool {
	if errors.Is(err, ErrUndeliverable) {
		return true
	}
	_, ok := errs.CodeOf(err)
	return ok
}

// AccountLookup resolves the mailbox for events that do not carry one.
type AccountLookup interface {
	FindByAccountID(ctx context.Context, accountID string) (*entity.User, error)
}

// Notifier turns auth events into mail. Only user.registered and
// account.locked produce a message; every other type is ignored.
type Notifier struct {
	Sender       Sender
	Accounts     AccountLookup
	LockDuration time.Duration
	Logger       logrus.FieldLogger
}

func NewNotifier(sender Sender, accounts AccountLookup, lockDuration time.Duration, logger logrus.FieldLogger) *Notifier {
	return &Notifier{Sender: sender, Accounts: accounts, LockDuration: lockDuration, Logger: logger}
}

// Handle sends the mail for e. A returned error means delivery may succeed
// on retry.
func (n *Notifier) Handle(ctx context.Context, e event.AuthEvent) error {
	job, ok, err := n.compose(ctx, e)
	if err != nil || !ok {
		return err
	}
	if err := n.Sender.Send(ctx, job); err != nil {
		return err
	}
	helpers.LogInfo(n.Logger, "notification sent", logrus.Fields{
		"template":   job.Template,
		"account_id": e.AccountID,
	})
	return nil
}

func (n *Notifier) compose(ctx context.Context, e event.AuthEvent) (EmailJob, bool, error) {
	switch e.Type {
	case event.UserRegistered:
		if e.Email == "" {
			n.skip(e, "event has no email")
			return EmailJob{}, false, nil
		}
		job, err := Render(TemplateWelcome, e.Email, TemplateData{Name: e.Name, AccountID: e.AccountID})
		return job, err == nil, err

	case event.AccountLocked:
		u, err := n.Accounts.FindByAccountID(ctx, e.AccountID)
		if err != nil {
			return EmailJob{}, false, oops.Code("MAIL_ACCOUNT_LOOKUP").With("account_id", e.AccountID).Wrap(err)
		}
		if u == nil {
			n.skip(e, "account not found")
			return EmailJob{}, false, nil
		}
		job, err := Render(TemplateLockout, u.Email().String(), TemplateData{
			Name:      u.Name(),
			AccountID: u.AccountID().String(),
			IP:        e.IP,
			Until:     formatUntil(e.OccurredAt.Add(n.LockDuration)),
		})
		return job, err == nil, err

	default:
		return EmailJob{}, false, nil
	}
}

func (n *Notifier) skip(e event.AuthEvent, reason string) {
	if n.Logger == nil {
		return
	}
	n.Logger.WithFields(logrus.Fields{
		"type":       string(e.Type),
		"account_id": e.AccountID,
		"reason":     reason,
	}).Warn("notification skipped")
}
