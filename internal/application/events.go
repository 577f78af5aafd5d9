package application

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
)

// publish hands e to p and only logs a failure.
func publish(ctx context.Context, p EventPublisher, logger logrus.FieldLogger, e event.AuthEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"event":      string(e.Type),
			"account_id": e.AccountID,
		}).Warn("publish auth event failed")
	}
}

// orDiscard returns l, or a logger that writes nowhere when l is nil.
func orDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	return quiet
}
