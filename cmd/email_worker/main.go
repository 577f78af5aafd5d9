package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/config"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/events"
	pginfra "github.com/oksasatya/go-ddd-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/security"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("postgres")
	}
	defer pool.Close()

	conn, ch, err := helpers.DialRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq")
	}
	defer func() { _ = conn.Close() }()
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	msgs, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	notifier := mailer.NewNotifier(
		mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		pginfra.NewUserStore(pool),
		security.LockDuration,
		logger,
	)

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("email worker listening")
	done := make(chan struct{})
	go func() {
		defer close(done)
		consume(ctx, msgs, notifier, logger)
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// delivery is the part of amqp.Delivery the consumer needs.
type delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func consume(ctx context.Context, msgs <-chan amqp.Delivery, n *mailer.Notifier, logger logrus.FieldLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			handle(ctx, msg, msg.Body, n, logger)
		}
	}
}

// handle acks delivered or ignored events, drops malformed or permanently
// failing ones and requeues the rest.
func handle(ctx context.Context, d delivery, body []byte, n *mailer.Notifier, logger logrus.FieldLogger) {
	e, err := events.Decode(body)
	if err != nil {
		logger.WithError(err).Warn("bad message")
		_ = d.Nack(false, false)
		return
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := n.Handle(c, e); err != nil {
		logger.WithError(err).WithField("type", string(e.Type)).Error("notification failed")
		_ = d.Nack(false, !mailer.Permanent(err))
		return
	}
	_ = d.Ack(false)
}
