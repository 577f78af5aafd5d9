package application

import (
	"context"

	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/security"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

// TokenService issues and verifies access tokens.
type TokenService interface {
	Sign(s helpers.TokenSubject) (string, error)
	Verify(token string) (*helpers.TokenPayload, error)
}

// LoginLimiter throttles failed logins per (account id, ip) pair.
type LoginLimiter interface {
	AssertNotLocked(ctx context.Context, accountID, ip string) error
	RecordFailure(ctx context.Context, accountID, ip string) (security.RecordResult, error)
	Reset(ctx context.Context, accountID, ip string) error
}

// EventPublisher delivers auth events. Delivery is best-effort: callers log
// a failure and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, e event.AuthEvent) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, event.AuthEvent) error { return nil }

// Login and registration outcomes reported to Metrics.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeLocked             = "locked"
	OutcomeRejected           = "rejected"
	OutcomeError              = "error"
)

// Metrics counts use case outcomes.
type Metrics interface {
	ObserveLogin(outcome string)
	ObserveRegistration(outcome string)
	ObserveLockout()
}

// NoopMetrics discards every observation.
type NoopMetrics struct{}

func (NoopMetrics) ObserveLogin(string)        {}
func (NoopMetrics) ObserveRegistration(string) {}
func (NoopMetrics) ObserveLockout()            {}
