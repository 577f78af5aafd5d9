// Package events moves auth events over RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/samber/oops"

	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
)

// jsonPublisher is satisfied by helpers.RabbitPublisher.
type jsonPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// RabbitPublisher sends auth events as JSON messages.
type RabbitPublisher struct {
	pub     jsonPublisher
	timeout time.Duration
}

func NewRabbitPublisher(pub jsonPublisher, timeout time.Duration) *RabbitPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RabbitPublisher{pub: pub, timeout: timeout}
}

// Publish bounds the broker call by the publisher timeout so a slow broker
// cannot stall a login.
func (p *RabbitPublisher) Publish(ctx context.Context, e event.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.pub.PublishJSON(ctx, string(e.Type), e); err != nil {
		return oops.Code("AUTH_EVENT_PUBLISH").With("type", string(e.Type)).Wrap(err)
	}
	return nil
}

// Decode parses a message body published by RabbitPublisher.
func Decode(body []byte) (event.AuthEvent, error) {
	var e event.AuthEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return event.AuthEvent{}, oops.Code("AUTH_EVENT_DECODE").Wrap(err)
	}
	if e.Type == "" {
		return event.AuthEvent{}, oops.Code("AUTH_EVENT_DECODE").Errorf("auth event without type")
	}
	return e, nil
}
