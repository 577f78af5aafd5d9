package event

import "time"

// Type names an auth event on the wire.
type Type string

const (
	UserRegistered Type = "user.registered"
	LoginSucceeded Type = "login.succeeded"
	LoginFailed    Type = "login.failed"
	AccountLocked  Type = "account.locked"
)

// AuthEvent is published after auth state changes. It never carries
// credentials or tokens.
type AuthEvent struct {
	Type       Type      `json:"type"`
	UserID     string    `json:"userId,omitempty"`
	AccountID  string    `json:"accountId"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
