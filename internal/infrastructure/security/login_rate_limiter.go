// Package security holds the login throttling used against credential
// stuffing.
package security

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
)

const (
	FailureWindow   = 5 * time.Minute
	MaxFailures     = 10
	LockDuration    = 10 * time.Minute
	CleanupInterval = 60 * time.Second
)

// RecordResult reports whether a recorded failure tripped the lock.
type RecordResult struct {
	Locked bool
}

// LoginRateLimiter tracks failed logins per (account id, ip) pair.
// Operations ignore caller cancellation: a client that disconnects mid-login
// still has its failure counted.
type LoginRateLimiter struct {
	store RateLimitStore
	now   func() time.Time

	// mu serializes every read-modify-write against the store, including the
	// cleanup sweep and lastCleanup.
	mu          sync.Mutex
	lastCleanup time.Time
}

// LimiterOption customizes a LoginRateLimiter.
type LimiterOption func(*LoginRateLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *LoginRateLimiter) { l.now = now }
}

func NewLoginRateLimiter(store RateLimitStore, opts ...LimiterOption) *LoginRateLimiter {
	l := &LoginRateLimiter{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key derives the store key: account id is case-insensitive, ip is raw.
func Key(accountID, ip string) string {
	return strings.ToLower(accountID) + ":" + ip
}

// RecordFailure appends a failure and locks the pair once MaxFailures land
// inside FailureWindow. Locking clears the failure history.
func (l *LoginRateLimiter) RecordFailure(ctx context.Context, accountID, ip string) (RecordResult, error) {
	ctx = context.WithoutCancel(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if err := l.cleanup(ctx, now); err != nil {
		return RecordResult{}, err
	}

	key := Key(accountID, ip)
	entry, _, err := l.store.Get(ctx, key)
	if err != nil {
		return RecordResult{}, wrapStoreErr(err, "get", key)
	}

	next := append(recent(entry.FailureTimestamps, now), now)
	if len(next) >= MaxFailures {
		until := now.Add(LockDuration)
		if err := l.store.Set(ctx, key, RateLimitEntry{LockedUntil: &until}); err != nil {
			return RecordResult{}, wrapStoreErr(err, "set", key)
		}
		return RecordResult{Locked: true}, nil
	}

	entry.FailureTimestamps = next
	if err := l.store.Set(ctx, key, entry); err != nil {
		return RecordResult{}, wrapStoreErr(err, "set", key)
	}
	return RecordResult{Locked: false}, nil
}

// IsLocked reports an active lock. An expired lock is cleared on the way,
// keeping whatever failure history the entry still has.
func (l *LoginRateLimiter) IsLocked(ctx context.Context, accountID, ip string) (bool, error) {
	ctx = context.WithoutCancel(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if err := l.cleanup(ctx, now); err != nil {
		return false, err
	}

	key := Key(accountID, ip)
	entry, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return false, wrapStoreErr(err, "get", key)
	}
	if !ok || entry.LockedUntil == nil {
		return false, nil
	}
	if entry.LockedUntil.After(now) {
		return true, nil
	}

	entry.LockedUntil = nil
	if entry.empty() {
		err = l.store.Delete(ctx, key)
	} else {
		err = l.store.Set(ctx, key, entry)
	}
	if err != nil {
		return false, wrapStoreErr(err, "unlock", key)
	}
	return false, nil
}

// AssertNotLocked fails with errs.ErrAccountTemporarilyLocked while the pair
// is locked.
func (l *LoginRateLimiter) AssertNotLocked(ctx context.Context, accountID, ip string) error {
	locked, err := l.IsLocked(ctx, accountID, ip)
	if err != nil {
		return err
	}
	if locked {
		return errs.ErrAccountTemporarilyLocked
	}
	return nil
}

// Reset drops the pair's entry.
func (l *LoginRateLimiter) Reset(ctx context.Context, accountID, ip string) error {
	ctx = context.WithoutCancel(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()

	key := Key(accountID, ip)
	if err := l.store.Delete(ctx, key); err != nil {
		return wrapStoreErr(err, "delete", key)
	}
	return nil
}

// cleanup sweeps the store at most once per CleanupInterval. Caller holds mu.
func (l *LoginRateLimiter) cleanup(ctx context.Context, now time.Time) error {
	if now.Sub(l.lastCleanup) < CleanupInterval {
		return nil
	}

	var opErr error
	err := l.store.Range(ctx, func(key string, entry RateLimitEntry) bool {
		entry.FailureTimestamps = recent(entry.FailureTimestamps, now)
		if entry.LockedUntil != nil && !entry.LockedUntil.After(now) {
			entry.LockedUntil = nil
		}
		if entry.empty() {
			opErr = l.store.Delete(ctx, key)
		} else {
			opErr = l.store.Set(ctx, key, entry)
		}
		if opErr != nil {
			opErr = wrapStoreErr(opErr, "cleanup", key)
			return false
		}
		return true
	})
	if err != nil {
		return wrapStoreErr(err, "range", "")
	}
	if opErr != nil {
		return opErr
	}

	l.lastCleanup = now
	return nil
}

// recent keeps timestamps no older than FailureWindow.
func recent(ts []time.Time, now time.Time) []time.Time {
	out := make([]time.Time, 0, len(ts)+1)
	for _, t := range ts {
		if now.Sub(t) <= FailureWindow {
			out = append(out, t)
		}
	}
	return out
}

func wrapStoreErr(err error, op, key string) error {
	return oops.Code("RATE_LIMIT_STORE").With("op", op).With("key", key).Wrap(err)
}
