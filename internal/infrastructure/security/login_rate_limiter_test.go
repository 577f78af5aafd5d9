package security_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/security"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newLimiter() (*security.LoginRateLimiter, *security.MemoryStore, *fakeClock) {
	store := security.NewMemoryStore()
	clock := newFakeClock()
	return security.NewLoginRateLimiter(store, security.WithClock(clock.Now)), store, clock
}

func recordN(t *testing.T, l *security.LoginRateLimiter, clock *fakeClock, n int, accountID, ip string) security.RecordResult {
	t.Helper()
	var last security.RecordResult
	for i := 0; i < n; i++ {
		res, err := l.RecordFailure(context.Background(), accountID, ip)
		require.NoError(t, err)
		last = res
		clock.Advance(time.Second)
	}
	return last
}

func TestKey(t *testing.T) {
	assert.Equal(t, "testuser:127.0.0.1", security.Key("TestUser", "127.0.0.1"))
	assert.Equal(t, "a:::1", security.Key("A", "::1"))
}

func TestLoginRateLimiter_NineFailuresDoNotLock(t *testing.T) {
	l, _, clock := newLimiter()
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		res, err := l.RecordFailure(ctx, "testuser", "127.0.0.1")
		require.NoError(t, err)
		assert.False(t, res.Locked, "failure %d", i+1)
		clock.Advance(time.Second)
	}

	locked, err := l.IsLocked(ctx, "testuser", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLoginRateLimiter_TenthFailureLocks(t *testing.T) {
	l, _, clock := newLimiter()
	ctx := context.Background()

	res := recordN(t, l, clock, 10, "testuser", "127.0.0.1")
	assert.True(t, res.Locked)

	locked, err := l.IsLocked(ctx, "testuser", "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, locked)

	err = l.AssertNotLocked(ctx, "testuser", "127.0.0.1")
	assert.ErrorIs(t, err, errs.ErrAccountTemporarilyLocked)

	t.Run("account id is case-insensitive", func(t *testing.T) {
		err := l.AssertNotLocked(ctx, "TESTUSER", "127.0.0.1")
		assert.ErrorIs(t, err, errs.ErrAccountTemporarilyLocked)
	})

	t.Run("other ip is unaffected", func(t *testing.T) {
		assert.NoError(t, l.AssertNotLocked(ctx, "testuser", "127.0.0.2"))
	})
}

func TestLoginRateLimiter_LockExpires(t *testing.T) {
	l, _, clock := newLimiter()
	ctx := context.Background()

	// The lock starts at the 10th failure; recordN advances one more second
	// after it, so 10m+1ms from here is past the lock.
	recordN(t, l, clock, 10, "testuser", "127.0.0.1")

	locked, err := l.IsLocked(ctx, "testuser", "127.0.0.1")
	require.NoError(t, err)
	require.True(t, locked)

	clock.Advance(10*time.Minute + time.Millisecond)

	locked, err = l.IsLocked(ctx, "testuser", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, locked)
	assert.NoError(t, l.AssertNotLocked(ctx, "testuser", "127.0.0.1"))
}

func TestLoginRateLimiter_LockBoundaryIsExclusive(t *testing.T) {
	l, _, clock := newLimiter()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := l.RecordFailure(ctx, "u", "ip")
		require.NoError(t, err)
	}

	clock.Advance(security.LockDuration - time.Millisecond)
	locked, err := l.IsLocked(ctx, "u", "ip")
	require.NoError(t, err)
	assert.True(t, locked)

	clock.Advance(time.Millisecond)
	locked, err = l.IsLocked(ctx, "u", "ip")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLoginRateLimiter_ResetZeroesCounter(t *testing.T) {
	l, store, clock := newLimiter()
	ctx := context.Background()

	recordN(t, l, clock, 10, "testuser", "127.0.0.1")
	require.NoError(t, l.Reset(ctx, "testuser", "127.0.0.1"))
	assert.Equal(t, 0, store.Len())

	// Nine more failures must still stay below the threshold.
	for i := 0; i < 9; i++ {
		res, err := l.RecordFailure(ctx, "testuser", "127.0.0.1")
		require.NoError(t, err)
		assert.False(t, res.Locked)
	}
}

func TestLoginRateLimiter_OldFailuresFallOutOfWindow(t *testing.T) {
	l, _, clock := newLimiter()
	ctx := context.Background()

	recordN(t, l, clock, 9, "u", "ip")
	clock.Advance(security.FailureWindow)

	res, err := l.RecordFailure(ctx, "u", "ip")
	require.NoError(t, err)
	assert.False(t, res.Locked)
}

func TestLoginRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	l, store, clock := newLimiter()
	ctx := context.Background()

	_, err := l.RecordFailure(ctx, "stale-user", "127.0.0.1")
	require.NoError(t, err)
	_, ok, _ := store.Get(ctx, security.Key("stale-user", "127.0.0.1"))
	require.True(t, ok)

	clock.Advance(6 * time.Minute)
	_, err = l.RecordFailure(ctx, "fresh-user", "127.0.0.2")
	require.NoError(t, err)

	_, ok, _ = store.Get(ctx, security.Key("stale-user", "127.0.0.1"))
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestLoginRateLimiter_CleanupIsThrottled(t *testing.T) {
	l, store, clock := newLimiter()
	ctx := context.Background()

	_, err := l.RecordFailure(ctx, "warmup", "ip")
	require.NoError(t, err)

	stale := clock.Now().Add(-time.Hour)
	require.NoError(t, store.Set(ctx, "ghost:ip", security.RateLimitEntry{FailureTimestamps: []time.Time{stale}}))

	clock.Advance(security.CleanupInterval - time.Second)
	_, err = l.IsLocked(ctx, "other", "ip")
	require.NoError(t, err)
	_, ok, _ := store.Get(ctx, "ghost:ip")
	assert.True(t, ok, "sweep ran before the interval elapsed")

	clock.Advance(time.Second)
	_, err = l.IsLocked(ctx, "other", "ip")
	require.NoError(t, err)
	_, ok, _ = store.Get(ctx, "ghost:ip")
	assert.False(t, ok)
}

func TestLoginRateLimiter_ExpiredLockKeepsHistory(t *testing.T) {
	l, store, clock := newLimiter()
	ctx := context.Background()

	_, err := l.RecordFailure(ctx, "warmup-user", "127.0.0.9")
	require.NoError(t, err)

	now := clock.Now()
	expired := now.Add(-time.Millisecond)
	key := security.Key("testuser", "127.0.0.1")
	require.NoError(t, store.Set(ctx, key, security.RateLimitEntry{
		FailureTimestamps: []time.Time{now.Add(-time.Second)},
		LockedUntil:       &expired,
	}))

	locked, err := l.IsLocked(ctx, "testuser", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, locked)

	entry, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, entry.LockedUntil)
	assert.Len(t, entry.FailureTimestamps, 1)
}

func TestLoginRateLimiter_ExpiredLockWithoutHistoryIsDeleted(t *testing.T) {
	l, store, clock := newLimiter()
	ctx := context.Background()

	_, err := l.RecordFailure(ctx, "warmup-user", "127.0.0.9")
	require.NoError(t, err)

	expired := clock.Now().Add(-time.Millisecond)
	key := security.Key("testuser", "127.0.0.1")
	require.NoError(t, store.Set(ctx, key, security.RateLimitEntry{LockedUntil: &expired}))

	locked, err := l.IsLocked(ctx, "testuser", "127.0.0.1")
	require.NoError(t, err)
	assert.False(t, locked)

	_, ok, _ := store.Get(ctx, key)
	assert.False(t, ok)
}

func TestLoginRateLimiter_ConcurrentFailuresAreNotLost(t *testing.T) {
	defer goleak.VerifyNone(t)
	l, store, _ := newLimiter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < security.MaxFailures-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.RecordFailure(ctx, "u", "ip")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entry, ok, err := store.Get(ctx, security.Key("u", "ip"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, entry.FailureTimestamps, security.MaxFailures-1)

	res, err := l.RecordFailure(ctx, "u", "ip")
	require.NoError(t, err)
	assert.True(t, res.Locked)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) (security.RateLimitEntry, bool, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(security.RateLimitEntry), args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, entry security.RateLimitEntry) error {
	return m.Called(ctx, key, entry).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Range(ctx context.Context, fn func(string, security.RateLimitEntry) bool) error {
	return m.Called(ctx, fn).Error(0)
}

func TestLoginRateLimiter_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("store down")

	t.Run("get failure", func(t *testing.T) {
		store := new(mockStore)
		store.On("Range", mock.Anything, mock.Anything).Return(nil)
		store.On("Get", mock.Anything, "u:ip").Return(security.RateLimitEntry{}, false, boom)

		l := security.NewLoginRateLimiter(store)
		_, err := l.RecordFailure(ctx, "u", "ip")
		assert.ErrorIs(t, err, boom)
		store.AssertExpectations(t)
	})

	t.Run("range failure surfaces from IsLocked", func(t *testing.T) {
		store := new(mockStore)
		store.On("Range", mock.Anything, mock.Anything).Return(boom)

		l := security.NewLoginRateLimiter(store)
		_, err := l.IsLocked(ctx, "u", "ip")
		assert.ErrorIs(t, err, boom)
		store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("delete failure surfaces from Reset", func(t *testing.T) {
		store := new(mockStore)
		store.On("Delete", mock.Anything, "u:ip").Return(boom)

		l := security.NewLoginRateLimiter(store)
		assert.ErrorIs(t, l.Reset(ctx, "u", "ip"), boom)
	})
}

func TestLoginRateLimiter_CancelledContextStillCounts(t *testing.T) {
	l, store, clock := newLimiter()
	_, err := l.RecordFailure(context.Background(), "other", "10.0.0.9")
	require.NoError(t, err)

	// Make the lazy sweep due so it runs under the cancelled context.
	clock.Advance(security.CleanupInterval + time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var res security.RecordResult
	for i := 0; i < security.MaxFailures; i++ {
		res, err = l.RecordFailure(ctx, "alice_01", "203.0.113.7")
		require.NoError(t, err, "attempt %d", i+1)
	}
	assert.True(t, res.Locked)

	locked, err := l.IsLocked(ctx, "alice_01", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, locked)

	require.NoError(t, l.Reset(ctx, "alice_01", "203.0.113.7"))
	_, ok, err := store.Get(context.Background(), security.Key("alice_01", "203.0.113.7"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_RangeIgnoresCancellation(t *testing.T) {
	store := security.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "k", security.RateLimitEntry{FailureTimestamps: []time.Time{time.Now()}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seen := 0
	err := store.Range(ctx, func(string, security.RateLimitEntry) bool {
		seen++
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}
