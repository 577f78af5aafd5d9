package application_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/event"
	"github.com/oksasatya/go-ddd-auth/internal/infrastructure/security"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	args := m.Called(ctx, u)
	if fn, ok := args.Get(0).(func(context.Context, *entity.User) (*entity.User, error)); ok {
		return fn(ctx, u)
	}
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) FindByAccountID(ctx context.Context, accountID string) (*entity.User, error) {
	return m.findCalled("FindByAccountID", ctx, accountID)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.findCalled("FindByEmail", ctx, email)
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return m.findCalled("FindByID", ctx, id)
}

func (m *mockUserStore) findCalled(method string, ctx context.Context, key string) (*entity.User, error) {
	args := m.MethodCalled(method, ctx, key)
	if v := args.Get(0); v != nil {
		return v.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockHasher struct {
	mock.Mock
}

func (m *mockHasher) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Compare(plain, hashed string) bool {
	return m.Called(plain, hashed).Bool(0)
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Sign(s helpers.TokenSubject) (string, error) {
	args := m.Called(s)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) Verify(token string) (*helpers.TokenPayload, error) {
	args := m.Called(token)
	if v := args.Get(0); v != nil {
		return v.(*helpers.TokenPayload), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) AssertNotLocked(ctx context.Context, accountID, ip string) error {
	return m.Called(ctx, accountID, ip).Error(0)
}

func (m *mockLimiter) RecordFailure(ctx context.Context, accountID, ip string) (security.RecordResult, error) {
	args := m.Called(ctx, accountID, ip)
	return args.Get(0).(security.RecordResult), args.Error(1)
}

func (m *mockLimiter) Reset(ctx context.Context, accountID, ip string) error {
	return m.Called(ctx, accountID, ip).Error(0)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.AuthEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e event.AuthEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []event.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// recordingMetrics counts observations by outcome.
type recordingMetrics struct {
	mu            sync.Mutex
	logins        map[string]int
	registrations map[string]int
	lockouts      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{logins: map[string]int{}, registrations: map[string]int{}}
}

func (m *recordingMetrics) ObserveLogin(outcome string) {
	m.mu.Lock()
	m.logins[outcome]++
	m.mu.Unlock()
}

func (m *recordingMetrics) ObserveRegistration(outcome string) {
	m.mu.Lock()
	m.registrations[outcome]++
	m.mu.Unlock()
}

func (m *recordingMetrics) ObserveLockout() {
	m.mu.Lock()
	m.lockouts++
	m.mu.Unlock()
}

func mustUser(accountID, email, name, hash string) *entity.User {
	u, err := entity.NewUser(entity.CreateUserParams{
		AccountID:    accountID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		panic(err)
	}
	return u
}
