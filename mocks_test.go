package auth_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/oneblog/auth"
	"github.com/uptrace/bun"
)

// memStore is an in-memory Users implementation. Ids are handed out
// monotonically and never reused, matching the persistence contract.
type memStore struct {
	mu     sync.Mutex
	users  map[int64]*auth.User
	nextID int64
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[int64]*auth.User{},
		nextID: 1,
	}
}

var _ auth.Users = (*memStore)(nil)

func (s *memStore) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return s.GetByIDTx(ctx, nil, id)
}

func (s *memStore) GetByIDTx(_ context.Context, _ bun.IDB, id int64) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUnknownUser
	}
	clone := *user
	return &clone, nil
}

func (s *memStore) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return s.GetByUsernameTx(ctx, nil, username)
}

func (s *memStore) GetByUsernameTx(_ context.Context, _ bun.IDB, username string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUnknownUser
}

func (s *memStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.UsernameExistsTx(ctx, nil, username)
}

func (s *memStore) UsernameExistsTx(_ context.Context, _ bun.IDB, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) Count(ctx context.Context) (int, error) {
	return s.CountTx(ctx, nil)
}

func (s *memStore) CountTx(_ context.Context, _ bun.IDB) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *memStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return s.RegisterTx(ctx, nil, user)
}

func (s *memStore) RegisterTx(_ context.Context, _ bun.IDB, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.EnsureRole()
	user.ID = s.nextID
	s.nextID++
	clone := *user
	s.users[user.ID] = &clone
	return user, nil
}

func (s *memStore) UpdateRole(ctx context.Context, id int64, role auth.UserRole) (*auth.User, error) {
	return s.UpdateRoleTx(ctx, nil, id, role)
}

func (s *memStore) UpdateRoleTx(_ context.Context, _ bun.IDB, id int64, role auth.UserRole) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUnknownUser
	}
	user.Role = role
	clone := *user
	return &clone, nil
}

func (s *memStore) ToggleBan(ctx context.Context, id int64) (bool, error) {
	return s.ToggleBanTx(ctx, nil, id)
}

func (s *memStore) ToggleBanTx(_ context.Context, _ bun.IDB, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return false, auth.ErrUnknownUser
	}
	user.Banned = !user.Banned
	return user.Banned, nil
}

func (s *memStore) SuperAdminID(ctx context.Context) (int64, error) {
	return s.SuperAdminIDTx(ctx, nil)
}

func (s *memStore) SuperAdminIDTx(_ context.Context, _ bun.IDB) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) == 0 {
		return 0, auth.ErrUnknownUser
	}

	var min int64
	for id := range s.users {
		if min == 0 || id < min {
			min = id
		}
	}
	return min, nil
}

// memRepo wraps a memStore as a RepositoryManager. RunInTx simply runs
// the function since the store is already serialized by its mutex.
type memRepo struct {
	store *memStore
}

func newMemRepo() *memRepo {
	return &memRepo{store: newMemStore()}
}

var _ auth.RepositoryManager = (*memRepo)(nil)

func (m *memRepo) Users() auth.Users { return m.store }

func (m *memRepo) RunInTx(ctx context.Context, _ *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return f(ctx, bun.Tx{})
	}
}

func (m *memRepo) Validate() error { return nil }
func (m *memRepo) MustValidate()   {}

// capturingSink records every activity event for assertions.
type capturingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (s *capturingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) Events() []auth.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *capturingSink) EventTypes() []auth.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]auth.ActivityEventType, 0, len(s.events))
	for _, event := range s.events {
		types = append(types, event.EventType)
	}
	return types
}

// testIdentity is a plain Identity value for token tests.
type testIdentity struct {
	id       int64
	username string
	email    string
	role     string
	banned   bool
}

func (i testIdentity) ID() int64        { return i.id }
func (i testIdentity) Username() string { return i.username }
func (i testIdentity) Email() string    { return i.email }
func (i testIdentity) Role() string     { return i.role }
func (i testIdentity) Banned() bool     { return i.banned }

// testLogger discards everything.
type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// testConfig satisfies auth.Config for wiring authenticators in tests.
type testConfig struct {
	signingKey string
	expiration int
	issuer     string
	audience   []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey: "test-signing-key-for-auth-flows",
		expiration: 1,
		issuer:     "oneblog-test",
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetSigningMethod() string { return "HS256" }
func (c *testConfig) GetContextKey() string    { return "user" }
func (c *testConfig) GetTokenExpiration() int  { return c.expiration }
func (c *testConfig) GetTokenLookup() string   { return "header:Authorization" }
func (c *testConfig) GetAuthScheme() string    { return "Bearer" }
func (c *testConfig) GetIssuer() string        { return c.issuer }
func (c *testConfig) GetAudience() []string    { return c.audience }

// registerUser is a convenience for seeding accounts through the real
// registration path so the bootstrap rule applies.
func registerUser(ctx context.Context, repo auth.RepositoryManager, username, password string) (*auth.User, error) {
	handler := auth.NewRegisterUserHandler(repo)
	return handler.Execute(ctx, auth.RegisterUserMessage{
		Username: username,
		Password: password,
	})
}
