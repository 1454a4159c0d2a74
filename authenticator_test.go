package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneblog/auth"
)

func seedAccount(t *testing.T, store *memStore, username, password string, role auth.UserRole) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := store.Register(context.Background(), &auth.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)

	return user
}

func TestAuther_Login(t *testing.T) {
	ctx := context.Background()

	store := newMemStore()
	alice := seedAccount(t, store, "alice", "password-alice", auth.RoleAdmin)
	bob := seedAccount(t, store, "bob", "password-bob", auth.RoleUser)

	provider := auth.NewUserProvider(store).WithLogger(testLogger{})

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		sink := &capturingSink{}
		auther := auth.NewAuthenticator(provider, newTestConfig()).
			WithLogger(testLogger{}).
			WithActivitySink(sink)

		token, err := auther.Login(ctx, "alice", "password-alice")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := auther.TokenService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject())
		assert.Equal(t, alice.ID, claims.UserID())
		assert.Equal(t, "ADMIN", claims.Role())

		types := sink.EventTypes()
		require.Len(t, types, 1)
		assert.Equal(t, auth.ActivityEventLoginSuccess, types[0])
	})

	t.Run("unknown user fails with UNKNOWN_USER and emits failure", func(t *testing.T) {
		sink := &capturingSink{}
		auther := auth.NewAuthenticator(provider, newTestConfig()).
			WithLogger(testLogger{}).
			WithActivitySink(sink)

		_, err := auther.Login(ctx, "nobody", "whatever-pass")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, "UNKNOWN_USER", richErr.TextCode)

		types := sink.EventTypes()
		require.Len(t, types, 1)
		assert.Equal(t, auth.ActivityEventLoginFailure, types[0])
	})

	t.Run("wrong password fails with INVALID_CREDENTIAL", func(t *testing.T) {
		auther := auth.NewAuthenticator(provider, newTestConfig()).WithLogger(testLogger{})

		_, err := auther.Login(ctx, "bob", "not-the-password")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, "INVALID_CREDENTIAL", richErr.TextCode)
	})

	t.Run("banned account fails with ACCOUNT_LOCKED before minting", func(t *testing.T) {
		_, err := store.ToggleBan(ctx, bob.ID)
		require.NoError(t, err)
		defer store.ToggleBan(ctx, bob.ID)

		sink := &capturingSink{}
		auther := auth.NewAuthenticator(provider, newTestConfig()).
			WithLogger(testLogger{}).
			WithActivitySink(sink)

		_, err = auther.Login(ctx, "bob", "password-bob")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, "ACCOUNT_LOCKED", richErr.TextCode)

		types := sink.EventTypes()
		require.Len(t, types, 1)
		assert.Equal(t, auth.ActivityEventLoginFailure, types[0])
	})
}

func TestAuther_IdentityFromToken(t *testing.T) {
	ctx := context.Background()

	store := newMemStore()
	carol := seedAccount(t, store, "carol", "password-carol", auth.RoleUser)

	provider := auth.NewUserProvider(store).WithLogger(testLogger{})
	auther := auth.NewAuthenticator(provider, newTestConfig()).WithLogger(testLogger{})

	t.Run("resolves the live record, not the claims snapshot", func(t *testing.T) {
		token, err := auther.Login(ctx, "carol", "password-carol")
		require.NoError(t, err)

		// role changes after the token was minted
		_, err = store.UpdateRole(ctx, carol.ID, auth.RoleAdmin)
		require.NoError(t, err)
		defer store.UpdateRole(ctx, carol.ID, auth.RoleUser)

		identity, err := auther.IdentityFromToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "ADMIN", identity.Role())
	})

	t.Run("rejects a tampered token", func(t *testing.T) {
		token, err := auther.Login(ctx, "carol", "password-carol")
		require.NoError(t, err)

		_, err = auther.IdentityFromToken(ctx, token+"tampered")
		require.Error(t, err)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, "TOKEN_INVALID_OR_EXPIRED", richErr.TextCode)
	})

	t.Run("records token validation outcomes", func(t *testing.T) {
		sink := &capturingSink{}
		audited := auth.NewAuthenticator(provider, newTestConfig()).
			WithLogger(testLogger{}).
			WithActivitySink(sink)

		token, err := audited.Login(ctx, "carol", "password-carol")
		require.NoError(t, err)

		_, err = audited.IdentityFromToken(ctx, token)
		require.NoError(t, err)

		_, err = audited.IdentityFromToken(ctx, token+"tampered")
		require.Error(t, err)

		var validations []auth.ActivityEvent
		for _, event := range sink.Events() {
			if event.EventType == auth.ActivityEventTokenValidation {
				validations = append(validations, event)
			}
		}

		require.Len(t, validations, 2)
		assert.Equal(t, true, validations[0].Metadata["valid"])
		assert.Equal(t, carol.ID, validations[0].UserID)
		assert.Equal(t, false, validations[1].Metadata["valid"])
	})

	t.Run("custom validator takes precedence", func(t *testing.T) {
		custom := auth.TokenValidatorFunc(func(string) (auth.AuthClaims, error) {
			return nil, auth.ErrTokenInvalidOrExpired
		})

		wrapped := auth.NewAuthenticator(provider, newTestConfig()).
			WithTokenValidator(custom)

		token, err := auther.Login(ctx, "carol", "password-carol")
		require.NoError(t, err)

		_, err = wrapped.IdentityFromToken(ctx, token)
		assert.Error(t, err)
	})
}
