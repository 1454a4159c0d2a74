package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oneblog/auth"
)

func TestIdentityContext(t *testing.T) {
	t.Run("round trips an identity", func(t *testing.T) {
		identity := testIdentity{id: 42, username: "alice", role: "ADMIN"}

		ctx := auth.WithContext(context.Background(), identity)

		got, ok := auth.FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, int64(42), got.ID())
		assert.Equal(t, "alice", got.Username())
	})

	t.Run("empty context has no identity", func(t *testing.T) {
		_, ok := auth.FromContext(context.Background())
		assert.False(t, ok)
	})
}

func TestIsAdmin(t *testing.T) {
	t.Run("admin identity", func(t *testing.T) {
		ctx := auth.WithContext(context.Background(), testIdentity{id: 1, role: "ADMIN"})
		assert.True(t, auth.IsAdmin(ctx))
	})

	t.Run("regular identity", func(t *testing.T) {
		ctx := auth.WithContext(context.Background(), testIdentity{id: 2, role: "USER"})
		assert.False(t, auth.IsAdmin(ctx))
	})

	t.Run("anonymous context", func(t *testing.T) {
		assert.False(t, auth.IsAdmin(context.Background()))
	})
}

func TestHasAuthority(t *testing.T) {
	ctx := auth.WithContext(context.Background(), testIdentity{id: 1, role: "ADMIN"})

	assert.True(t, auth.HasAuthority(ctx, "ADMIN"))
	assert.True(t, auth.HasAuthority(ctx, "ROLE_ADMIN"))
	assert.False(t, auth.HasAuthority(ctx, "USER"))
	assert.False(t, auth.HasAuthority(context.Background(), "ADMIN"))
}
