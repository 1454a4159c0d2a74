package auth_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneblog/auth"
)

func TestRegistrationCreatePayload_Validate(t *testing.T) {
	valid := auth.RegistrationCreatePayload{
		Username: "alice",
		Password: "password-alice",
		Email:    "alice@example.com",
	}

	t.Run("accepts a well formed payload", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("accepts a payload without optional profile fields", func(t *testing.T) {
		payload := auth.RegistrationCreatePayload{Username: "alice", Password: "password-alice"}
		assert.NoError(t, payload.Validate())
	})

	t.Run("requires a username", func(t *testing.T) {
		payload := valid
		payload.Username = ""
		assert.Error(t, payload.Validate())
	})

	t.Run("rejects a too-short username", func(t *testing.T) {
		payload := valid
		payload.Username = "al"
		assert.Error(t, payload.Validate())
	})

	t.Run("requires a password of at least 8 characters", func(t *testing.T) {
		payload := valid
		payload.Password = "short"
		assert.Error(t, payload.Validate())
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		payload := valid
		payload.Email = "not-an-email"
		assert.Error(t, payload.Validate())
	})
}

func TestRegistrationCreatePayload_Decode(t *testing.T) {
	t.Run("accepts the full camelCase registration body", func(t *testing.T) {
		body := `{
			"username": "alice",
			"password": "password-alice",
			"email": "alice@example.com",
			"firstName": "Alice",
			"lastName": "Smith",
			"dateOfBirth": "1990-04-02",
			"avatarUrl": "https://cdn.example.com/alice.png",
			"nickname": "al",
			"aboutMe": "hello"
		}`

		var payload auth.RegistrationCreatePayload
		require.NoError(t, json.Unmarshal([]byte(body), &payload))
		require.NoError(t, payload.Validate())

		assert.Equal(t, "alice", payload.Username)
		assert.Equal(t, "Alice", payload.FirstName)
		assert.Equal(t, "Smith", payload.LastName)
		assert.Equal(t, "https://cdn.example.com/alice.png", payload.AvatarURL)
		assert.Equal(t, "al", payload.Nickname)
		assert.Equal(t, "hello", payload.AboutMe)

		dob := payload.DateOfBirthTime()
		require.NotNil(t, dob)
		assert.Equal(t, time.Date(1990, time.April, 2, 0, 0, 0, 0, time.UTC), dob.UTC())
	})

	t.Run("omitted date of birth stays nil", func(t *testing.T) {
		payload := auth.RegistrationCreatePayload{Username: "alice", Password: "password-alice"}
		require.NoError(t, payload.Validate())
		assert.Nil(t, payload.DateOfBirthTime())
	})

	t.Run("rejects a malformed date of birth", func(t *testing.T) {
		payload := auth.RegistrationCreatePayload{
			Username:    "alice",
			Password:    "password-alice",
			DateOfBirth: "02/04/1990",
		}
		assert.Error(t, payload.Validate())
	})
}

func TestLoginRequest_Validate(t *testing.T) {
	t.Run("accepts username and password", func(t *testing.T) {
		payload := auth.LoginRequest{Username: "alice", Password: "password-alice"}
		assert.NoError(t, payload.Validate())
	})

	t.Run("requires both fields", func(t *testing.T) {
		assert.Error(t, auth.LoginRequest{Username: "alice"}.Validate())
		assert.Error(t, auth.LoginRequest{Password: "password-alice"}.Validate())
	})
}
