package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func basic(credentials string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

func TestParseBasic(t *testing.T) {
	t.Run("it should decode username and token", func(t *testing.T) {
		username, token, err := ParseBasic(basic("alice:gho_token"))
		assert.NoError(t, err)
		assert.Equal(t, "alice", username)
		assert.Equal(t, "gho_token", token)
	})

	t.Run("it should keep colons inside the token", func(t *testing.T) {
		_, token, err := ParseBasic(basic("alice:a:b:c"))
		assert.NoError(t, err)
		assert.Equal(t, "a:b:c", token)
	})

	t.Run("it should accept a lower case scheme", func(t *testing.T) {
		username, _, err := ParseBasic("basic " + base64.StdEncoding.EncodeToString([]byte("alice:x")))
		assert.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	tests := []struct {
		name   string
		header string
		err    error
	}{
		{name: "empty header", header: "", err: ErrMissingCredentials},
		{name: "bearer scheme", header: "Bearer gho_token", err: ErrMalformedCredentials},
		{name: "no payload", header: "Basic", err: ErrMalformedCredentials},
		{name: "invalid base64", header: "Basic !!!", err: ErrMalformedCredentials},
		{name: "no colon", header: basic("alice"), err: ErrMalformedCredentials},
		{name: "empty username", header: basic(":token"), err: ErrMalformedCredentials},
		{name: "empty token", header: basic("alice:"), err: ErrMalformedCredentials},
	}

	for _, tt := range tests {
		t.Run("it should reject "+tt.name, func(t *testing.T) {
			_, _, err := ParseBasic(tt.header)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
