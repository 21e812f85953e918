package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	for _, password := range []string{"pw123", "contraseña", "a", strings.Repeat("x", 200)} {
		hash, err := HashPassword(password)
		require.NoError(t, err)
		assert.True(t, VerifyPassword(hash, password), "password %q should verify against its own hash", password)
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	h1, err := HashPassword("pw123")
	require.NoError(t, err)
	h2, err := HashPassword("pw123")
	require.NoError(t, err)

	// Different salts, different encodings, but both verify
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword(h1, "pw123"))
	assert.True(t, VerifyPassword(h2, "pw123"))
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)

	assert.False(t, VerifyPassword(hash, "pw124"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	malformed := []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=65536,t=3,p=4$onlyfourparts",
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=4$!!notbase64!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!notbase64!!",
	}
	for _, h := range malformed {
		assert.False(t, VerifyPassword(h, "pw123"), "hash %q should not verify", h)
	}
}
