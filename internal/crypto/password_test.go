package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lightHasher keeps tests fast.
func lightHasher() PasswordHasher {
	return &argon2Hasher{argonTime: 1, argonMemory: 1024, argonThreads: 1, argonKeyLen: 32}
}

func TestHash_Format(t *testing.T) {
	encoded, err := lightHasher().Hash("secret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.Len(t, strings.Split(encoded, "$"), 6)
}

func TestHash_SaltedPerCall(t *testing.T) {
	h := lightHasher()

	a, err := h.Hash("secret")
	require.NoError(t, err)
	b, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_RoundTrip(t *testing.T) {
	h := lightHasher()
	encoded, err := h.Hash("secret")
	require.NoError(t, err)

	ok, err := h.Verify("secret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("Secret", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_UsesStoredParameters(t *testing.T) {
	encoded, err := lightHasher().Hash("secret")
	require.NoError(t, err)

	ok, err := NewPasswordHasher().Verify("secret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}

	for _, encoded := range tests {
		t.Run(encoded, func(t *testing.T) {
			ok, err := lightHasher().Verify("secret", encoded)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrMalformedHash)
		})
	}
}
