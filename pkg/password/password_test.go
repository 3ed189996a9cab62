package password_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chirp/pkg/password"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := password.Hash("password1")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "password1", hash)

	assert.True(t, password.Verify("password1", hash))
	assert.False(t, password.Verify("password2", hash))
	assert.False(t, password.Verify("password1", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := password.Hash("password1")
	assert.NoError(t, err)
	second, err := password.Hash("password1")
	assert.NoError(t, err)

	// bcrypt embeds a random salt, so two hashes of the same input differ
	// while both still verify.
	assert.NotEqual(t, first, second)
	assert.True(t, password.Verify("password1", first))
	assert.True(t, password.Verify("password1", second))
}
