package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("my-secure-password")
	require.NoError(t, err)
	assert.NotEqual(t, "my-secure-password", string(hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("my-secure-password")))
}

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	h1, _ := HashPassword("same-password")
	h2, _ := HashPassword("same-password")
	assert.NotEqual(t, h1, h2, "no salt")
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("correct-password")
	assert.NoError(t, VerifyPassword(hash, "correct-password"))
	assert.Error(t, VerifyPassword(hash, "wrong-password"))
	assert.Error(t, VerifyPassword([]byte("not-a-hash"), "correct-password"))
}

func TestNewUser(t *testing.T) {
	u, err := NewUser("  alice  ", "secret1", true)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.True(t, u.IsAdmin)
	assert.NoError(t, VerifyPassword(u.PasswordHash, "secret1"))

	_, err = NewUser("   ", "secret1", false)
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = NewUser(strings.Repeat("x", MaxUsernameLength+1), "secret1", false)
	assert.ErrorIs(t, err, ErrUsernameTooLong)

	_, err = NewUser("bob", "12345", false)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
