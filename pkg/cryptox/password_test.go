package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2a$"))

	t.Run("correct password", func(t *testing.T) {
		require.NoError(t, VerifyPassword("correct horse", hash))
	})

	t.Run("wrong password", func(t *testing.T) {
		require.ErrorIs(t, VerifyPassword("battery staple", hash), ErrPasswordMismatch)
	})

	t.Run("salted", func(t *testing.T) {
		again, err := HashPassword("correct horse")
		require.NoError(t, err)
		require.NotEqual(t, hash, again)
	})
}

func TestVerifyPassword_2yPrefix(t *testing.T) {
	hash, err := HashPassword("123456")
	require.NoError(t, err)

	php := "$2y$" + strings.TrimPrefix(hash, "$2a$")
	require.NoError(t, VerifyPassword("123456", php))
}

func TestVerifyPassword_CorruptHash(t *testing.T) {
	err := VerifyPassword("x", "not-a-hash")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	require.Error(t, err)
}
