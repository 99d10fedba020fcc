package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) PasswordService {
	t.Helper()
	svc, err := NewPasswordService(bcrypt.MinCost)
	require.NoError(t, err)
	return svc
}

func TestNewPasswordService(t *testing.T) {
	t.Run("RejectsCostBelowRange", func(t *testing.T) {
		_, err := NewPasswordService(bcrypt.MinCost - 1)
		assert.Error(t, err)
	})

	t.Run("RejectsCostAboveRange", func(t *testing.T) {
		_, err := NewPasswordService(bcrypt.MaxCost + 1)
		assert.Error(t, err)
	})

	t.Run("AcceptsDefaultCost", func(t *testing.T) {
		_, err := NewPasswordService(bcrypt.DefaultCost)
		assert.NoError(t, err)
	})
}

func TestHashAndVerify(t *testing.T) {
	svc := newTestHasher(t)

	digest, err := svc.Hash("Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123!", digest)
	assert.True(t, strings.HasPrefix(digest, "$2"))

	ok, err := svc.Verify("Secret123!", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("WrongPassword", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSaltsPerCall(t *testing.T) {
	svc := newTestHasher(t)

	first, err := svc.Hash("Secret123!")
	require.NoError(t, err)
	second, err := svc.Hash("Secret123!")
	require.NoError(t, err)

	// Same plaintext, different digests, both verify
	assert.NotEqual(t, first, second)

	ok, err := svc.Verify("Secret123!", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("Secret123!", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashEmptyPassword(t *testing.T) {
	svc := newTestHasher(t)

	digest, err := svc.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
	assert.Empty(t, digest)
}

func TestVerifyCorruptedDigest(t *testing.T) {
	svc := newTestHasher(t)

	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$banana"} {
		ok, err := svc.Verify("Secret123!", digest)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrHashCorrupted, "digest %q", digest)
	}
}
