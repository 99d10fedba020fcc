package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-enough-entropy"

func newHMACTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(ttl, "test-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("RequiresSecretKey", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, "iss", "aud", false, "", "", "")
		assert.Error(t, err)
	})

	t.Run("RequiresPositiveTTL", func(t *testing.T) {
		_, err := NewTokenService(0, "iss", "aud", false, "", "", testSecret)
		assert.Error(t, err)
	})

	t.Run("RSARequiresBothKeys", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, "iss", "aud", true, "", "", "")
		assert.Error(t, err)
	})
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)
	accountUUID := uuid.New().String()

	token, expiresAt, err := svc.IssueToken(42, accountUUID, "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.AccountID)
	assert.Equal(t, accountUUID, claims.AccountUUID)
	assert.Equal(t, "user", claims.AccountType)
	assert.NotEmpty(t, claims.TokenID)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestTokenIDsAreUnique(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	first, _, err := svc.IssueToken(1, uuid.New().String(), "user")
	require.NoError(t, err)
	second, _, err := svc.IssueToken(1, uuid.New().String(), "user")
	require.NoError(t, err)

	firstClaims, err := svc.ValidateToken(first)
	require.NoError(t, err)
	secondClaims, err := svc.ValidateToken(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.TokenID, secondClaims.TokenID)
}

func TestValidateTokenAtExpiry(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)
	issuedAt := time.Now().UTC()

	token, _, err := svc.IssueToken(7, uuid.New().String(), "company")
	require.NoError(t, err)

	t.Run("ValidJustBeforeExpiry", func(t *testing.T) {
		claims, err := svc.ValidateTokenAt(token, issuedAt.Add(59*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.AccountID)
		assert.Equal(t, "company", claims.AccountType)
	})

	t.Run("ExpiredJustAfterExpiry", func(t *testing.T) {
		claims, err := svc.ValidateTokenAt(token, issuedAt.Add(61*time.Minute))
		require.ErrorIs(t, err, ErrTokenExpired)
		assert.Nil(t, claims)
	})
}

func TestTamperedTokenFailsOnSignature(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	token, _, err := svc.IssueToken(9, uuid.New().String(), "user")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip a character in the signature so it no longer matches the payload.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	claims, err := svc.ValidateToken(tampered)
	require.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, claims)
}

func TestTamperedPayloadRejected(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	token, _, err := svc.IssueToken(9, uuid.New().String(), "user")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// A corrupted payload no longer decodes to valid claims.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	claims, err := svc.ValidateToken(tampered)
	require.ErrorIs(t, err, ErrTokenMalformed)
	assert.Nil(t, claims)
}

func TestMalformedToken(t *testing.T) {
	svc := newHMACTokenService(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "not.a.jwt"} {
		claims, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
		assert.Nil(t, claims)
	}
}

func TestTokenSignedWithDifferentKeyRejected(t *testing.T) {
	issuer := newHMACTokenService(t, time.Hour)
	verifier, err := NewTokenService(time.Hour, "test-issuer", "test-audience", false, "", "", "a-different-secret-key")
	require.NoError(t, err)

	token, _, err := issuer.IssueToken(3, uuid.New().String(), "user")
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, claims)
}

func TestVerifierInstancesAgree(t *testing.T) {
	issuer := newHMACTokenService(t, time.Hour)

	token, _, err := issuer.IssueToken(11, uuid.New().String(), "company")
	require.NoError(t, err)

	// A separately constructed verifier with the same key accepts the token.
	other := newHMACTokenService(t, time.Hour)
	claims, err := other.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(11), claims.AccountID)
}
