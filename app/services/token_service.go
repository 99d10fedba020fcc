// Package services provides technical concerns like credential hashing and token management
package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sahmex/identity/utils"
)

// Token service error constants
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("invalid token signature")
	ErrTokenMalformed = errors.New("malformed token")
)

// TokenService issues and verifies self-contained signed tokens. Verification
// is a pure function of (token, now, signing key): no I/O, no store lookup,
// safe to run from any number of verifier instances.
type TokenService interface {
	IssueToken(accountID uint, accountUUID string, accountType string) (token string, expiresAt time.Time, err error)
	ValidateToken(token string) (*TokenClaims, error)
	ValidateTokenAt(token string, now time.Time) (*TokenClaims, error)
}

// TokenClaims represents the decoded identity claims of a verified token
type TokenClaims struct {
	AccountID   uint      `json:"account_id"`
	AccountUUID string    `json:"account_uuid"`
	AccountType string    `json:"account_type"`
	TokenID     string    `json:"jti"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenServiceImpl implements TokenService
type TokenServiceImpl struct {
	tokenTTL      time.Duration
	signingMethod jwt.SigningMethod
	privateKey    *rsa.PrivateKey
	publicKey     *rsa.PublicKey
	secretKey     []byte
	useRSAKeys    bool
	issuer        string
	audience      string
}

// NewTokenService creates a new token service. The signing key is fixed at
// construction; multiple verifier instances built from the same key material
// behave identically.
func NewTokenService(tokenTTL time.Duration, issuer, audience string, useRSAKeys bool, privateKeyPEM, publicKeyPEM, secretKey string) (TokenService, error) {
	var privateKey *rsa.PrivateKey
	var publicKey *rsa.PublicKey
	var secretKeyBytes []byte
	var signingMethod jwt.SigningMethod

	if useRSAKeys {
		var err error
		privateKey, publicKey, err = parseRSAKeys(privateKeyPEM, publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA keys: %w", err)
		}
		signingMethod = jwt.SigningMethodRS256
	} else {
		if secretKey == "" {
			return nil, fmt.Errorf("secret key is required when not using RSA keys")
		}
		secretKeyBytes = []byte(secretKey)
		signingMethod = jwt.SigningMethodHS256
	}

	if tokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive")
	}

	return &TokenServiceImpl{
		tokenTTL:      tokenTTL,
		signingMethod: signingMethod,
		privateKey:    privateKey,
		publicKey:     publicKey,
		secretKey:     secretKeyBytes,
		useRSAKeys:    useRSAKeys,
		issuer:        issuer,
		audience:      audience,
	}, nil
}

// parseRSAKeys parses RSA private and public keys from PEM format
func parseRSAKeys(privateKeyPEM, publicKeyPEM string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, nil, fmt.Errorf("both private and public keys are required")
	}

	privateKeyBlock, _ := pem.Decode([]byte(privateKeyPEM))
	if privateKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode private key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(privateKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyBlock, _ := pem.Decode([]byte(publicKeyPEM))
	if publicKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(publicKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("public key is not RSA")
	}

	return privateKey, rsaPublicKey, nil
}

// IssueToken generates a signed token carrying the account's identity and
// role with a fixed validity window.
func (s *TokenServiceImpl) IssueToken(accountID uint, accountUUID string, accountType string) (string, time.Time, error) {
	now := utils.UTCNow()
	expiresAt := now.Add(s.tokenTTL)

	tokenID, err := generateTokenID()
	if err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(accountID), 10),
		"role": accountType,
		"uuid": accountUUID,
		"jti":  tokenID,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
		"iss":  s.issuer,
		"aud":  s.audience,
	}

	token, err := s.generateToken(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

// ValidateToken validates a token against the current wall clock
func (s *TokenServiceImpl) ValidateToken(token string) (*TokenClaims, error) {
	return s.ValidateTokenAt(token, utils.UTCNow())
}

// ValidateTokenAt validates a token as of the given instant. The signature is
// verified before any claim is read, so forged tokens never reach claim
// extraction.
func (s *TokenServiceImpl) ValidateTokenAt(token string, now time.Time) (*TokenClaims, error) {
	parserOpts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}

	var parsedToken *jwt.Token
	var err error

	if s.useRSAKeys {
		parsedToken, err = jwt.Parse(token, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.publicKey, nil
		}, parserOpts...)
	} else {
		parsedToken, err = jwt.Parse(token, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		}, parserOpts...)
	}

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}

	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrTokenMalformed
	}

	accountID, parseErr := strconv.ParseUint(subject, 10, 64)
	if parseErr != nil {
		return nil, ErrTokenMalformed
	}

	role, ok := claims["role"].(string)
	if !ok {
		return nil, ErrTokenMalformed
	}

	accountUUID, ok := claims["uuid"].(string)
	if !ok {
		return nil, ErrTokenMalformed
	}

	tokenID, ok := claims["jti"].(string)
	if !ok {
		return nil, ErrTokenMalformed
	}

	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrTokenMalformed
	}

	expiresAt, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTokenMalformed
	}

	if now.After(time.Unix(int64(expiresAt), 0)) {
		return nil, ErrTokenExpired
	}

	return &TokenClaims{
		AccountID:   uint(accountID),
		AccountUUID: accountUUID,
		AccountType: role,
		TokenID:     tokenID,
		IssuedAt:    time.Unix(int64(issuedAt), 0).UTC(),
		ExpiresAt:   time.Unix(int64(expiresAt), 0).UTC(),
	}, nil
}

// generateToken creates a signed JWT token
func (s *TokenServiceImpl) generateToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(s.signingMethod, claims)

	var signedString string
	var err error

	if s.useRSAKeys {
		signedString, err = token.SignedString(s.privateKey)
	} else {
		signedString, err = token.SignedString(s.secretKey)
	}

	if err != nil {
		return "", err
	}

	return signedString, nil
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
