// Package services provides technical concerns like credential hashing and token management
package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password service error constants
var (
	ErrEmptyPassword = errors.New("password must not be empty")
	ErrHashCorrupted = errors.New("stored password hash is corrupted")
)

// PasswordService handles one-way hashing and verification of plaintext
// passwords. Hashing salts per call, so two digests of the same plaintext
// differ while both verify.
type PasswordService interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// PasswordServiceImpl implements PasswordService over bcrypt
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a new password service with the given bcrypt cost
func NewPasswordService(cost int) (PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &PasswordServiceImpl{cost: cost}, nil
}

// Hash produces a salted one-way digest of the plaintext
func (s *PasswordServiceImpl) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether digest was produced from plaintext. A mismatch is
// (false, nil); a digest that is not a well-formed bcrypt output fails with
// ErrHashCorrupted so callers can distinguish bad credentials from corrupted
// storage.
func (s *PasswordServiceImpl) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("%w: %v", ErrHashCorrupted, err)
}
