package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt work factor used for every stored credential.
	DefaultCost = 12
	// MaxLength is the number of bytes bcrypt actually reads.
	MaxLength = 72
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrTooLong         = errors.New("password exceeds 72 bytes")
)

// Hash returns the bcrypt digest stored in users.password.
func Hash(plain string) (string, error) {
	switch {
	case plain == "":
		return "", ErrEmptyPassword
	case len(plain) > MaxLength:
		return "", ErrTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plain), DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify reports ErrInvalidPassword for any mismatch, including an empty input or digest.
func Verify(plain, digest string) error {
	if plain == "" || digest == "" {
		return ErrInvalidPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrHashTooShort):
		return ErrInvalidPassword
	default:
		return fmt.Errorf("failed to verify password: %w", err)
	}
}
