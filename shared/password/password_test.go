package password_test

import (
	"errors"
	"localguide/shared/password"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name          string
		password      string
		expectedError error
	}{
		{name: "valid password", password: "validPassword123"},
		{name: "empty password", password: "", expectedError: password.ErrEmptyPassword},
		{name: "longer than bcrypt reads", password: strings.Repeat("a", password.MaxLength+1), expectedError: password.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)

			if tt.expectedError != nil {
				if !errors.Is(err, tt.expectedError) {
					t.Fatalf("expected %v, got %v", tt.expectedError, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !strings.HasPrefix(hash, "$2a$") {
				t.Errorf("expected bcrypt hash, got %s", hash)
			}

			cost, err := bcrypt.Cost([]byte(hash))
			if err != nil {
				t.Fatalf("failed to read cost: %v", err)
			}

			if cost != password.DefaultCost {
				t.Errorf("expected cost %d, got %d", password.DefaultCost, cost)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("correct-horse")
	if err != nil {
		t.Fatalf("failed to hash: %v", err)
	}

	tests := []struct {
		name          string
		password      string
		hash          string
		expectedError error
	}{
		{name: "matching password", password: "correct-horse", hash: hash},
		{name: "wrong password", password: "battery-staple", hash: hash, expectedError: password.ErrInvalidPassword},
		{name: "empty password", password: "", hash: hash, expectedError: password.ErrInvalidPassword},
		{name: "empty hash", password: "correct-horse", hash: "", expectedError: password.ErrInvalidPassword},
		{name: "truncated hash", password: "correct-horse", hash: "$2a$12$abc", expectedError: password.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)

			if tt.expectedError == nil && err != nil {
				t.Errorf("expected no error, got %v", err)
			}

			if tt.expectedError != nil && !errors.Is(err, tt.expectedError) {
				t.Errorf("expected %v, got %v", tt.expectedError, err)
			}
		})
	}
}
