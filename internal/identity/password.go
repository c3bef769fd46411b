package identity

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tplans/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword enforces the minimum length and returns a bcrypt hash.
func HashPassword(password string) (string, error) {
	if len(password) < domain.MinPasswordLen {
		return "", fmt.Errorf("password must be at least %d characters: %w", domain.MinPasswordLen, domain.ErrWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports ErrInvalidCredential on mismatch.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
		return domain.ErrInvalidCredential
	}
	if err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	return nil
}
