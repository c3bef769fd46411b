package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User is a directory profile. ID is the identity handle issued at sign-up.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether s parses as a bare address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// Account is the identity provider's record of a credential.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Provider     AuthProvider
	Subject      string
	CreatedAt    time.Time
}

// SessionUser is the opaque user record the identity provider emits.
type SessionUser struct {
	ID          string
	Email       string
	DisplayName string
}
