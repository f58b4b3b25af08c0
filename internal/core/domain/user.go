package domain

import (
	"fmt"
	"strings"
	"time"
)

// MinPasswordLength applies to every operator password
const MinPasswordLength = 8

// User is an operator who logs in with a password through the
// authorization_code grant.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(username, passwordHash string) (*User, error) {
	if username == "" || strings.ContainsFunc(username, isSpace) {
		return nil, NewValidationError("username", "Username must be non-empty and contain no whitespace")
	}

	now := time.Now().UTC().Truncate(timestampPrecision)
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidatePassword checks a plain password before it is hashed
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC().Truncate(timestampPrecision)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
