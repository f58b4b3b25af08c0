package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthCode is a single-use code an operator trades for an access token.
// It carries the scopes the operator asked for at login.
type AuthCode struct {
	Code      string
	Username  string
	Scopes    Scopes
	ExpiresAt time.Time
	CreatedAt time.Time
}

func NewAuthCode(username string, scopes Scopes, ttl time.Duration) *AuthCode {
	now := time.Now().UTC().Truncate(timestampPrecision)
	return &AuthCode{
		Code:      uuid.NewString(),
		Username:  username,
		Scopes:    scopes,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func (a *AuthCode) ExpiredAt(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}
