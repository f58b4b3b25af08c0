package repository

import (
	"context"
	"time"

	"github.com/martijn/clientdesk/internal/core/domain"
)

// AuthCodeRepository stores pending login codes
type AuthCodeRepository interface {
	Create(ctx context.Context, code *domain.AuthCode) error

	// Take removes the code and returns it. It returns nil when the code is
	// unknown or another caller took it first, so a code is redeemed once.
	Take(ctx context.Context, code string) (*domain.AuthCode, error)

	// DeleteExpired drops codes that expired at or before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
