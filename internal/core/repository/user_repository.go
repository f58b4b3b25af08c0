package repository

import (
	"context"

	"github.com/martijn/clientdesk/internal/core/domain"
)

// UserRepository persists operators. A duplicate username fails Create
// with domain.ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (bool, error)
	Delete(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]domain.User, error)
}
