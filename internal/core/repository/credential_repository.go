package repository

import (
	"context"

	"github.com/martijn/clientdesk/internal/core/domain"
)

// CredentialRepository persists API credentials. Like ClientRepository,
// FindByID returns (nil, nil) for an unknown id and writes report whether a
// row matched.
type CredentialRepository interface {
	Create(ctx context.Context, credential *domain.Credential) error
	FindByID(ctx context.Context, id string) (*domain.Credential, error)
	Update(ctx context.Context, credential *domain.Credential) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]domain.Credential, error)
}
