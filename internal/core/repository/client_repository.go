package repository

import (
	"context"

	"github.com/martijn/clientdesk/internal/api/util"
	"github.com/martijn/clientdesk/internal/core/domain"
)

// ClientFilter narrows a client listing
type ClientFilter struct {
	util.ListFilter
}

// ClientRepository persists clients. Lookups return (nil, nil) when nothing
// matches; writes take the entity and hand back its stored projection.
type ClientRepository interface {
	FindAll(ctx context.Context) ([]domain.ClientDTO, error)
	FindByID(ctx context.Context, id int64) (*domain.ClientDTO, error)
	FindByCPF(ctx context.Context, cpf string) (*domain.ClientDTO, error)
	FindByEmail(ctx context.Context, email string) (*domain.ClientDTO, error)

	// Save inserts the client, or overwrites the stored row when its id is
	// already assigned. Duplicate cpf/email fail with domain.ErrConflict.
	Save(ctx context.Context, client *domain.Client) (domain.ClientDTO, error)

	// Update overwrites an existing row. It returns nil without touching
	// storage when no row has the client's id.
	Update(ctx context.Context, client *domain.Client) (*domain.ClientDTO, error)

	Delete(ctx context.Context, id int64) (bool, error)

	List(ctx context.Context, filter ClientFilter) ([]domain.ClientDTO, error)
	Count(ctx context.Context, filter ClientFilter) (int, error)
}
