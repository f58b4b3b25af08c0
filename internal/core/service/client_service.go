package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/repository"
)

// ClientUseCase is the inbound port for client management. A nil DTO
// means the client does not exist.
type ClientUseCase interface {
	GetAllClients(ctx context.Context) ([]domain.ClientDTO, error)
	GetClientByID(ctx context.Context, id int64) (*domain.ClientDTO, error)
	CreateClient(ctx context.Context, input NewClientInput) (domain.ClientDTO, error)
	UpdateClient(ctx context.Context, id int64, patch ClientPatch) (*domain.ClientDTO, error)
	DeleteClient(ctx context.Context, id int64) (bool, error)
	GetClientByCPF(ctx context.Context, cpf string) (*domain.ClientDTO, error)
	GetClientByEmail(ctx context.Context, email string) (*domain.ClientDTO, error)
	ListClients(ctx context.Context, filter repository.ClientFilter) ([]domain.ClientDTO, int, error)
}

// NewClientInput carries the caller-supplied fields of a new client
type NewClientInput struct {
	Name  string
	CPF   string
	Email string
}

// ClientPatch lists the fields to change. A nil field is left untouched;
// a non-nil field is validated and applied, so an empty string fails.
type ClientPatch struct {
	Name  *string
	CPF   *string
	Email *string
}

// IsEmpty reports whether the patch changes nothing
func (p ClientPatch) IsEmpty() bool {
	return p.Name == nil && p.CPF == nil && p.Email == nil
}

// ClientMetrics receives client lifecycle events
type ClientMetrics interface {
	IncrementClientsCreated()
	IncrementClientsUpdated()
	IncrementClientsDeleted()
}

type noopMetrics struct{}

func (noopMetrics) IncrementClientsCreated() {}
func (noopMetrics) IncrementClientsUpdated() {}
func (noopMetrics) IncrementClientsDeleted() {}

type ClientService struct {
	clientRepo repository.ClientRepository
	logger     *slog.Logger
	metrics    ClientMetrics
}

var _ ClientUseCase = (*ClientService)(nil)

func NewClientService(clientRepo repository.ClientRepository, logger *slog.Logger) *ClientService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
		metrics:    noopMetrics{},
	}
}

// WithMetrics reports client lifecycle events to m
func (s *ClientService) WithMetrics(m ClientMetrics) *ClientService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// GetAllClients returns every stored client
func (s *ClientService) GetAllClients(ctx context.Context) ([]domain.ClientDTO, error) {
	return s.clientRepo.FindAll(ctx)
}

// GetClientByID returns nil when no client has the id
func (s *ClientService) GetClientByID(ctx context.Context, id int64) (*domain.ClientDTO, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// CreateClient validates and persists a new client
func (s *ClientService) CreateClient(ctx context.Context, input NewClientInput) (domain.ClientDTO, error) {
	client, err := domain.NewClient(input.Name, input.CPF, input.Email)
	if err != nil {
		return domain.ClientDTO{}, err
	}

	saved, err := s.clientRepo.Save(ctx, client)
	if err != nil {
		return domain.ClientDTO{}, err
	}

	s.metrics.IncrementClientsCreated()
	s.logger.InfoContext(ctx, "client created", "client_id", saved.ID.String())
	return saved, nil
}

// UpdateClient applies the fields present in patch to an existing client.
// It returns nil when the client does not exist.
func (s *ClientService) UpdateClient(ctx context.Context, id int64, patch ClientPatch) (*domain.ClientDTO, error) {
	existing, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	client := domain.FromDTO(*existing)
	if err := applyPatch(client, patch); err != nil {
		return nil, err
	}

	updated, err := s.clientRepo.Update(ctx, client)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		s.metrics.IncrementClientsUpdated()
		s.logger.InfoContext(ctx, "client updated", "client_id", updated.ID.String())
	}
	return updated, nil
}

// DeleteClient reports whether a client was removed
func (s *ClientService) DeleteClient(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.clientRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.metrics.IncrementClientsDeleted()
		s.logger.InfoContext(ctx, "client deleted", "client_id", id)
	}
	return deleted, nil
}

func (s *ClientService) GetClientByCPF(ctx context.Context, cpf string) (*domain.ClientDTO, error) {
	return s.clientRepo.FindByCPF(ctx, cpf)
}

func (s *ClientService) GetClientByEmail(ctx context.Context, email string) (*domain.ClientDTO, error) {
	return s.clientRepo.FindByEmail(ctx, email)
}

// ListClients returns one page of clients and the total matching count
func (s *ClientService) ListClients(ctx context.Context, filter repository.ClientFilter) ([]domain.ClientDTO, int, error) {
	clients, err := s.clientRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.clientRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	return clients, total, nil
}

func applyPatch(client *domain.Client, patch ClientPatch) error {
	if patch.Name != nil {
		if err := client.UpdateName(*patch.Name); err != nil {
			return err
		}
	}
	if patch.CPF != nil {
		if err := client.UpdateCPF(*patch.CPF); err != nil {
			return err
		}
	}
	if patch.Email != nil {
		if err := client.UpdateEmail(*patch.Email); err != nil {
			return err
		}
	}
	return nil
}
