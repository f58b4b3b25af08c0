package service

import (
	"context"
	"fmt"

	"github.com/martijn/clientdesk/internal/core/repository"
)

// DefaultSeedClients are inserted into an empty database by the seed command
var DefaultSeedClients = []NewClientInput{
	{Name: "John Doe", CPF: "12345678901", Email: "john.doe@example.com"},
	{Name: "Jane Smith", CPF: "98765432100", Email: "jane.smith@example.com"},
	{Name: "Alice Johnson", CPF: "11122233344", Email: "alice.johnson@example.com"},
}

// SeedClients creates the given clients unless any client already exists.
// It returns how many clients were inserted.
func (s *ClientService) SeedClients(ctx context.Context, seeds []NewClientInput) (int, error) {
	count, err := s.clientRepo.Count(ctx, repository.ClientFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	if count > 0 {
		s.logger.InfoContext(ctx, "clients already seeded, skipping", "count", count)
		return 0, nil
	}

	for _, seed := range seeds {
		if _, err := s.CreateClient(ctx, seed); err != nil {
			return 0, fmt.Errorf("failed to seed client %q: %w", seed.Email, err)
		}
	}

	s.logger.InfoContext(ctx, "seeded clients", "count", len(seeds))
	return len(seeds), nil
}
