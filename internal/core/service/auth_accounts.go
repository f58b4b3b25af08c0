package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/martijn/clientdesk/internal/core/domain"
)

// CreateUser stores a new operator. A taken username fails with
// domain.ErrConflict.
func (s *AuthService) CreateUser(ctx context.Context, username, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user, err := domain.NewUser(username, hash)
	if err != nil {
		return err
	}
	return s.userRepo.Create(ctx, user)
}

// ChangePassword replaces an operator's password. It reports false when
// the user does not exist.
func (s *AuthService) ChangePassword(ctx context.Context, username, password string) (bool, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return false, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil || user == nil {
		return false, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return false, err
	}
	user.SetPasswordHash(hash)
	return s.userRepo.Update(ctx, user)
}

// DeleteUser removes an operator and any codes pending for them
func (s *AuthService) DeleteUser(ctx context.Context, username string) (bool, error) {
	return s.userRepo.Delete(ctx, username)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

// CreateCredential stores a new API credential and returns it with its
// plain secret, which is not kept anywhere.
func (s *AuthService) CreateCredential(ctx context.Context, label string, scopes domain.Scopes) (*domain.Credential, string, error) {
	secret := uuid.NewString()
	hash, err := s.HashPassword(secret)
	if err != nil {
		return nil, "", err
	}

	credential, err := domain.NewCredential(label, hash, scopes)
	if err != nil {
		return nil, "", err
	}
	if err := s.credentialRepo.Create(ctx, credential); err != nil {
		return nil, "", err
	}
	return credential, secret, nil
}

// UpdateCredential changes a credential's label, scopes or both. A nil label
// or empty scopes leaves that part as it is. It returns nil when the id is
// unknown.
func (s *AuthService) UpdateCredential(ctx context.Context, id string, label *string, scopes domain.Scopes) (*domain.Credential, error) {
	credential, err := s.credentialRepo.FindByID(ctx, id)
	if err != nil || credential == nil {
		return nil, err
	}

	if label != nil {
		if err := credential.Relabel(*label); err != nil {
			return nil, err
		}
	}
	if len(scopes) > 0 {
		if err := credential.Grant(scopes); err != nil {
			return nil, err
		}
	}

	found, err := s.credentialRepo.Update(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to update credential %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return credential, nil
}

func (s *AuthService) GetCredential(ctx context.Context, id string) (*domain.Credential, error) {
	return s.credentialRepo.FindByID(ctx, id)
}

func (s *AuthService) ListCredentials(ctx context.Context) ([]domain.Credential, error) {
	return s.credentialRepo.List(ctx)
}

func (s *AuthService) DeleteCredential(ctx context.Context, id string) (bool, error) {
	return s.credentialRepo.Delete(ctx, id)
}
