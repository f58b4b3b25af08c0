package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/repository"
)

const credentialColumns = `id, secret_hash, label, scopes, created_at, updated_at`

// credentialRecord keeps scopes in their space separated text form
type credentialRecord struct {
	ID         string    `db:"id"`
	SecretHash string    `db:"secret_hash"`
	Label      string    `db:"label"`
	Scopes     string    `db:"scopes"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (rec credentialRecord) toCredential() (domain.Credential, error) {
	scopes, err := domain.ParseScopes(rec.Scopes)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("credential %s has invalid scopes: %w", rec.ID, err)
	}
	return domain.Credential{
		ID:         rec.ID,
		SecretHash: rec.SecretHash,
		Label:      rec.Label,
		Scopes:     scopes,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

type credentialRepository struct {
	db *DB
}

func NewCredentialRepository(db *DB) repository.CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) Create(ctx context.Context, credential *domain.Credential) error {
	query := `INSERT INTO credential (` + credentialColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		credential.ID,
		credential.SecretHash,
		credential.Label,
		credential.Scopes.String(),
		credential.CreatedAt,
		credential.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", translateError(err))
	}
	return nil
}

func (r *credentialRepository) FindByID(ctx context.Context, id string) (*domain.Credential, error) {
	query := r.db.Rebind(`SELECT ` + credentialColumns + ` FROM credential WHERE id = ?`)

	var record credentialRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	credential, err := record.toCredential()
	if err != nil {
		return nil, err
	}
	return &credential, nil
}

func (r *credentialRepository) Update(ctx context.Context, credential *domain.Credential) (bool, error) {
	query := `UPDATE credential SET label = ?, scopes = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		credential.Label,
		credential.Scopes.String(),
		credential.UpdatedAt,
		credential.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update credential: %w", err)
	}
	return affected(result)
}

func (r *credentialRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM credential WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete credential: %w", err)
	}
	return affected(result)
}

func (r *credentialRepository) List(ctx context.Context) ([]domain.Credential, error) {
	var records []credentialRecord
	query := `SELECT ` + credentialColumns + ` FROM credential ORDER BY label, id`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	credentials := make([]domain.Credential, 0, len(records))
	for _, rec := range records {
		credential, err := rec.toCredential()
		if err != nil {
			return nil, err
		}
		credentials = append(credentials, credential)
	}
	return credentials, nil
}
