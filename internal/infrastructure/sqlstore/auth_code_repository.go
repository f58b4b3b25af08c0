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

const authCodeColumns = `code, username, scopes, expires_at, created_at`

type authCodeRecord struct {
	Code      string    `db:"code"`
	Username  string    `db:"username"`
	Scopes    string    `db:"scopes"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type authCodeRepository struct {
	db *DB
}

func NewAuthCodeRepository(db *DB) repository.AuthCodeRepository {
	return &authCodeRepository{db: db}
}

func (r *authCodeRepository) Create(ctx context.Context, code *domain.AuthCode) error {
	query := `INSERT INTO auth_code (` + authCodeColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		code.Code,
		code.Username,
		code.Scopes.String(),
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth code: %w", err)
	}
	return nil
}

func (r *authCodeRepository) Take(ctx context.Context, code string) (*domain.AuthCode, error) {
	query := r.db.Rebind(`SELECT ` + authCodeColumns + ` FROM auth_code WHERE code = ?`)

	var record authCodeRecord
	err := r.db.GetContext(ctx, &record, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find auth code: %w", err)
	}

	// Only the caller whose DELETE removes the row gets the code
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM auth_code WHERE code = ?`), code)
	if err != nil {
		return nil, fmt.Errorf("failed to consume auth code: %w", err)
	}
	taken, err := affected(result)
	if err != nil || !taken {
		return nil, err
	}

	scopes, err := domain.ParseScopes(record.Scopes)
	if err != nil {
		return nil, fmt.Errorf("auth code has invalid scopes: %w", err)
	}
	return &domain.AuthCode{
		Code:      record.Code,
		Username:  record.Username,
		Scopes:    scopes,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (r *authCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM auth_code WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired auth codes: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
