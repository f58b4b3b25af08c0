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

const userColumns = `username, password_hash, created_at, updated_at`

type userRecord struct {
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (rec userRecord) toUser() domain.User {
	return domain.User{
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO app_user (` + userColumns + `) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM app_user WHERE username = ?`)

	var record userRecord
	err := r.db.GetContext(ctx, &record, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user := record.toUser()
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (bool, error) {
	query := `UPDATE app_user SET password_hash = ?, updated_at = ? WHERE username = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		user.PasswordHash,
		user.UpdatedAt,
		user.Username,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	return affected(result)
}

func (r *userRepository) Delete(ctx context.Context, username string) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM app_user WHERE username = ?`), username)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return affected(result)
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	var records []userRecord
	query := `SELECT ` + userColumns + ` FROM app_user ORDER BY username`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.toUser())
	}
	return users, nil
}
