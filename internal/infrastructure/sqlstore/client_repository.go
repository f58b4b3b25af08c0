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

const clientColumns = `id, name, cpf, email, created_at, updated_at`

// clientRecord is the row layout of the client table
type clientRecord struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CPF       string    `db:"cpf"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func recordFromClient(client *domain.Client) clientRecord {
	id, _ := client.ID().Value()
	return clientRecord{
		ID:        id,
		Name:      client.Name(),
		CPF:       client.CPF(),
		Email:     client.Email(),
		CreatedAt: client.CreatedAt(),
		UpdatedAt: client.UpdatedAt(),
	}
}

func (rec clientRecord) toDTO() domain.ClientDTO {
	return domain.ClientDTO{
		ID:        domain.AssignedID(rec.ID),
		Name:      rec.Name,
		CPF:       rec.CPF,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindAll(ctx context.Context) ([]domain.ClientDTO, error) {
	query := `SELECT ` + clientColumns + ` FROM client ORDER BY id ASC`

	var records []clientRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return toDTOs(records), nil
}

func (r *clientRepository) FindByID(ctx context.Context, id int64) (*domain.ClientDTO, error) {
	return r.findOne(ctx, "id", id)
}

func (r *clientRepository) FindByCPF(ctx context.Context, cpf string) (*domain.ClientDTO, error) {
	return r.findOne(ctx, "cpf", cpf)
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*domain.ClientDTO, error) {
	return r.findOne(ctx, "email", email)
}

func (r *clientRepository) findOne(ctx context.Context, column string, value interface{}) (*domain.ClientDTO, error) {
	query := r.db.Rebind(`SELECT ` + clientColumns + ` FROM client WHERE ` + column + ` = ?`)

	var record clientRecord
	err := r.db.GetContext(ctx, &record, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client by %s: %w", column, err)
	}

	dto := record.toDTO()
	return &dto, nil
}

func (r *clientRepository) Save(ctx context.Context, client *domain.Client) (domain.ClientDTO, error) {
	record := recordFromClient(client)

	if client.ID().IsAssigned() {
		query := `
			INSERT INTO client (id, name, cpf, email, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				cpf = excluded.cpf,
				email = excluded.email,
				updated_at = excluded.updated_at
		`
		_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
			record.ID,
			record.Name,
			record.CPF,
			record.Email,
			record.CreatedAt,
			record.UpdatedAt,
		)
		if err != nil {
			return domain.ClientDTO{}, fmt.Errorf("failed to save client: %w", translateError(err))
		}
		return record.toDTO(), nil
	}

	query := `
		INSERT INTO client (name, cpf, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		record.Name,
		record.CPF,
		record.Email,
		record.CreatedAt,
		record.UpdatedAt,
	).Scan(&record.ID)
	if err != nil {
		return domain.ClientDTO{}, fmt.Errorf("failed to create client: %w", translateError(err))
	}

	return record.toDTO(), nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) (*domain.ClientDTO, error) {
	if !client.ID().IsAssigned() {
		return nil, nil
	}
	record := recordFromClient(client)

	query := `
		UPDATE client
		SET name = ?, cpf = ?, email = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		record.Name,
		record.CPF,
		record.Email,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", translateError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, nil
	}

	dto := record.toDTO()
	return &dto, nil
}

func (r *clientRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query := r.db.Rebind(`DELETE FROM client WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete client: %w", err)
	}
	return affected(result)
}

func (r *clientRepository) List(ctx context.Context, filter repository.ClientFilter) ([]domain.ClientDTO, error) {
	query := `SELECT ` + clientColumns + ` FROM client WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)
	query = ApplyOrdering(query, filter.Order, "id ASC")
	query, args = ApplyPagination(query, args, filter.Page, filter.PerPage)

	var records []clientRecord
	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return toDTOs(records), nil
}

func (r *clientRepository) Count(ctx context.Context, filter repository.ClientFilter) (int, error) {
	query := `SELECT COUNT(*) FROM client WHERE 1=1`
	args := []interface{}{}

	query, args = ApplyFilters(query, args, filter.Filters)

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count clients: %w", err)
	}
	return count, nil
}

func toDTOs(records []clientRecord) []domain.ClientDTO {
	clients := make([]domain.ClientDTO, len(records))
	for i, record := range records {
		clients[i] = record.toDTO()
	}
	return clients
}
