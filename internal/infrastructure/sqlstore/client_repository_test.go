package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/martijn/clientdesk/internal/api/util"
	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/martijn/clientdesk/internal/core/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(DriverSQLite, ":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { db.Close() })
	return db
}

// newFileTestDB opens a sqlite file so that the pool holds several
// connections, unlike the single-connection in-memory database.
func newFileTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "clientdesk.sqlite3"))
	require.NoError(t, err, "failed to create file database")
	t.Cleanup(func() { db.Close() })
	return db
}

func mustClient(t *testing.T, name, cpf, email string) *domain.Client {
	t.Helper()

	client, err := domain.NewClient(name, cpf, email)
	require.NoError(t, err)
	return client
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New("mysql", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestClientRepository_SaveAssignsID(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	first, err := repo.Save(ctx, mustClient(t, "John Doe", "12345678901", "john@example.com"))
	require.NoError(t, err)
	second, err := repo.Save(ctx, mustClient(t, "Jane Smith", "98765432100", "jane@example.com"))
	require.NoError(t, err)

	firstID, ok := first.ID.Value()
	require.True(t, ok)
	secondID, ok := second.ID.Value()
	require.True(t, ok)
	assert.Greater(t, secondID, firstID)

	found, err := repo.FindByID(ctx, firstID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "John Doe", found.Name)
	assert.True(t, found.CreatedAt.Equal(first.CreatedAt), "timestamps survive the round trip")
	assert.True(t, found.UpdatedAt.Equal(first.UpdatedAt))
}

func TestClientRepository_FindMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	byID, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, byID)

	byCPF, err := repo.FindByCPF(ctx, "12345678901")
	require.NoError(t, err)
	assert.Nil(t, byCPF)

	byEmail, err := repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, byEmail)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.NotNil(t, all)
}

func TestClientRepository_FindByCPFAndEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	saved, err := repo.Save(ctx, mustClient(t, "John Doe", "12345678901", "john@example.com"))
	require.NoError(t, err)

	byCPF, err := repo.FindByCPF(ctx, "12345678901")
	require.NoError(t, err)
	require.NotNil(t, byCPF)
	assert.Equal(t, saved.ID, byCPF.ID)

	byEmail, err := repo.FindByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, saved.ID, byEmail.ID)
}

func TestClientRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	_, err := repo.Save(ctx, mustClient(t, "John Doe", "12345678901", "john@example.com"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, mustClient(t, "Other", "12345678901", "other@example.com"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "cpf", conflict.Field)

	_, err = repo.Save(ctx, mustClient(t, "Other", "99999999999", "john@example.com"))
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	count, err := repo.Count(ctx, repository.ClientFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClientRepository_ConcurrentCreates(t *testing.T) {
	const writers = 8

	tests := []struct {
		name          string
		distinct      bool
		expectedSaved int
	}{
		{name: "colliding cpf and email", distinct: false, expectedSaved: 1},
		{name: "distinct clients", distinct: true, expectedSaved: writers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewClientRepository(newFileTestDB(t))

			clients := make([]*domain.Client, writers)
			for i := range clients {
				cpf, email := "12345678901", "john@example.com"
				if tt.distinct {
					cpf = fmt.Sprintf("%011d", i+1)
					email = fmt.Sprintf("client%d@example.com", i)
				}
				clients[i] = mustClient(t, fmt.Sprintf("Client %d", i), cpf, email)
			}

			start := make(chan struct{})
			errs := make([]error, writers)
			var wg sync.WaitGroup
			for i, client := range clients {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start
					_, errs[i] = repo.Save(ctx, client)
				}()
			}
			close(start)
			wg.Wait()

			saved := 0
			for _, err := range errs {
				if err == nil {
					saved++
					continue
				}
				assert.ErrorIs(t, err, domain.ErrConflict)
			}
			assert.Equal(t, tt.expectedSaved, saved)

			count, err := repo.Count(ctx, repository.ClientFilter{})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedSaved, count)
		})
	}
}

func TestClientRepository_ColumnLengths(t *testing.T) {
	longName := strings.Repeat("a", 101)
	longEmail := strings.Repeat("a", 89) + "@example.com"

	tests := []struct {
		name          string
		clientName    string
		email         string
		expectedField string
	}{
		{name: "name over 100 characters", clientName: longName, email: "john@example.com", expectedField: "name"},
		{name: "email over 100 characters", clientName: "John Doe", email: longEmail, expectedField: "email"},
		{name: "name of exactly 100 characters", clientName: strings.Repeat("a", 100), email: "john@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			repo := NewClientRepository(newTestDB(t))

			_, err := repo.Save(ctx, mustClient(t, tt.clientName, "12345678901", tt.email))
			if tt.expectedField == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrValidation)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.expectedField, validationErr.Field)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestClientRepository_UpdateRejectsOverlongName(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	saved, err := repo.Save(ctx, mustClient(t, "John Doe", "12345678901", "john@example.com"))
	require.NoError(t, err)

	client := domain.FromDTO(saved)
	require.NoError(t, client.UpdateName(strings.Repeat("b", 150)))

	_, err = repo.Update(ctx, client)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)

	id, _ := saved.ID.Value()
	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "John Doe", found.Name)
}

func TestClientRepository_SaveWithAssignedIDUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	client, err := domain.RestoreClient(domain.AssignedID(42), "John Doe", "12345678901", "john@example.com", created, created)
	require.NoError(t, err)

	saved, err := repo.Save(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignedID(42), saved.ID)

	require.NoError(t, client.UpdateName("Johnny"))
	_, err = repo.Save(ctx, client)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Johnny", found.Name)
	assert.True(t, found.CreatedAt.Equal(created))

	count, err := repo.Count(ctx, repository.ClientFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClientRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	saved, err := repo.Save(ctx, mustClient(t, "John Doe", "12345678901", "john@example.com"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, mustClient(t, "Jane Smith", "98765432100", "jane@example.com"))
	require.NoError(t, err)

	client := domain.FromDTO(saved)
	require.NoError(t, client.UpdateEmail("john@new.com"))

	updated, err := repo.Update(ctx, client)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "john@new.com", updated.Email)

	// Taking another client's CPF is a conflict
	require.NoError(t, client.UpdateCPF("98765432100"))
	_, err = repo.Update(ctx, client)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	// Unassigned and unknown ids report absence
	fresh := mustClient(t, "New", "11122233344", "new@example.com")
	missing, err := repo.Update(ctx, fresh)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ghost, err := domain.RestoreClient(domain.AssignedID(999), "Ghost", "55555555555", "ghost@example.com", time.Now().UTC(), time.Now().UTC())
	require.NoError(t, err)
	missing, err = repo.Update(ctx, ghost)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestClientRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository(newTestDB(t))

	saved, err := repo.Save(ctx, mustClient(t, "John Doe", "12345678901", "john@example.com"))
	require.NoError(t, err)
	id, _ := saved.ID.Value()

	deleted, err := repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestClientRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewClientRepository(db)

	base := time.Date(2025, 11, 1, 10, 0, 0, 0, time.UTC)
	seeds := []struct {
		name, cpf, email string
		created          time.Time
	}{
		{"John Doe", "12345678901", "john@example.com", base},
		{"Jane Smith", "98765432100", "jane@example.com", base.Add(24 * time.Hour)},
		{"Alice Johnson", "11122233344", "alice@example.com", base.Add(48 * time.Hour)},
		{"Bob Stone", "22233344455", "bob@example.org", base.Add(72 * time.Hour)},
	}
	for _, s := range seeds {
		client, err := domain.RestoreClient(domain.UnassignedID(), s.name, s.cpf, s.email, s.created, s.created)
		require.NoError(t, err)
		_, err = repo.Save(ctx, client)
		require.NoError(t, err)
	}

	tests := []struct {
		name          string
		filter        util.ListFilter
		expectedNames []string
		expectedCount int
	}{
		{
			name:          "no filter",
			expectedNames: []string{"John Doe", "Jane Smith", "Alice Johnson", "Bob Stone"},
			expectedCount: 4,
		},
		{
			name: "email contains",
			filter: util.ListFilter{Filters: []util.QueryFilter{
				{Field: "email", Operator: util.OpContains, Value: "EXAMPLE.COM"},
			}},
			expectedNames: []string{"John Doe", "Jane Smith", "Alice Johnson"},
			expectedCount: 3,
		},
		{
			name: "created_at range",
			filter: util.ListFilter{Filters: []util.QueryFilter{
				{Field: "created_at", Operator: util.OpGte, Value: "2025-11-02T00:00:00Z"},
				{Field: "created_at", Operator: util.OpLt, Value: "2025-11-04"},
			}},
			expectedNames: []string{"Jane Smith", "Alice Johnson"},
			expectedCount: 2,
		},
		{
			name: "cpf not in",
			filter: util.ListFilter{Filters: []util.QueryFilter{
				{Field: "cpf", Operator: util.OpNin, Value: []string{"12345678901", "22233344455"}},
			}},
			expectedNames: []string{"Jane Smith", "Alice Johnson"},
			expectedCount: 2,
		},
		{
			name:          "ordered by name descending, second page",
			filter:        util.ListFilter{Order: []util.OrderClause{{Field: "name", Direction: util.OrderDesc}}, Page: 2, PerPage: 3},
			expectedNames: []string{"Alice Johnson"},
			expectedCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := repository.ClientFilter{ListFilter: tt.filter}

			clients, err := repo.List(ctx, filter)
			require.NoError(t, err)
			names := make([]string, len(clients))
			for i, c := range clients {
				names[i] = c.Name
			}
			assert.Equal(t, tt.expectedNames, names)

			count, err := repo.Count(ctx, filter)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCount, count)
		})
	}
}

func TestTranslateError_PassesThroughOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, translateError(plain))
	assert.Nil(t, translateError(nil))
}

func TestLengthField(t *testing.T) {
	assert.Equal(t, "name", lengthField("CHECK constraint failed: client_name_length"))
	assert.Equal(t, "email", lengthField("CHECK constraint failed: client_email_length"))
	assert.Equal(t, "", lengthField("CHECK constraint failed: other"))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"clientdesk.sqlite3?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		sqliteDSN("clientdesk.sqlite3"))
	assert.True(t, strings.HasPrefix(sqliteDSN("file:test.db?cache=shared"), "file:test.db?cache=shared&_pragma="))
	assert.True(t, isMemoryDSN(sqliteDSN(":memory:")))
	assert.False(t, isMemoryDSN(sqliteDSN("clientdesk.sqlite3")))
}

func TestConflictField(t *testing.T) {
	assert.Equal(t, "cpf", conflictField("client_cpf_key"))
	assert.Equal(t, "email", conflictField("UNIQUE constraint failed: client.email"))
	assert.Equal(t, "username", conflictField("UNIQUE constraint failed: app_user.username"))
	assert.Equal(t, "username", conflictField("app_user_pkey"))
	assert.Equal(t, "", conflictField(strings.Repeat("x", 3)))
}
