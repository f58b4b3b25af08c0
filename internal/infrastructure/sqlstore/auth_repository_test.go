package sqlstore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/martijn/clientdesk/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCredentialRepository(newTestDB(t))

	scopes := domain.Scopes{domain.ScopeClientsWrite, domain.ScopeCredentialsManage}
	credential, err := domain.NewCredential("billing", "hashed", scopes)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, credential))

	found, err := repo.FindByID(ctx, credential.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "billing", found.Label)
	assert.Equal(t, "hashed", found.SecretHash)
	assert.Equal(t, scopes, found.Scopes)

	require.NoError(t, found.Relabel("invoicing"))
	require.NoError(t, found.Grant(domain.Scopes{domain.ScopeClientsRead}))
	updated, err := repo.Update(ctx, found)
	require.NoError(t, err)
	assert.True(t, updated)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "invoicing", list[0].Label)
	assert.Equal(t, domain.Scopes{domain.ScopeClientsRead}, list[0].Scopes)

	deleted, err := repo.Delete(ctx, credential.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err = repo.FindByID(ctx, credential.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	deleted, err = repo.Delete(ctx, credential.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	updated, err = repo.Update(ctx, credential)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	user, err := domain.NewUser("admin", "hash")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	err = users.Create(ctx, user)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)

	found, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "hash", found.PasswordHash)

	found.SetPasswordHash("rehashed")
	updated, err := users.Update(ctx, found)
	require.NoError(t, err)
	assert.True(t, updated)

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "rehashed", list[0].PasswordHash)

	missing, err := users.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := users.Delete(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAuthCodeRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	codes := NewAuthCodeRepository(db)

	user, err := domain.NewUser("admin", "hash")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))

	expired := domain.NewAuthCode("admin", domain.AllScopes(), -time.Minute)
	require.NoError(t, codes.Create(ctx, expired))
	valid := domain.NewAuthCode("admin", domain.Scopes{domain.ScopeClientsRead}, time.Minute)
	require.NoError(t, codes.Create(ctx, valid))

	removed, err := codes.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	taken, err := codes.Take(ctx, expired.Code)
	require.NoError(t, err)
	assert.Nil(t, taken)

	taken, err = codes.Take(ctx, valid.Code)
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.Equal(t, "admin", taken.Username)
	assert.Equal(t, domain.Scopes{domain.ScopeClientsRead}, taken.Scopes)
	assert.False(t, taken.ExpiredAt(time.Now()))

	again, err := codes.Take(ctx, valid.Code)
	require.NoError(t, err)
	assert.Nil(t, again, "a code is taken once")

	// Deleting the user cascades to its codes
	pending := domain.NewAuthCode("admin", domain.AllScopes(), time.Minute)
	require.NoError(t, codes.Create(ctx, pending))
	deleted, err := users.Delete(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, deleted)

	taken, err = codes.Take(ctx, pending.Code)
	require.NoError(t, err)
	assert.Nil(t, taken)
}

func TestAuthCodeRepository_ConcurrentTake(t *testing.T) {
	ctx := context.Background()
	db := newFileTestDB(t)
	users := NewUserRepository(db)
	codes := NewAuthCodeRepository(db)

	user, err := domain.NewUser("admin", "hash")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, user))
	code := domain.NewAuthCode("admin", domain.AllScopes(), time.Minute)
	require.NoError(t, codes.Create(ctx, code))

	const callers = 8
	var (
		wg    sync.WaitGroup
		wins  atomic.Int32
		start = make(chan struct{})
		errs  = make(chan error, callers)
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			taken, err := codes.Take(ctx, code.Code)
			if err != nil {
				errs <- err
				return
			}
			if taken != nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), wins.Load())
}
