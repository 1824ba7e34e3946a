package users

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/accounthub/account-service/internal/database"
	"github.com/accounthub/account-service/internal/models"
	"github.com/stretchr/testify/require"
)

func setupBunRepo(t *testing.T) *BunRepository {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "users.db")
	db, err := database.OpenSQL(context.Background(), "sqlite", dsn, time.Second, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db.DB, "sqlite"))
	return NewBunRepository(db)
}

func TestBunRepository_CreateAndGet(t *testing.T) {
	repo := setupBunRepo(t)
	ctx := context.Background()

	u := &models.User{ID: "sub-1", Email: "ann@example.com", Name: "Ann", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, u))
	require.False(t, u.CreatedAt.IsZero())
	require.False(t, u.UpdatedAt.IsZero())

	got, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "sub-1", got.ID)
	require.Equal(t, "Ann", got.Name)
	require.Equal(t, models.RoleUser, got.Role)
	require.False(t, got.IsOnboarded)

	byID, err := repo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", byID.Email)
}

func TestBunRepository_MissingReturnsNil(t *testing.T) {
	repo := setupBunRepo(t)
	ctx := context.Background()

	u, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Nil(t, u)

	u, err = repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestBunRepository_DuplicateEmail(t *testing.T) {
	repo := setupBunRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "a", Email: "dup@example.com", Role: models.RoleUser}))
	err := repo.Create(ctx, &models.User{ID: "b", Email: "dup@example.com", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestBunRepository_Update(t *testing.T) {
	repo := setupBunRepo(t)
	ctx := context.Background()

	u := &models.User{ID: "sub-2", Email: "bob@example.com", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, u))
	created := u.UpdatedAt

	u.Name = "Bob"
	u.Role = models.RoleAdmin
	u.IsOnboarded = true
	require.NoError(t, repo.Update(ctx, u))
	require.False(t, u.UpdatedAt.Before(created))

	got, err := repo.GetByID(ctx, "sub-2")
	require.NoError(t, err)
	require.Equal(t, "Bob", got.Name)
	require.Equal(t, models.RoleAdmin, got.Role)
	require.True(t, got.IsOnboarded)

	err = repo.Update(ctx, &models.User{ID: "ghost", Email: "ghost@example.com", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBunRepository_List(t *testing.T) {
	repo := setupBunRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &models.User{
			ID:        fmt.Sprintf("sub-%d", i),
			Email:     fmt.Sprintf("u%d@example.com", i),
			Role:      models.RoleUser,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, total, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, page, 2)
	require.Equal(t, "sub-2", page[0].ID)
	require.Equal(t, "sub-3", page[1].ID)

	tail, total, err := repo.List(ctx, 4, 10)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, tail, 1)

	require.NoError(t, repo.Ping(ctx))
}
