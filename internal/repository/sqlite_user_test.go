package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_UpsertAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	u := testutil.NewTestUser("Alice", testutil.WithEmail("Alice@Example.com"))
	require.NoError(t, repo.Upsert(ctx, u))

	fetched, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", fetched.Name)
	assert.Equal(t, "alice@example.com", fetched.Email)

	u.Name = "Alice B."
	require.NoError(t, repo.Upsert(ctx, u))
	fetched, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", fetched.Name)
}

func TestUserRepo_Upsert_KeepsCreatedAt(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	u := testutil.NewTestUser("Alice")
	created := u.CreatedAt
	require.NoError(t, repo.Upsert(ctx, u))

	u.CreatedAt = created.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, u))

	fetched, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, created.Equal(fetched.CreatedAt))
}

func TestUserRepo_FindByEmail(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	u := testutil.NewTestUser("Bob", testutil.WithEmail("bob@example.com"))
	require.NoError(t, repo.Upsert(ctx, u))

	found, err := repo.FindByEmail(ctx, "  BOB@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_ListByIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteUserRepo(db)
	ctx := context.Background()

	a := testutil.NewTestUser("A")
	b := testutil.NewTestUser("B")
	require.NoError(t, repo.Upsert(ctx, a))
	require.NoError(t, repo.Upsert(ctx, b))

	users, err := repo.ListByIDs(ctx, []string{a.ID, "ghost", b.ID})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	empty, err := repo.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
