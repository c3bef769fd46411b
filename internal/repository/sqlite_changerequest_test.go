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

func TestChangeRequestRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	plan := seedPlan(t, NewSQLitePlanRepo(db))
	repo := NewSQLiteChangeRequestRepo(db)
	ctx := context.Background()

	cr := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("Ship it")})
	require.NoError(t, repo.Create(ctx, cr))

	fetched, err := repo.GetByID(ctx, cr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestCreateTask, fetched.Type)
	assert.Equal(t, domain.RequestPending, fetched.Status)
	assert.Equal(t, "bob", fetched.RequestedBy)
	assert.Nil(t, fetched.ApprovedAt)
	assert.JSONEq(t, string(cr.Payload), string(fetched.Payload))

	payload, err := fetched.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, "Ship it", *payload.Title)
}

func TestChangeRequestRepo_ListPendingAndByPlan(t *testing.T) {
	db := testutil.NewTestDB(t)
	plan := seedPlan(t, NewSQLitePlanRepo(db))
	repo := NewSQLiteChangeRequestRepo(db)
	ctx := context.Background()

	older := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("A")})
	newer := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestDeleteTask,
		domain.TaskPayload{TaskID: "t1"})
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.MarkApproved(ctx, older.ID, "alice", time.Now().UTC()))

	pending, err := repo.ListPending(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, newer.ID, pending[0].ID)

	all, err := repo.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID, "history is newest first")
	assert.Equal(t, domain.RequestApproved, all[1].Status)
	assert.Equal(t, "alice", all[1].ApprovedBy)
	assert.NotNil(t, all[1].ApprovedAt)
}

func TestChangeRequestRepo_MarkApproved_Twice(t *testing.T) {
	db := testutil.NewTestDB(t)
	plan := seedPlan(t, NewSQLitePlanRepo(db))
	repo := NewSQLiteChangeRequestRepo(db)
	ctx := context.Background()

	cr := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestDeleteTask,
		domain.TaskPayload{TaskID: "t1"})
	require.NoError(t, repo.Create(ctx, cr))

	require.NoError(t, repo.MarkApproved(ctx, cr.ID, "alice", time.Now().UTC()))
	err := repo.MarkApproved(ctx, cr.ID, "alice", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrAlreadyApproved)
}

func TestChangeRequestRepo_MarkApproved_Missing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteChangeRequestRepo(db)

	err := repo.MarkApproved(context.Background(), "missing", "alice", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeRequestRepo_OrdersBySubSecondCreationTime(t *testing.T) {
	db := testutil.NewTestDB(t)
	plan := seedPlan(t, NewSQLitePlanRepo(db))
	repo := NewSQLiteChangeRequestRepo(db)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	older := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("A")})
	older.ID = "z-older"
	older.CreatedAt = base.Add(100 * time.Millisecond)
	newer := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("B")})
	newer.ID = "a-newer"
	newer.CreatedAt = base.Add(101 * time.Millisecond)
	onTheSecond := testutil.NewTestChangeRequest(plan.ID, "bob", domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("C")})
	onTheSecond.ID = "m-first"
	onTheSecond.CreatedAt = base
	for _, cr := range []*domain.ChangeRequest{newer, older, onTheSecond} {
		require.NoError(t, repo.Create(ctx, cr))
	}

	pending, err := repo.ListPending(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, []string{"m-first", "z-older", "a-newer"},
		[]string{pending[0].ID, pending[1].ID, pending[2].ID})
	assert.True(t, pending[1].CreatedAt.Equal(older.CreatedAt))

	history, err := repo.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"a-newer", "z-older", "m-first"},
		[]string{history[0].ID, history[1].ID, history[2].ID})
}
