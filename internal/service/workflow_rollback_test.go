package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingUoW(failOn int32) func(*sql.DB) db.UnitOfWork {
	return func(database *sql.DB) db.UnitOfWork {
		return &testutil.FailOnNthExecUoW{
			DB:     database,
			FailOn: failOn,
			Err:    fmt.Errorf("injected failure on exec %d", failOn),
		}
	}
}

func TestApprove_RollbackWhenStatusFlipFails(t *testing.T) {
	// Exec #1 = tasks.Create, #2 = change_requests.MarkApproved.
	env := newTestEnvWithUoW(t, failingUoW(2))
	ctx := context.Background()

	planID, err := env.Plans.Create(ctx, "A", PlanInput{Name: "Atomic"})
	require.NoError(t, err)
	reqID, err := env.Workflow.Submit(ctx, planID, domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("Should not exist")}, "A")
	require.NoError(t, err)

	err = env.Workflow.Approve(ctx, reqID, "A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected failure")

	tasks, err := env.tasks.ListByPlan(ctx, planID)
	require.NoError(t, err)
	assert.Empty(t, tasks, "task insert must roll back")

	cr, err := env.requests.GetByID(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, cr.Status)
	assert.Nil(t, cr.ApprovedAt)
}

func TestApprove_RollbackWhenTaskWriteFails(t *testing.T) {
	env := newTestEnvWithUoW(t, failingUoW(1))
	ctx := context.Background()

	planID, err := env.Plans.Create(ctx, "A", PlanInput{Name: "Atomic"})
	require.NoError(t, err)
	task := testutil.NewTestTask(planID, "Keep me")
	require.NoError(t, env.tasks.Create(ctx, task))
	reqID, err := env.Workflow.Submit(ctx, planID, domain.RequestDeleteTask, domain.TaskPayload{TaskID: task.ID}, "A")
	require.NoError(t, err)

	require.Error(t, env.Workflow.Approve(ctx, reqID, "A"))

	_, err = env.tasks.GetByID(ctx, task.ID)
	assert.NoError(t, err, "task survives a failed approval")
	cr, err := env.requests.GetByID(ctx, reqID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, cr.Status)
}

func TestApprove_NoPublishOnRollback(t *testing.T) {
	env := newTestEnvWithUoW(t, failingUoW(2))
	ctx := context.Background()

	planID, err := env.Plans.Create(ctx, "A", PlanInput{Name: "Quiet"})
	require.NoError(t, err)
	reqID, err := env.Workflow.Submit(ctx, planID, domain.RequestCreateTask,
		domain.TaskPayload{Title: testutil.Ptr("x")}, "A")
	require.NoError(t, err)

	var queries atomic.Int32
	cancel, err := realtime.Subscribe(ctx, env.hub, "rollback-tasks",
		[]realtime.Collection{realtime.CollectionTasks},
		func(context.Context) (int32, error) { return queries.Add(1), nil },
		func(int32) {},
	)
	require.NoError(t, err)
	defer cancel()

	require.Error(t, env.Workflow.Approve(ctx, reqID, "A"))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), queries.Load(), "a rolled-back approval must not notify task subscribers")
}
