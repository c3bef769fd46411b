package cli

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder keeps the latest snapshot per feed.
type recorder struct {
	mu       sync.Mutex
	plans    []*domain.Plan
	tasks    map[string][]*domain.Task
	requests map[string][]*domain.ChangeRequest
}

func newRecorder() *recorder {
	return &recorder{
		tasks:    make(map[string][]*domain.Task),
		requests: make(map[string][]*domain.ChangeRequest),
	}
}

func (r *recorder) listener() SessionListener {
	return SessionListener{
		Plans: func(plans []*domain.Plan) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.plans = plans
		},
		Tasks: func(planID string, tasks []*domain.Task) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.tasks[planID] = tasks
		},
		Requests: func(planID string, reqs []*domain.ChangeRequest) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.requests[planID] = reqs
		},
	}
}

func (r *recorder) planCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.plans)
}

func (r *recorder) pendingCount(planID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests[planID])
}

func TestSessionState_SelectPlanReplacesHandles(t *testing.T) {
	h := testApp(t)
	ctx := context.Background()
	aliceID := signUp(t, h.App, "Alice", "alice@example.com")
	planA, err := h.Plans.Create(ctx, aliceID, service.PlanInput{Name: "A"})
	require.NoError(t, err)
	planB, err := h.Plans.Create(ctx, aliceID, service.PlanInput{Name: "B"})
	require.NoError(t, err)

	rec := newRecorder()
	s := NewSessionState(h.App, rec.listener())
	t.Cleanup(s.Close)

	require.NoError(t, s.SetUser(ctx, &domain.SessionUser{ID: aliceID}))
	require.Eventually(t, func() bool { return rec.planCount() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, s.SelectPlan(ctx, planA))
	assert.Equal(t, planA, s.PlanID())
	assert.Equal(t, 1, h.hub.SubscriberCount(realtime.CollectionTasks))
	assert.Equal(t, 1, h.hub.SubscriberCount(realtime.CollectionChangeRequests))

	require.NoError(t, s.SelectPlan(ctx, planB))
	assert.Equal(t, planB, s.PlanID())
	assert.Equal(t, 1, h.hub.SubscriberCount(realtime.CollectionTasks))
	assert.Equal(t, 1, h.hub.SubscriberCount(realtime.CollectionChangeRequests))

	_, err = h.Workflow.Submit(ctx, planA, domain.RequestCreateTask, domain.TaskPayload{Title: strPtr("only in A")}, aliceID)
	require.NoError(t, err)
	_, err = h.Workflow.Submit(ctx, planB, domain.RequestCreateTask, domain.TaskPayload{Title: strPtr("in B")}, aliceID)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return rec.pendingCount(planB) == 1 }, time.Second, 10*time.Millisecond)
	assert.Zero(t, rec.pendingCount(planA), "cancelled feed must not deliver")
}

func TestSessionState_SetUserCancelsEverything(t *testing.T) {
	h := testApp(t)
	ctx := context.Background()
	aliceID := signUp(t, h.App, "Alice", "alice@example.com")
	planID, err := h.Plans.Create(ctx, aliceID, service.PlanInput{Name: "A"})
	require.NoError(t, err)

	s := NewSessionState(h.App, newRecorder().listener())
	require.NoError(t, s.SetUser(ctx, &domain.SessionUser{ID: aliceID}))
	require.NoError(t, s.SelectPlan(ctx, planID))

	// Same user again keeps the selection.
	require.NoError(t, s.SetUser(ctx, &domain.SessionUser{ID: aliceID}))
	assert.Equal(t, planID, s.PlanID())

	require.NoError(t, s.SetUser(ctx, nil))
	assert.Nil(t, s.User())
	assert.Empty(t, s.PlanID())
	for _, c := range []realtime.Collection{realtime.CollectionPlans, realtime.CollectionTasks, realtime.CollectionChangeRequests} {
		assert.Zero(t, h.hub.SubscriberCount(c), c)
	}
}

func TestSessionState_SelectPlanRequiresUser(t *testing.T) {
	h := testApp(t)
	s := NewSessionState(h.App, SessionListener{})

	err := s.SelectPlan(context.Background(), "some-plan")
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestSessionState_SelectPlanNotMember(t *testing.T) {
	h := testApp(t)
	ctx := context.Background()
	aliceID := signUp(t, h.App, "Alice", "alice@example.com")
	planID, err := h.Plans.Create(ctx, aliceID, service.PlanInput{Name: "Private"})
	require.NoError(t, err)
	bobID := signUp(t, h.App, "Bob", "bob@example.com")

	s := NewSessionState(h.App, SessionListener{})
	t.Cleanup(s.Close)
	require.NoError(t, s.SetUser(ctx, &domain.SessionUser{ID: bobID}))

	err = s.SelectPlan(ctx, planID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, s.PlanID())
	assert.Zero(t, h.hub.SubscriberCount(realtime.CollectionTasks))
}

func TestSessionState_CloseIsIdempotent(t *testing.T) {
	h := testApp(t)
	aliceID := signUp(t, h.App, "Alice", "alice@example.com")
	s := NewSessionState(h.App, SessionListener{})
	require.NoError(t, s.SetUser(context.Background(), &domain.SessionUser{ID: aliceID}))

	s.Close()
	s.Close()
	assert.Zero(t, h.hub.SubscriberCount(realtime.CollectionPlans))
}

func strPtr(s string) *string { return &s }
