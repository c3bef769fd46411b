package cli

import (
	"context"
	"sync"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/realtime"
)

// SessionListener receives the snapshots a SessionState subscribes to.
// Tasks and Requests carry the plan they belong to so stale deliveries from
// a previously selected plan can be told apart.
type SessionListener struct {
	Plans    func(plans []*domain.Plan)
	Tasks    func(planID string, tasks []*domain.Task)
	Requests func(planID string, requests []*domain.ChangeRequest)
}

// SessionState owns the live subscriptions of one interactive session: the
// signed-in user's plan feed and the task and pending-request feeds of the
// selected plan. Switching user or plan cancels the superseded handles
// before new ones are opened.
type SessionState struct {
	app *App
	on  SessionListener

	mu       sync.Mutex
	user     *domain.SessionUser
	planID   string
	plans    realtime.CancelFunc
	tasks    realtime.CancelFunc
	requests realtime.CancelFunc
}

func NewSessionState(app *App, on SessionListener) *SessionState {
	return &SessionState{app: app, on: on}
}

// User returns the current user, or nil when signed out.
func (s *SessionState) User() *domain.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// PlanID returns the selected plan, or "".
func (s *SessionState) PlanID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.planID
}

// SetUser switches the session to u. Every active handle is cancelled; a
// non-nil user gets a fresh plan feed. Setting the same user again is a no-op.
func (s *SessionState) SetUser(ctx context.Context, u *domain.SessionUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sameUser(s.user, u) {
		return nil
	}
	s.cancelPlanLocked()
	cancelHandle(&s.plans)
	s.user = u
	if u == nil {
		return nil
	}

	cancel, err := s.app.Plans.SubscribeUserPlans(ctx, u.ID, func(plans []*domain.Plan) {
		if s.on.Plans != nil {
			s.on.Plans(plans)
		}
	})
	if err != nil {
		return err
	}
	s.plans = cancel
	return nil
}

// SelectPlan replaces the task and pending-request feeds with planID's.
// An empty planID just closes them.
func (s *SessionState) SelectPlan(ctx context.Context, planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPlanLocked()
	if planID == "" {
		return nil
	}
	if s.user == nil {
		return domain.ErrNotSignedIn
	}
	userID := s.user.ID

	tasks, err := s.app.Tasks.SubscribeTasks(ctx, userID, planID, func(tasks []*domain.Task) {
		if s.on.Tasks != nil {
			s.on.Tasks(planID, tasks)
		}
	})
	if err != nil {
		return err
	}
	requests, err := s.app.Workflow.SubscribePending(ctx, userID, planID, func(reqs []*domain.ChangeRequest) {
		if s.on.Requests != nil {
			s.on.Requests(planID, reqs)
		}
	})
	if err != nil {
		tasks()
		return err
	}

	s.planID = planID
	s.tasks = tasks
	s.requests = requests
	return nil
}

// Close cancels every handle and forgets the user.
func (s *SessionState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPlanLocked()
	cancelHandle(&s.plans)
	s.user = nil
}

func (s *SessionState) cancelPlanLocked() {
	cancelHandle(&s.tasks)
	cancelHandle(&s.requests)
	s.planID = ""
}

func cancelHandle(h *realtime.CancelFunc) {
	if *h != nil {
		(*h)()
		*h = nil
	}
}

func sameUser(a, b *domain.SessionUser) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
