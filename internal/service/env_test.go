package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/authz"
	"github.com/alexanderramin/tplans/internal/db"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/identity"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
	"github.com/alexanderramin/tplans/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db       *sql.DB
	hub      *realtime.Hub
	plans    *repository.SQLitePlanRepo
	tasks    *repository.SQLiteTaskRepo
	requests *repository.SQLiteChangeRequestRepo
	users    *repository.SQLiteUserRepo
	authz    *authz.Enforcer

	Identity  IdentityService
	Directory DirectoryService
	Plans     PlanService
	Tasks     TaskService
	Workflow  WorkflowService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithUoW(t, nil)
}

// newTestEnvWithUoW lets rollback tests swap in a fault-injecting unit of work.
func newTestEnvWithUoW(t *testing.T, uowFor func(*sql.DB) db.UnitOfWork) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	hub := realtime.NewHub(nil)
	enforcer, err := authz.NewEnforcer(nil)
	require.NoError(t, err)

	uow := testutil.NewTestUoW(database)
	if uowFor != nil {
		uow = uowFor(database)
	}

	env := &testEnv{
		db:       database,
		hub:      hub,
		plans:    repository.NewSQLitePlanRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		requests: repository.NewSQLiteChangeRequestRepo(database),
		users:    repository.NewSQLiteUserRepo(database),
		authz:    enforcer,
	}
	env.Directory = NewDirectoryService(env.users)
	provider := identity.NewProvider(
		repository.NewSQLiteAccountRepo(database),
		identity.NewTokenIssuer([]byte("test-secret"), time.Hour),
		&identity.MemorySessionStore{},
		hub,
		nil,
	)
	env.Identity = NewIdentityService(provider, env.Directory)
	env.Plans = NewPlanService(env.plans, env.Directory, enforcer, hub)
	env.Tasks = NewTaskService(env.plans, env.tasks, enforcer, hub)
	env.Workflow = NewWorkflowService(env.plans, env.tasks, env.requests, uow, enforcer, hub)
	return env
}

// addUser creates a directory profile and returns its handle.
func (e *testEnv) addUser(t *testing.T, name, email string) string {
	t.Helper()
	u := testutil.NewTestUser(name, testutil.WithEmail(email))
	require.NoError(t, e.Directory.CreateProfile(context.Background(), u.ID, u.Name, u.Email))
	return u.ID
}

// collector records every snapshot a subscription delivers.
type collector[T any] struct {
	mu   sync.Mutex
	seen [][]T
}

func (c *collector[T]) deliver(v []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, v)
}

func (c *collector[T]) last() ([]T, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.seen) == 0 {
		return nil, 0
	}
	return c.seen[len(c.seen)-1], len(c.seen)
}

func planIDs(plans []*domain.Plan) []string {
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return ids
}

func taskTitles(tasks []*domain.Task) []string {
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	return titles
}

func mustTitle(title string) domain.TaskPayload {
	return domain.TaskPayload{Title: &title}
}
