package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/authz"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/identity"
	"github.com/alexanderramin/tplans/internal/realtime"
	"github.com/alexanderramin/tplans/internal/repository"
	"github.com/alexanderramin/tplans/internal/service"
	"github.com/alexanderramin/tplans/internal/testutil"
	"github.com/stretchr/testify/require"
)

const testPassword = "hunter22"

// testHarness is an App over an in-memory database plus the hub it publishes on.
type testHarness struct {
	*App
	hub *realtime.Hub
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *testHarness {
	t.Helper()
	database := testutil.NewTestDB(t)
	hub := realtime.NewHub(nil)
	enforcer, err := authz.NewEnforcer(nil)
	require.NoError(t, err)

	plans := repository.NewSQLitePlanRepo(database)
	tasks := repository.NewSQLiteTaskRepo(database)
	requests := repository.NewSQLiteChangeRequestRepo(database)
	directory := service.NewDirectoryService(repository.NewSQLiteUserRepo(database))
	provider := identity.NewProvider(
		repository.NewSQLiteAccountRepo(database),
		identity.NewTokenIssuer([]byte("cli-test-secret"), time.Hour),
		&identity.MemorySessionStore{},
		hub,
		nil,
	)

	planSvc := service.NewPlanService(plans, directory, enforcer, hub)
	workflow := service.NewWorkflowService(plans, tasks, requests, testutil.NewTestUoW(database), enforcer, hub)

	return &testHarness{
		App: &App{
			Identity:  service.NewIdentityService(provider, directory),
			Directory: directory,
			Plans:     planSvc,
			Tasks:     service.NewTaskService(plans, tasks, enforcer, hub),
			Workflow:  workflow,
			Import:    service.NewImportService(directory, planSvc, workflow),
		},
		hub: hub,
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

func mustExec(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	return out
}

// signUp registers a user through the CLI, leaving them signed in.
func signUp(t *testing.T, app *App, name, email string) string {
	t.Helper()
	mustExec(t, app, "auth", "signup", "--name", name, "--email", email, "--password", testPassword)
	return currentUserID(t, app)
}

func signIn(t *testing.T, app *App, email string) {
	t.Helper()
	mustExec(t, app, "auth", "signin", "--email", email, "--password", testPassword)
}

func currentUserID(t *testing.T, app *App) string {
	t.Helper()
	u, err := app.Identity.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.ID
}

// onlyPlan returns the single plan visible to userID.
func onlyPlan(t *testing.T, app *App, userID string) *domain.Plan {
	t.Helper()
	plans, err := app.Plans.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	return plans[0]
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
