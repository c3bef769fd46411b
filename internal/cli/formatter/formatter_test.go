package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ansiPattern matches ANSI escape sequences.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable(
		[]string{"A", "LONG HEADER"},
		[][]string{{Bold("wide cell"), "x"}, {"y", StyleRed.Render("z")}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A          LONG HEADER", lines[0])
	assert.Equal(t, "wide cell  x", lines[2])
	assert.Equal(t, "y          z", lines[3])
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"a"}}))
}

func TestRenderProgress(t *testing.T) {
	assert.Equal(t, "[█████░░░░░]  50%", stripANSI(RenderProgress(50, 10)))
	assert.Equal(t, "[░░░░░░░░░░]   0%", stripANSI(RenderProgress(-5, 10)))
	assert.Equal(t, "[██████████] 100%", stripANSI(RenderProgress(150, 10)))
}

func TestHumanTimestampFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", HumanTimestampFrom(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestampFrom(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", HumanTimestampFrom(now.Add(-3*time.Hour), now))
}

func TestFormatPlanList_ShowsRole(t *testing.T) {
	plan, err := domain.NewPlan("0123456789", "alice", "Q1 Roadmap", time.Now())
	require.NoError(t, err)
	plan.Members["bob"] = domain.RoleViewer

	out := stripANSI(FormatPlanList([]*domain.Plan{plan}, "bob"))
	assert.Contains(t, out, "PLANS")
	assert.Contains(t, out, "01234567")
	assert.Contains(t, out, "Q1 Roadmap")
	assert.Contains(t, out, "○ viewer")
}

func TestFormatMembers(t *testing.T) {
	plan := &domain.Plan{Name: "Team"}
	out := stripANSI(FormatMembers(plan, []service.MemberView{
		{UserID: "alice-id", Role: domain.RoleOwner, Name: "Alice", Email: "a@example.com"},
		{UserID: "ghost-id", Role: domain.RoleEditor},
	}))
	assert.Contains(t, out, "TEAM MEMBERS")
	assert.Contains(t, out, "◆ owner")
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "✎ editor")
}

func TestFormatTaskList(t *testing.T) {
	tasks := []*domain.Task{
		{ID: "t1", Title: "First", Status: "In Progress", Progress: 40, Order: 1},
		{ID: "t2", Title: "Later", Status: domain.DefaultTaskStatus, Order: domain.DefaultTaskOrder},
	}
	out := stripANSI(FormatTaskList("Roadmap", tasks))
	assert.Contains(t, out, "First")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, " 40%")
	assert.Less(t, strings.Index(out, "First"), strings.Index(out, "Later"))

	assert.Contains(t, stripANSI(FormatTaskList("Empty", nil)), "No tasks yet")
}

func TestFormatRequests(t *testing.T) {
	title := "Draft spec"
	approvedAt := time.Now().Add(-time.Minute)
	pending, err := domain.NewChangeRequest("req-1", "p1", domain.RequestCreateTask,
		domain.TaskPayload{Title: &title}, "bob", time.Now())
	require.NoError(t, err)
	approved := *pending
	approved.ID = "req-2"
	approved.Status = domain.RequestApproved
	approved.ApprovedAt = &approvedAt
	approved.ApprovedBy = "alice"

	name := func(id string) string { return "@" + id }

	out := stripANSI(FormatPendingRequests("Roadmap", []*domain.ChangeRequest{pending}, name))
	assert.Contains(t, out, "CREATE_TASK (Draft spec)")
	assert.Contains(t, out, "@bob")

	out = stripANSI(FormatHistory("Roadmap", []*domain.ChangeRequest{&approved, pending}, name))
	assert.Contains(t, out, "✔ Approved")
	assert.Contains(t, out, "● Pending")
	assert.Contains(t, out, "@alice")

	detail := stripANSI(FormatRequestDetail(&approved, name))
	assert.Contains(t, detail, "title: Draft spec")
	assert.Contains(t, detail, "@alice")
}
