package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/cli/formatter"
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages pushed into the live view by SessionState and by commands.
type plansMsg struct{ plans []*domain.Plan }

type tasksMsg struct {
	planID string
	tasks  []*domain.Task
}

type requestsMsg struct {
	planID   string
	requests []*domain.ChangeRequest
}

type userMsg struct{ user *domain.SessionUser }

type planOpenedMsg struct {
	planID string
	err    error
}

type approvedMsg struct {
	requestID string
	err       error
}

type errMsg struct{ err error }

// sessionListener forwards subscription snapshots to send.
func sessionListener(send func(tea.Msg)) SessionListener {
	return SessionListener{
		Plans: func(plans []*domain.Plan) { send(plansMsg{plans: plans}) },
		Tasks: func(planID string, tasks []*domain.Task) {
			send(tasksMsg{planID: planID, tasks: tasks})
		},
		Requests: func(planID string, reqs []*domain.ChangeRequest) {
			send(requestsMsg{planID: planID, requests: reqs})
		},
	}
}

type watchFocus int

const (
	focusPlans watchFocus = iota
	focusRequests
)

// watchModel is the live view behind `tplans watch`. It never touches the
// SessionState from Update: switching plans runs in a Cmd, because cancelling
// a subscription waits for its callback, which may be blocked handing a
// message to this model.
type watchModel struct {
	ctx     context.Context
	app     *App
	session *SessionState
	keys    watchKeyMap
	help    help.Model

	user      *domain.SessionUser
	plans     []*domain.Plan
	cursor    int
	planID    string
	tasks     []*domain.Task
	requests  []*domain.ChangeRequest
	reqCursor int
	focus     watchFocus
	status    string
	width     int
}

// newWatchModel starts on user and, if planID is set, that plan opened. The
// session is expected to be subscribed accordingly.
func newWatchModel(ctx context.Context, app *App, session *SessionState, user *domain.SessionUser, planID string) *watchModel {
	m := &watchModel{
		ctx:     ctx,
		app:     app,
		session: session,
		keys:    defaultWatchKeys(),
		help:    help.New(),
		user:    user,
		planID:  planID,
	}
	if planID != "" {
		m.focus = focusRequests
	}
	return m
}

func (m *watchModel) Init() tea.Cmd {
	return nil
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case userMsg:
		if !sameUser(m.user, msg.user) {
			m.plans, m.tasks, m.requests = nil, nil, nil
			m.planID, m.cursor, m.reqCursor, m.focus = "", 0, 0, focusPlans
		}
		m.user = msg.user
		if msg.user == nil {
			m.status = "Signed out."
		}
		return m, nil

	case plansMsg:
		m.plans = msg.plans
		m.cursor = clampCursor(m.cursor, len(m.plans))
		return m, nil

	case tasksMsg:
		if msg.planID == m.planID {
			m.tasks = msg.tasks
		}
		return m, nil

	case requestsMsg:
		if msg.planID == m.planID {
			m.requests = msg.requests
			m.reqCursor = clampCursor(m.reqCursor, len(m.requests))
		}
		return m, nil

	case planOpenedMsg:
		if msg.err != nil && msg.planID == m.planID {
			m.planID = ""
			m.focus = focusPlans
			m.status = errorStatus(msg.err)
		}
		return m, nil

	case approvedMsg:
		if msg.err != nil {
			m.status = errorStatus(msg.err)
		} else {
			m.status = formatter.Success("Approved " + formatter.ShortID(msg.requestID))
		}
		return m, nil

	case errMsg:
		m.status = errorStatus(msg.err)
		return m, nil
	}
	return m, nil
}

func (m *watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.focus == focusRequests {
			m.reqCursor = clampCursor(m.reqCursor-1, len(m.requests))
		} else {
			m.cursor = clampCursor(m.cursor-1, len(m.plans))
		}

	case key.Matches(msg, m.keys.Down):
		if m.focus == focusRequests {
			m.reqCursor = clampCursor(m.reqCursor+1, len(m.requests))
		} else {
			m.cursor = clampCursor(m.cursor+1, len(m.plans))
		}

	case key.Matches(msg, m.keys.Switch):
		if m.planID != "" && m.focus == focusPlans {
			m.focus = focusRequests
		} else {
			m.focus = focusPlans
		}

	case key.Matches(msg, m.keys.Back):
		m.focus = focusPlans

	case key.Matches(msg, m.keys.Open):
		if m.focus != focusPlans || len(m.plans) == 0 {
			return m, nil
		}
		return m, m.openPlan(m.plans[m.cursor].ID)

	case key.Matches(msg, m.keys.Approve):
		if m.focus != focusRequests || len(m.requests) == 0 || m.user == nil {
			return m, nil
		}
		return m, m.approve(m.requests[m.reqCursor].ID)
	}
	return m, nil
}

func (m *watchModel) openPlan(planID string) tea.Cmd {
	m.planID = planID
	m.tasks, m.requests, m.reqCursor = nil, nil, 0
	m.focus = focusRequests
	m.status = ""
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return planOpenedMsg{planID: planID, err: session.SelectPlan(ctx, planID)}
	}
}

func (m *watchModel) approve(requestID string) tea.Cmd {
	workflow, ctx, userID := m.app.Workflow, m.ctx, m.user.ID
	return func() tea.Msg {
		return approvedMsg{requestID: requestID, err: workflow.Approve(ctx, requestID, userID)}
	}
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header("tplans watch"))
	b.WriteString("\n")

	if m.user == nil {
		b.WriteString(formatter.Dim("Not signed in. Run `tplans auth signin` in another terminal."))
		b.WriteString("\n\n")
		b.WriteString(m.footer())
		return b.String()
	}
	b.WriteString(formatter.Dim("signed in as ") + m.user.Email + "\n\n")

	b.WriteString(m.viewPlans())
	if plan := m.openedPlan(); plan != nil {
		b.WriteString("\n")
		b.WriteString(formatter.FormatTaskList(plan.Name, m.tasks))
		b.WriteString("\n")
		b.WriteString(m.viewRequests(plan))
	}
	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m *watchModel) viewPlans() string {
	if len(m.plans) == 0 {
		return formatter.Dim("No plans yet. Create one with `tplans plan create --name ...`.") + "\n"
	}
	var b strings.Builder
	for i, p := range m.plans {
		marker := "  "
		if i == m.cursor && m.focus == focusPlans {
			marker = formatter.StyleHeader.Render("▸ ")
		}
		name := p.Name
		if p.ID == m.planID {
			name = formatter.Bold(name)
		}
		role, _ := p.RoleOf(m.user.ID)
		fmt.Fprintf(&b, "%s%s  %s  %s\n", marker, formatter.TruncID(p.ID), name, formatter.RoleBadge(role))
	}
	return b.String()
}

func (m *watchModel) viewRequests(plan *domain.Plan) string {
	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render("PENDING REQUESTS"))
	b.WriteString("\n")
	if len(m.requests) == 0 {
		b.WriteString(formatter.Dim("  none"))
		b.WriteString("\n")
		return b.String()
	}
	role, _ := plan.RoleOf(m.user.ID)
	for i, r := range m.requests {
		marker := "  "
		if i == m.reqCursor && m.focus == focusRequests {
			marker = formatter.StyleHeader.Render("▸ ")
		}
		fmt.Fprintf(&b, "%s%s  %s  %s\n", marker, formatter.TruncID(r.ID), r.Summary(),
			formatter.Dim("by "+formatter.ShortID(r.RequestedBy)))
	}
	if !role.CanApprove() {
		b.WriteString(formatter.Dim("  only the owner or an approver can approve"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *watchModel) footer() string {
	var parts []string
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

func (m *watchModel) openedPlan() *domain.Plan {
	if m.planID == "" {
		return nil
	}
	for _, p := range m.plans {
		if p.ID == m.planID {
			return p
		}
	}
	return nil
}

func clampCursor(i, n int) int {
	if n == 0 {
		return 0
	}
	return min(max(i, 0), n-1)
}

func errorStatus(err error) string {
	return formatter.StyleRed.Render("Error: " + err.Error())
}
