package authz

import (
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer(nil)
	require.NoError(t, err)
	return e
}

func TestAllowed_PolicyTable(t *testing.T) {
	e := newTestEnforcer(t)

	tests := []struct {
		role    domain.Role
		res     Resource
		act     Action
		allowed bool
	}{
		{domain.RoleOwner, ResourcePlan, ActionShare, true},
		{domain.RoleOwner, ResourceRequest, ActionApprove, true},
		{domain.RoleApprover, ResourceRequest, ActionApprove, true},
		{domain.RoleApprover, ResourcePlan, ActionShare, false},
		{domain.RoleEditor, ResourceRequest, ActionSubmit, true},
		{domain.RoleEditor, ResourceRequest, ActionApprove, false},
		{domain.RoleViewer, ResourceTask, ActionRead, true},
		{domain.RoleViewer, ResourceRequest, ActionSubmit, true},
		{domain.RoleViewer, ResourceRequest, ActionApprove, false},
		{domain.RoleViewer, ResourcePlan, ActionShare, false},
		{domain.Role("guest"), ResourcePlan, ActionRead, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"_"+string(tt.res)+"_"+string(tt.act), func(t *testing.T) {
			ok, err := e.Allowed(tt.role, tt.res, tt.act)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, ok)
		})
	}
}

func TestAuthorize(t *testing.T) {
	e := newTestEnforcer(t)
	plan, err := domain.NewPlan("p1", "alice", "Plan", time.Now())
	require.NoError(t, err)
	plan.Members["bob"] = domain.RoleViewer
	plan.Members["carol"] = domain.RoleApprover

	assert.NoError(t, e.Authorize(plan, "alice", ResourcePlan, ActionShare))
	assert.NoError(t, e.Authorize(plan, "carol", ResourceRequest, ActionApprove))
	assert.ErrorIs(t, e.Authorize(plan, "bob", ResourceRequest, ActionApprove), domain.ErrForbidden)
	assert.ErrorIs(t, e.Authorize(plan, "mallory", ResourcePlan, ActionRead), domain.ErrForbidden)
	assert.ErrorIs(t, e.Authorize(nil, "alice", ResourcePlan, ActionRead), domain.ErrForbidden)
}
