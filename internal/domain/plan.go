package domain

import (
	"sort"
	"strings"
	"time"
)

type Plan struct {
	ID        string
	Name      string
	OwnerID   string
	Members   map[string]Role
	CreatedAt time.Time
}

// NewPlan builds a plan whose membership holds only the owner.
func NewPlan(id, ownerID, name string, now time.Time) (*Plan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validationf("plan name is required")
	}
	if ownerID == "" {
		return nil, Validationf("plan owner is required")
	}
	return &Plan{
		ID:        id,
		Name:      name,
		OwnerID:   ownerID,
		Members:   map[string]Role{ownerID: RoleOwner},
		CreatedAt: now,
	}, nil
}

// RoleOf returns the user's role in the plan and whether the user is a member.
func (p *Plan) RoleOf(userID string) (Role, bool) {
	if p == nil || userID == "" {
		return "", false
	}
	r, ok := p.Members[userID]
	if !ok || !r.Valid() {
		return "", false
	}
	return r, true
}

// IsMember reports whether the plan is visible to the user.
func (p *Plan) IsMember(userID string) bool {
	_, ok := p.RoleOf(userID)
	return ok
}

// ValidateGrant checks that granting role to grantee keeps the owner invariant.
func (p *Plan) ValidateGrant(granteeID string, role Role) error {
	if granteeID == "" {
		return Validationf("grantee is required")
	}
	if !role.Valid() {
		return Validationf("unknown role %q", role)
	}
	if role == RoleOwner {
		return Validationf("a plan has exactly one owner")
	}
	if granteeID == p.OwnerID {
		return Validationf("cannot change the owner's role")
	}
	return nil
}

// Member is one entry of a plan's membership map.
type Member struct {
	UserID string
	Role   Role
}

// SortedMembers lists members with the owner first, then by user ID.
func (p *Plan) SortedMembers() []Member {
	out := make([]Member, 0, len(p.Members))
	for id, r := range p.Members {
		out = append(out, Member{UserID: id, Role: r})
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Role == RoleOwner) != (out[j].Role == RoleOwner) {
			return out[i].Role == RoleOwner
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// DisplayID truncates ID to 8 characters.
func (p *Plan) DisplayID() string {
	if len(p.ID) >= 8 {
		return p.ID[:8]
	}
	return p.ID
}
