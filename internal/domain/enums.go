package domain

// Role is a member's permission level within a single plan.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleEditor   Role = "editor"
	RoleViewer   Role = "viewer"
	RoleApprover Role = "approver"
)

// MemberRoles is the canonical set of roles that make a user a plan member.
var MemberRoles = []Role{RoleOwner, RoleEditor, RoleViewer, RoleApprover}

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", Validationf("unknown role %q (want owner, editor, viewer or approver)", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer, RoleApprover:
		return true
	}
	return false
}

// CanApprove reports whether the role may approve change requests.
func (r Role) CanApprove() bool {
	return r == RoleOwner || r == RoleApprover
}

type ChangeRequestType string

const (
	RequestCreateTask ChangeRequestType = "CREATE_TASK"
	RequestUpdateTask ChangeRequestType = "UPDATE_TASK"
	RequestDeleteTask ChangeRequestType = "DELETE_TASK"
)

func (t ChangeRequestType) Valid() bool {
	switch t {
	case RequestCreateTask, RequestUpdateTask, RequestDeleteTask:
		return true
	}
	return false
}

type ChangeRequestStatus string

const (
	RequestPending  ChangeRequestStatus = "Pending"
	RequestApproved ChangeRequestStatus = "Approved"
)

type AuthProvider string

const (
	ProviderPassword AuthProvider = "password"
	ProviderGoogle   AuthProvider = "google"
)

// ValidFederatedProviders lists the providers accepted by federated sign-in.
var ValidFederatedProviders = map[AuthProvider]bool{
	ProviderGoogle: true,
}
