// Package auth - roles.go defines organization roles and the single policy
// function all entry points share. Role checks are evaluated at request time
// against the membership row rather than being embedded in the bearer token,
// so a role change takes effect on the user's next request without token
// rotation.
package auth

import "fmt"

// Role is a user's role within one organization
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Action is a permission-gated operation on organization resources
type Action string

const (
	ActionViewProjects     Action = "projects:view"
	ActionSubmitProject    Action = "projects:submit"
	ActionDeleteProject    Action = "projects:delete"
	ActionUploadFiles      Action = "files:upload"
	ActionDeleteFiles      Action = "files:delete"
	ActionManageOrg        Action = "org:manage"
	ActionDeleteOrg        Action = "org:delete"
	ActionManageMembers    Action = "members:manage"
	ActionInviteMembers    Action = "members:invite"
	ActionViewOrganization Action = "org:view"
)

// rolePolicy maps each action to the minimum set of roles allowed to perform
// it. Keeping this in one table is what prevents per-route drift.
var rolePolicy = map[Action]map[Role]bool{
	ActionViewProjects:     {RoleOwner: true, RoleAdmin: true, RoleMember: true, RoleViewer: true},
	ActionViewOrganization: {RoleOwner: true, RoleAdmin: true, RoleMember: true, RoleViewer: true},
	ActionSubmitProject:    {RoleOwner: true, RoleAdmin: true, RoleMember: true},
	ActionUploadFiles:      {RoleOwner: true, RoleAdmin: true, RoleMember: true},
	ActionDeleteProject:    {RoleOwner: true, RoleAdmin: true},
	ActionDeleteFiles:      {RoleOwner: true, RoleAdmin: true},
	ActionManageOrg:        {RoleOwner: true, RoleAdmin: true},
	ActionManageMembers:    {RoleOwner: true, RoleAdmin: true},
	ActionInviteMembers:    {RoleOwner: true, RoleAdmin: true},
	ActionDeleteOrg:        {RoleOwner: true},
}

// ValidRole reports whether s names a known role
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// CanPerform reports whether a role is allowed to perform an action.
// Unknown actions are denied.
func CanPerform(role Role, action Action) bool {
	allowed, ok := rolePolicy[action]
	if !ok {
		return false
	}
	return allowed[role]
}

// ValidateAssignableRole checks a role string for membership assignment.
// Owner is excluded: ownership is established at organization creation and
// never granted through member management or invitations.
func ValidateAssignableRole(s string) error {
	switch Role(s) {
	case RoleAdmin, RoleMember, RoleViewer:
		return nil
	case RoleOwner:
		return fmt.Errorf("role owner cannot be assigned")
	default:
		return fmt.Errorf("invalid role: %s", s)
	}
}
