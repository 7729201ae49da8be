package session

import (
	"github.com/google/uuid"
)

// Role is the identity's global role as reported by the API.
type Role = string

const (
	// RoleMember is a regular ensemble member.
	RoleMember Role = "member"
	// RoleAdmin can manage members, approvals, and inventory.
	RoleAdmin Role = "admin"
)

// AccountStatus is the server-reported account state, independent of role.
type AccountStatus = string

const (
	// StatusActive accounts may establish a session.
	StatusActive AccountStatus = "active"
	// StatusPending accounts await administrator approval.
	StatusPending AccountStatus = "pending"
	// StatusBlocked accounts have been locked out by an administrator.
	StatusBlocked AccountStatus = "blocked"
)

// Identity describes the current actor once the identity check has resolved.
type Identity struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	Role        Role
	Status      AccountStatus
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Snapshot is the read-only view of session state that guards consume.
// Identity is nil until the most recent identity check succeeded with an
// active account.
type Snapshot struct {
	Initializing bool
	Identity     *Identity
}
