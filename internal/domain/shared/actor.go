package shared

import "github.com/google/uuid"

// Role is the back-office role carried by an authenticated actor
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleAccountManager Role = "ACCOUNT_MANAGER"
	RoleHOF            Role = "HOF"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAccountManager, RoleHOF:
		return true
	}
	return false
}

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

// NewActor creates an actor, rejecting empty ids and unknown roles
func NewActor(userID uuid.UUID, name string, role Role) (Actor, error) {
	if userID == uuid.Nil {
		return Actor{}, NewValidationError("Actor user ID is required")
	}
	if !role.IsValid() {
		return Actor{}, NewValidationError("Unknown role: " + string(role))
	}
	return Actor{UserID: userID, Name: name, Role: role}, nil
}

// HasRole reports whether the actor holds any of the given roles
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
