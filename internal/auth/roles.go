package auth

import "terravista/internal/model"

// Capability is a named permission a role may hold
type Capability = string

const (
	// CapabilityCreatePost allows publishing property listings
	CapabilityCreatePost Capability = "createPost"
	// CapabilityGetUsers allows listing and searching users
	CapabilityGetUsers Capability = "getUsers"
	// CapabilityManageUsers allows updating and deleting users
	CapabilityManageUsers Capability = "manageUsers"
)

// roleCapabilities is the static role policy. Process-wide, read-only
// after startup.
var roleCapabilities = map[model.UserRole][]Capability{
	model.RoleUser:  {CapabilityCreatePost},
	model.RoleAdmin: {CapabilityGetUsers, CapabilityManageUsers, CapabilityCreatePost},
}

// RoleGrants reports whether the role holds the given capability
func RoleGrants(role model.UserRole, capability Capability) bool {
	for _, c := range roleCapabilities[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set for a role
func Capabilities(role model.UserRole) []Capability {
	caps := roleCapabilities[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}
