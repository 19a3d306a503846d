// Package caller describes the user profiles read from the identity collaborator.
package caller

// RoleAdmin may moderate places.
const RoleAdmin = "admin"

// Profile is the subset of a user profile this service reads.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Active      bool   `json:"active"`
	Role        string `json:"role,omitempty"`
}

// IsAdmin reports whether the caller may moderate places.
func (p Profile) IsAdmin() bool { return p.Active && p.Role == RoleAdmin }
