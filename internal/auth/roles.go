package auth

// UserRole is the principal's global role.
type UserRole string

const (
	// RoleAdmin can manage users and all dashboard data.
	RoleAdmin UserRole = "admin"
	// RoleStaff can read and annotate dashboard data.
	RoleStaff UserRole = "staff"
	// RoleViewer has read-only access.
	RoleViewer UserRole = "viewer"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleViewer:
		return true
	default:
		return false
	}
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleStaff, RoleViewer}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
