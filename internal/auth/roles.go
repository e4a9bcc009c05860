package auth

// Admin realm roles. Viewers may read settings; only writers may reload them.
const (
	RoleViewer     = "viewer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleViewer, RoleAdmin, RoleSuperAdmin}
}

// WriteRoles returns roles that can modify settings.
func WriteRoles() []string {
	return []string{RoleAdmin, RoleSuperAdmin}
}

// ValidAdminRole reports whether role is one of AllAdminRoles.
func ValidAdminRole(role string) bool {
	for _, r := range AllAdminRoles() {
		if r == role {
			return true
		}
	}
	return false
}
