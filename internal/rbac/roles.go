package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleViewer     = "viewer"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

// IsKnownRole rejects tokens carrying roles this service does not define.
func IsKnownRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleViewer, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// SettingsEditors may change routing settings and mode overrides.
var SettingsEditors = []string{RoleOwner, RoleAdmin}

// SettingsReaders may read routing settings, status and previews.
var SettingsReaders = []string{RoleOwner, RoleAdmin, RoleViewer}
