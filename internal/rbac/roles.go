package rbac

// Role names. Keep these stable; they are carried in access tokens.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer" // read-only
)

// Writers may mutate CRM data.
var Writers = []string{RoleAdmin, RoleMember}

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleAdmin, RoleMember, RoleViewer:
		return true
	default:
		return false
	}
}
