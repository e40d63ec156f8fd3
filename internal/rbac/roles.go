package rbac

// Role names. Keep these stable; they are part of auth contracts.
const (
	RoleUser       = "user"
	RoleSupport    = "support"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }
