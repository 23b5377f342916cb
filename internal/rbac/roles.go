package rbac

// Role names. Keep these stable; they are part of auth contracts and the
// users.role column.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleAgent
}
