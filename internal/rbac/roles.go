package rbac

// Operator role names. Keep these stable; they are part of the token contract.
const (
	RoleAdmin      = "admin"
	RoleDispatcher = "dispatcher"
	RoleViewer     = "viewer"
)

// Roles lists every role a token may carry.
func Roles() []string { return []string{RoleAdmin, RoleDispatcher, RoleViewer} }

func IsAdmin(role string) bool { return role == RoleAdmin }

func Known(role string) bool {
	for _, r := range Roles() {
		if r == role {
			return true
		}
	}
	return false
}
