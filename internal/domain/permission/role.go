// Package permission derives capability flags from a user's role.
package permission

import "strings"

// Role is a named user role
type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleEventManager   Role = "EventManager"
	RoleFinanceManager Role = "FinanceManager"
	RoleStaff          Role = "Staff"
	RoleViewer         Role = "Viewer"
)

func (r Role) String() string {
	return string(r)
}

// Is compares two role names case-insensitively
func (r Role) Is(name string) bool {
	return strings.EqualFold(string(r), strings.TrimSpace(name))
}

func containsRole(list []Role, name string) bool {
	for _, r := range list {
		if r.Is(name) {
			return true
		}
	}
	return false
}
