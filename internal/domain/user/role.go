package user

import "strings"

// Role is the closed set of organization roles an actor can hold.
type Role string

const (
	RoleSupporter     Role = "SUPPORTER"
	RoleMember        Role = "MEMBER"
	RoleVolunteer     Role = "VOLUNTEER"
	RoleCoordinator   Role = "COORDINATOR"
	RoleAdministrator Role = "ADMINISTRATOR"
)

var allRoles = []Role{RoleSupporter, RoleMember, RoleVolunteer, RoleCoordinator, RoleAdministrator}

func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range allRoles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}
