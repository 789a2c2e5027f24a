package domain

// Role is the caller's position in the authorization ladder:
// Anonymous < NormalUser < TenantAdmin < SuperAdmin.
type Role string

const (
	RoleAnonymous   Role = "Anonymous"
	RoleNormalUser  Role = "NormalUser"
	RoleTenantAdmin Role = "TenantAdmin"
	RoleSuperAdmin  Role = "SuperAdmin"
)

var roleRank = map[Role]int{
	RoleAnonymous:   0,
	RoleNormalUser:  1,
	RoleTenantAdmin: 2,
	RoleSuperAdmin:  3,
}

// ParseRole maps a role name to a Role; unknown names degrade to Anonymous.
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return RoleAnonymous
	}
	return r
}

// AtLeast reports whether r sits at or above min on the ladder.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

func (r Role) String() string { return string(r) }

// Requester identifies the caller of a service operation for authorization
// decisions: who they are and how privileged they are.
type Requester struct {
	UserID string
	Role   Role
}

// Elevated reports whether the requester holds an administrative role.
func (q Requester) Elevated() bool {
	return q.Role.AtLeast(RoleTenantAdmin)
}
