package model

import "fmt"

// Role is the closed set of caller roles carried in access tokens.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Capability names an action a role may be granted.
type Capability string

const (
	CapProfileRead   Capability = "profile:read"
	CapCoursesManage Capability = "courses:manage"
	CapEnquiriesRead Capability = "enquiries:read"
)

var roleCapabilities = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapProfileRead:   {},
		CapCoursesManage: {},
		CapEnquiriesRead: {},
	},
	RoleUser: {
		CapProfileRead: {},
	},
}

// ParseRole converts a raw claim value into a Role, rejecting anything
// outside the known set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants capability c.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}
