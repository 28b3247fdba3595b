// Package domain defines the authentication and authorization model of OpsPilot:
// the closed role set, the per-request principal, token claims and the route policy.
package domain

import (
	"strings"
)

// AuthorityPrefix is prepended to a role name to form its authority string.
const AuthorityPrefix = "ROLE_"

// Role is one of the three fixed OpsPilot roles.
type Role string

const (
	// RoleAdmin manages employees and sees every work item.
	RoleAdmin Role = "ADMIN"
	// RoleOperator creates and works on work items.
	RoleOperator Role = "OPERATOR"
	// RoleViewer is the lowest role; it may only reach routes open to any authenticated employee.
	RoleViewer Role = "VIEWER"
)

// AllRoles lists every role from highest to lowest privilege.
var AllRoles = []Role{RoleAdmin, RoleOperator, RoleViewer}

// Valid reports whether r is one of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Authority returns the prefixed form carried in tokens, e.g. "ROLE_ADMIN".
func (r Role) Authority() string {
	return AuthorityPrefix + string(r)
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts either the bare name ("ADMIN") or the authority form ("ROLE_ADMIN"),
// case-insensitively, surrounded by optional whitespace.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, AuthorityPrefix)

	role := Role(name)
	if !role.Valid() {
		return "", ErrUnknownRole
	}
	return role, nil
}

// EncodeRoleClaim renders roles as the comma-joined authority list stored in the
// token's roles claim. Each authority carries exactly one prefix and appears once.
func EncodeRoleClaim(roles []Role) string {
	seen := make(map[Role]struct{}, len(roles))
	authorities := make([]string, 0, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		authorities = append(authorities, role.Authority())
	}
	return strings.Join(authorities, ",")
}

// ParseRoleClaim turns a roles claim back into roles. Entries are trimmed and
// their prefix normalised; unknown entries are dropped and returned separately so
// the caller can log them. A claim without any recognised role resolves to
// [RoleViewer], never to an empty set.
func ParseRoleClaim(claim string) (roles []Role, dropped []string) {
	seen := make(map[Role]struct{})
	for _, entry := range strings.Split(claim, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		role, err := ParseRole(entry)
		if err != nil {
			dropped = append(dropped, entry)
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}

	if len(roles) == 0 {
		roles = []Role{RoleViewer}
	}
	return roles, dropped
}
