package domain

import (
	"slices"
)

// Principal is the authenticated identity of a single request. It is built from
// token claims alone and lives only in that request's context.
type Principal struct {
	Subject string
	Roles   []Role
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role Role) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, role)
}

// HasAnyRole reports whether the principal holds at least one of roles.
func (p *Principal) HasAnyRole(roles ...Role) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// Authorities returns the prefixed authority strings of the principal's roles.
func (p *Principal) Authorities() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.Roles))
	for _, role := range p.Roles {
		out = append(out, role.Authority())
	}
	return out
}

// PrimaryRole returns the highest role held, or RoleViewer for an empty set.
func (p *Principal) PrimaryRole() Role {
	for _, role := range AllRoles {
		if p.HasRole(role) {
			return role
		}
	}
	return RoleViewer
}

// AuthorizeRegistration decides whether principal may create an account with
// role. Anyone, including an anonymous caller, may register a VIEWER. OPERATOR
// and ADMIN accounts can only be created by an ADMIN.
func AuthorizeRegistration(principal *Principal, role Role) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	if role == RoleViewer || principal.HasRole(RoleAdmin) {
		return nil
	}
	return ErrPrivilegedRegistration
}
