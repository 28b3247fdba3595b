package domain

import (
	"net/http"
	"slices"
	"strings"
)

// Access describes what a rule demands of the caller.
type Access int

const (
	// AccessPublic lets any request through, with or without a principal.
	AccessPublic Access = iota
	// AccessAuthenticated requires a principal with any role.
	AccessAuthenticated
	// AccessRoles requires a principal holding at least one of the rule's roles.
	AccessRoles
)

// Rule is one entry of the ordered authorization table.
type Rule struct {
	Name     string
	Methods  []string // empty matches every method
	Patterns []string // empty matches every path
	Access   Access
	Roles    []Role
}

// Decision is the outcome of evaluating a request against the policy.
// Err is nil when Allowed is true, ErrAuthenticationRequired when a principal
// was needed and missing, and ErrInsufficientRole otherwise.
type Decision struct {
	Allowed bool
	Rule    string
	Err     error
}

// Policy is an immutable ordered rule table; the first matching rule decides.
// It is safe for concurrent use.
type Policy struct {
	rules []Rule
}

// NewPolicy copies rules into a new Policy.
func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: slices.Clone(rules)}
}

// DefaultPolicy builds the OpsPilot route table:
//
//  1. OPTIONS requests (CORS preflight) are allowed.
//  2. publicPaths are allowed.
//  3. /api/admin/* requires ADMIN.
//  4. /api/workitems/* requires ADMIN or OPERATOR.
//  5. Everything else requires any authenticated principal.
func DefaultPolicy(publicPaths []string) *Policy {
	rules := []Rule{{Name: "preflight", Methods: []string{http.MethodOptions}, Access: AccessPublic}}
	// An empty pattern list matches every path, so the public rule is only
	// installed when there is something to expose.
	if len(publicPaths) > 0 {
		rules = append(rules, Rule{Name: "public", Patterns: publicPaths, Access: AccessPublic})
	}
	rules = append(rules,
		Rule{Name: "admin", Patterns: []string{"/api/admin/*"}, Access: AccessRoles, Roles: []Role{RoleAdmin}},
		Rule{
			Name:     "workitems",
			Patterns: []string{"/api/workitems/*"},
			Access:   AccessRoles,
			Roles:    []Role{RoleAdmin, RoleOperator},
		},
		Rule{Name: "authenticated", Access: AccessAuthenticated},
	)
	return NewPolicy(rules...)
}

// Rules returns a copy of the rule table.
func (p *Policy) Rules() []Rule {
	return slices.Clone(p.rules)
}

// Decide evaluates the request against the rule table. A nil principal means the
// request is unauthenticated. When no rule matches the request is denied as if it
// required authentication.
func (p *Policy) Decide(method, path string, principal *Principal) Decision {
	for _, rule := range p.rules {
		if !rule.matches(method, path) {
			continue
		}

		switch rule.Access {
		case AccessPublic:
			return Decision{Allowed: true, Rule: rule.Name}
		case AccessAuthenticated:
			if principal == nil {
				return Decision{Rule: rule.Name, Err: ErrAuthenticationRequired}
			}
			return Decision{Allowed: true, Rule: rule.Name}
		default:
			if principal == nil {
				return Decision{Rule: rule.Name, Err: ErrAuthenticationRequired}
			}
			if !principal.HasAnyRole(rule.Roles...) {
				return Decision{Rule: rule.Name, Err: ErrInsufficientRole}
			}
			return Decision{Allowed: true, Rule: rule.Name}
		}
	}

	return Decision{Err: ErrAuthenticationRequired}
}

func (r Rule) matches(method, path string) bool {
	if len(r.Methods) > 0 && !slices.ContainsFunc(r.Methods, func(m string) bool {
		return strings.EqualFold(m, method)
	}) {
		return false
	}
	if len(r.Patterns) == 0 {
		return true
	}
	for _, pattern := range r.Patterns {
		if MatchPath(pattern, path) {
			return true
		}
	}
	return false
}

// MatchPath reports whether path matches pattern. Matching is case-sensitive.
//
//   - "*" matches any path
//   - "/api/admin/*" matches "/api/admin" and everything below it
//   - "/api/workitems/*/status" matches exactly one segment in place of "*"
func MatchPath(pattern, path string) bool {
	if pattern == "*" {
		return true
	}

	if !strings.Contains(pattern, "*") {
		return pattern == path
	}

	if strings.HasSuffix(pattern, "/*") && !strings.Contains(strings.TrimSuffix(pattern, "/*"), "*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}

	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(path, "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i := range patternParts {
		if patternParts[i] == "*" {
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}
	return true
}
