package auth

import "strings"

// AuthorityPrefix is prepended to the raw role when we expose the
// prefixed authority form alongside it.
const AuthorityPrefix = "ROLE_"

// ParseRole normalizes a raw role string. Unknown or empty values
// collapse to RoleUser so a malformed record never grants privileges.
func ParseRole(raw string) UserRole {
	switch UserRole(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// IsAdmin reports whether the role grants admin capability.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// Authorities returns both forms of the role: the raw name and the
// prefixed one. Authorization checks accept either form.
func (r UserRole) Authorities() []string {
	return []string{string(r), AuthorityPrefix + string(r)}
}

// HasAuthority reports whether the given authority string, raw or
// prefixed, matches this role.
func (r UserRole) HasAuthority(authority string) bool {
	return authority == string(r) || authority == AuthorityPrefix+string(r)
}

// RoleFromAuthority recovers a role from either authority form.
func RoleFromAuthority(authority string) UserRole {
	return ParseRole(strings.TrimPrefix(authority, AuthorityPrefix))
}
