package domain

import (
	"sort"
	"strings"
)

// Role is one label of the closed role enumeration stored on a user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleUser   Role = "user"
)

// AllRoles lists every known role in a stable order.
var AllRoles = []Role{RoleAdmin, RoleEditor, RoleViewer, RoleUser}

// DefaultRoles is assigned on signup when no roles are requested.
var DefaultRoles = []Role{RoleUser}

// ownershipExempt roles bypass the ownership gate.
var ownershipExempt = map[Role]struct{}{
	RoleAdmin: {},
}

// ParseRole normalizes a label and reports whether it is part of the enumeration.
func ParseRole(label string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(label)))
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer, RoleUser:
		return r, true
	}
	return "", false
}

// NormalizeRoles keeps the known labels of a requested role list, without
// duplicates, and falls back to DefaultRoles when nothing usable remains.
func NormalizeRoles(labels []string) []Role {
	seen := make(map[Role]struct{}, len(labels))
	out := make([]Role, 0, len(labels))
	for _, l := range labels {
		r, ok := ParseRole(l)
		if !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return append([]Role(nil), DefaultRoles...)
	}
	return out
}

// RoleSet is an effective role set, the input to authorization decisions.
type RoleSet map[Role]struct{}

// ResolveRoles derives the effective role set from stored labels. Labels
// outside the enumeration are ignored. A holder of both editor and viewer is
// also treated as admin. The result is recomputed on every call so that label
// changes take effect immediately.
func ResolveRoles(labels []string) RoleSet {
	set := make(RoleSet, len(labels)+1)
	for _, l := range labels {
		if r, ok := ParseRole(l); ok {
			set[r] = struct{}{}
		}
	}
	if isVirtualAdmin(set) {
		set[RoleAdmin] = struct{}{}
	}
	return set
}

// isVirtualAdmin is the composite rule: editor + viewer implies admin.
func isVirtualAdmin(set RoleSet) bool {
	_, editor := set[RoleEditor]
	_, viewer := set[RoleViewer]
	return editor && viewer
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// HasAny reports whether the set intersects roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the set holds admin, directly or through composition.
func (s RoleSet) IsAdmin() bool {
	return s.Has(RoleAdmin)
}

// Slice returns the roles in a stable order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleStrings converts roles to their labels.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
