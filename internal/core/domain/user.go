package domain

import (
	"strings"
	"time"
)

// User models an account able to authenticate against the task service.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleLabels returns the stored role labels.
func (u *User) RoleLabels() []string {
	return RoleStrings(u.Roles)
}

// EffectiveRoles resolves the user's stored labels into an effective role set.
func (u *User) EffectiveRoles() RoleSet {
	return ResolveRoles(u.RoleLabels())
}

// NormalizeEmail canonicalizes a contact handle; handles are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ProfileUpdate carries the mutable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Name   *string
	Avatar *string
}
