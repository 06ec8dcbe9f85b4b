package domain

import (
	"strings"
	"time"
)

// Role controls what a user may do through the API.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleViewer:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// CanWrite reports whether the role may create or modify domain resources.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleStaff
}

// CanManageUsers reports whether the role may administer accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

// ParseRole parses a string into a Role.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	return role, role.IsValid()
}

// User is a staff account able to sign in to the platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an address for unique comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
