package model

import "strings"

// RoleAdmin is the role name that grants administrative access.
const RoleAdmin = "ADMIN"

// UserProfile is the identity returned by the backend on login and
// registration.  It is persisted next to the bearer token and replaced
// wholesale on every login.
//
// Fields:
//  ID        – backend user identifier.
//  FirstName – given name.
//  LastName  – family name.
//  Email     – login email address.
//  Roles     – role names granted to the user (e.g. USER, ADMIN).
type UserProfile struct {
	ID        int64    `json:"id"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// HasRole reports whether the profile carries the named role.  Role
// names are compared case-sensitively, matching the backend.
func (u UserProfile) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// FullName joins first and last name, skipping empty parts.
func (u UserProfile) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AuthResponse is the body of a successful login or registration.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}
