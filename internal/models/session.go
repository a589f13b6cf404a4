package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the route guards.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// Session carries the resolved bearer credential plus minimal identity for
// the lifetime of one request.
type Session struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	// Token is the raw bearer credential forwarded to the upstream backend.
	Token string `json:"-"`
}

// SessionClaims is the JWT payload minted by the upstream backend. The
// gateway only reads it; it never issues tokens itself.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
