// Package models contains domain types for promatch-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants for marketplace accounts.
const (
	RoleClient   = "client"
	RoleBusiness = "business"
	RoleAdmin    = "admin"
)

// User represents a marketplace account. Clients post projects, businesses
// submit proposals, admins moderate (moderation flows live outside the engine).
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsValidRole reports whether the given role is one of the known account roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleClient, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}
