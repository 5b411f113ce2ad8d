package domain

import (
	"errors"
	"time"
)

// Role represents a privilege held by a principal.
type Role string

const (
	// RoleOwner manages role assignments.
	RoleOwner Role = "owner"

	// RoleAdmin manages the asset registry and can unpause.
	RoleAdmin Role = "admin"

	// RoleEmergency can halt deposits and withdrawals.
	RoleEmergency Role = "emergency"
)

var validRoles = map[Role]bool{
	RoleOwner:     true,
	RoleAdmin:     true,
	RoleEmergency: true,
}

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// AllRoles returns every role in grant order.
func AllRoles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleEmergency}
}

// RoleAssignment records that a principal holds a role.
type RoleAssignment struct {
	Principal string
	Role      Role
	GrantedBy string
	GrantedAt time.Time
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
