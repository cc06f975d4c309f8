// Package entity contains the core business objects of the project.
package entity

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Role represents which side of a donation an account acts for.
type Role string

const (
	// RoleRestaurant indicates an account that offers food.
	RoleRestaurant Role = "restaurant"
	// RoleNGO indicates an account that requests and collects food.
	RoleNGO Role = "ngo"
)

// ErrInvalidRole is returned when a role string is neither restaurant nor ngo.
var ErrInvalidRole = errors.New("invalid role")

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleRestaurant, RoleNGO:
		return true
	default:
		return false
	}
}

// Actor is an authenticated account acting under exactly one role.
// The concrete variants carry the capabilities of their role.
type Actor interface {
	AccountID() uuid.UUID
	Role() Role
	// Participates reports whether the actor is the thread's account on its side.
	Participates(thread *ChatThread) bool
}

// RestaurantActor is an account acting as a restaurant.
type RestaurantActor struct {
	ID uuid.UUID
}

// AccountID returns the acting account.
func (a RestaurantActor) AccountID() uuid.UUID { return a.ID }

// Role returns RoleRestaurant.
func (a RestaurantActor) Role() Role { return RoleRestaurant }

// Participates reports whether the actor owns the restaurant side of the thread.
func (a RestaurantActor) Participates(thread *ChatThread) bool {
	return thread != nil && thread.RestaurantAccountID == a.ID
}

// NGOActor is an account acting as an NGO.
type NGOActor struct {
	ID uuid.UUID
}

// AccountID returns the acting account.
func (a NGOActor) AccountID() uuid.UUID { return a.ID }

// Role returns RoleNGO.
func (a NGOActor) Role() Role { return RoleNGO }

// Participates reports whether the actor owns the NGO side of the thread.
func (a NGOActor) Participates(thread *ChatThread) bool {
	return thread != nil && thread.NGOAccountID == a.ID
}

// NewActor builds the actor variant matching the role.
func NewActor(accountID uuid.UUID, role Role) (Actor, error) {
	switch role {
	case RoleRestaurant:
		return RestaurantActor{ID: accountID}, nil
	case RoleNGO:
		return NGOActor{ID: accountID}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidRole, "role %q", role)
	}
}
