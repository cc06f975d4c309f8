// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"foodbridge/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register an account under one role.
type RegisterInput struct {
	Role     entity.Role
	Name     string
	Email    string
	Phone    string
	Password string
	Location *entity.GeoLocation
}

// LoginInput defines the data required to log in through a role's endpoint.
type LoginInput struct {
	Role     entity.Role
	Email    string
	Password string
}

// GoogleAuthInput carries a Google ID token and the role the caller signs in as.
type GoogleAuthInput struct {
	Credential string
	Role       entity.Role
}

// UpdateLocationInput sets the location and phone of the caller's account.
type UpdateLocationInput struct {
	CallerID  uuid.UUID
	AccountID uuid.UUID
	Location  *entity.GeoLocation
	Phone     string
}

// --- Output DTOs ---

// RegisterOutput returns the new account and the profile created with it.
type RegisterOutput struct {
	Account *entity.Account
	Profile *ProfileOutput
}

// LoginOutput returns the session token for an authenticated account.
type LoginOutput struct {
	Token         string
	Account       *entity.Account
	NeedsLocation bool
}

// AuthUsecase defines account registration, sign-in and the public directories.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GoogleAuth(ctx context.Context, input *GoogleAuthInput) (*LoginOutput, error)
	UpdateLocation(ctx context.Context, input *UpdateLocationInput) (*entity.Account, error)

	// ListNGOs lists every NGO profile for map display.
	ListNGOs(ctx context.Context) ([]*entity.NGOProfile, error)
	// ListRestaurants lists the restaurant profiles that have coordinates.
	ListRestaurants(ctx context.Context) ([]*entity.RestaurantProfile, error)
}
