package usecase

import (
	"context"

	"foodbridge/internal/domain/entity"
)

// ProfileOutput holds the profile of whichever role the account acts under.
// Exactly one of Restaurant and NGO is set.
type ProfileOutput struct {
	Restaurant *entity.RestaurantProfile
	NGO        *entity.NGOProfile
	Created    bool
}

// ProfileUsecase provisions the role-specific profile of an account.
type ProfileUsecase interface {
	// GetOrCreate returns the actor's profile, creating a minimal one on first use.
	GetOrCreate(ctx context.Context, actor entity.Actor) (*ProfileOutput, error)
}
