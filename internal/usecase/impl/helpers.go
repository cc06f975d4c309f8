// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"time"

	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func utcNow() time.Time {
	return time.Now().UTC()
}

// loadActorAccount resolves the session's account and checks it still acts under the session's role.
func loadActorAccount(ctx context.Context, accounts repository.AccountRepository, actor entity.Actor) (*entity.Account, error) {
	account, err := accounts.FindAccountByID(ctx, actor.AccountID())
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrUnauthenticated.WrapMessage("session account no longer exists")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session account")
	}

	if account.Role != actor.Role() {
		return nil, domainerrors.ErrForbidden.WrapMessage("session role does not match the account")
	}

	return account, nil
}

// provisionProfile returns the profile of the account's role, creating it on first use.
func provisionProfile(ctx context.Context, profiles repository.ProfileRepository, account *entity.Account) (*usecase.ProfileOutput, error) {
	actor, err := account.Actor()
	if err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	switch actor.(type) {
	case entity.RestaurantActor:
		profile, created, err := profiles.GetOrCreateRestaurant(ctx, account)
		if err != nil {
			return nil, errors.Wrap(err, "failed to provision restaurant profile")
		}

		return &usecase.ProfileOutput{Restaurant: profile, Created: created}, nil
	default:
		profile, created, err := profiles.GetOrCreateNGO(ctx, account)
		if err != nil {
			return nil, errors.Wrap(err, "failed to provision ngo profile")
		}

		return &usecase.ProfileOutput{NGO: profile, Created: created}, nil
	}
}

func collectIDs[T any](items []T, pick func(T) *uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		id := pick(item)
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}

	return ids
}
