package impl

import (
	"context"
	"log/slog"

	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type profileService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// ProfileServiceParams holds dependencies for ProfileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Logger    *slog.Logger
}

// NewProfileService creates a new profile service instance.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager: params.TxManager,
		logger:    params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetOrCreate returns the actor's profile, creating a minimal one on first use.
func (srv *profileService) GetOrCreate(ctx context.Context, actor entity.Actor) (*usecase.ProfileOutput, error) {
	var output *usecase.ProfileOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		account, err := loadActorAccount(ctx, repoFactory.NewAccountRepository(), actor)
		if err != nil {
			return err
		}

		output, err = provisionProfile(ctx, repoFactory.NewProfileRepository(), account)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get or create profile")
	}

	if output.Created {
		srv.log(ctx).Info("Profile provisioned",
			slog.String("account_id", actor.AccountID().String()),
			slog.String("role", actor.Role().String()),
		)
	}

	return output, nil
}
