package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/repository"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager         repository.TransactionManager
	accountRepo       repository.AccountRepository
	profileRepo       repository.ProfileRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	googleAuthService service.OAuthAuthService
	logger            *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager         repository.TransactionManager
	AccountRepo       repository.AccountRepository
	ProfileRepo       repository.ProfileRepository
	Hasher            service.PasswordHasher
	TokenService      service.TokenService
	GoogleAuthService service.OAuthAuthService
	Logger            *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:         params.TxManager,
		accountRepo:       params.AccountRepo,
		profileRepo:       params.ProfileRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		googleAuthService: params.GoogleAuthService,
		logger:            params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates the account and its role profile in one transaction.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if !input.Role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be restaurant or ngo")
	}

	srv.log(ctx).Info("Starting registration", slog.String("role", input.Role.String()), slog.String("email", input.Email))

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	account := &entity.Account{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         input.Role,
		Location:     input.Location,
	}

	profile, err := srv.createAccountWithProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.String("account_id", account.ID.String()))

	return &usecase.RegisterOutput{Account: account, Profile: profile}, nil
}

func (srv *authService) createAccountWithProfile(ctx context.Context, account *entity.Account) (*usecase.ProfileOutput, error) {
	var profile *usecase.ProfileOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.NewAccountRepository().CreateAccount(ctx, account); err != nil {
			if errors.Is(err, repository.ErrDuplicateAccount) {
				return domainerrors.ErrAccountAlreadyExists
			}

			return errors.Wrap(err, "failed to create account")
		}

		var err error
		profile, err = provisionProfile(ctx, repoFactory.NewProfileRepository(), account)

		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	return profile, nil
}

// Login authenticates an email and password against the account of the endpoint's role.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	account, err := srv.accountRepo.FindAccountByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}

	// A wrong role endpoint is indistinguishable from a wrong password.
	if account.Role != input.Role || !srv.hasher.Matches(account.PasswordHash, input.Password) {
		srv.log(ctx).Warn("Login rejected", slog.String("account_id", account.ID.String()))

		return nil, domainerrors.ErrInvalidCredentials
	}

	return srv.issueSession(ctx, account)
}

// GoogleAuth signs in with a verified Google ID token, creating the account on first use.
func (srv *authService) GoogleAuth(ctx context.Context, input *usecase.GoogleAuthInput) (*usecase.LoginOutput, error) {
	if !input.Role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be restaurant or ngo")
	}

	identity, err := srv.googleAuthService.VerifyIDToken(ctx, input.Credential)
	if err != nil {
		srv.log(ctx).Warn("Google credential rejected", slog.Any("error", err))

		return nil, domainerrors.ErrOAuthTokenInvalid
	}

	account, err := srv.accountRepo.FindAccountByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		account, err = srv.createGoogleAccount(ctx, identity, input.Role)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, errors.Wrap(err, "failed to find account")
	case account.Role != input.Role:
		return nil, domainerrors.ErrRoleMismatch
	}

	return srv.issueSession(ctx, account)
}

func (srv *authService) createGoogleAccount(ctx context.Context, identity *service.GoogleIdentity, role entity.Role) (*entity.Account, error) {
	// The hashed subject stands in for the password of a federated account.
	hash, err := srv.hasher.Hash(identity.Subject)
	if err != nil {
		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage(err.Error())
	}

	name := identity.Name
	if name == "" {
		name = identity.Email
	}

	account := &entity.Account{
		Name:         name,
		Email:        identity.Email,
		PasswordHash: hash,
		Role:         role,
		Avatar:       identity.Picture,
	}
	if _, err := srv.createAccountWithProfile(ctx, account); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Google account created", slog.String("account_id", account.ID.String()), slog.String("role", role.String()))

	return account, nil
}

func (srv *authService) issueSession(ctx context.Context, account *entity.Account) (*usecase.LoginOutput, error) {
	token, err := srv.tokenService.GenerateToken(account.ID, account.Role)
	if err != nil {
		srv.log(ctx).Error("Failed to issue session token", slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed
	}

	return &usecase.LoginOutput{
		Token:         token,
		Account:       account,
		NeedsLocation: account.NeedsLocation(),
	}, nil
}

// UpdateLocation sets the caller's location and phone on the account and its profile.
func (srv *authService) UpdateLocation(ctx context.Context, input *usecase.UpdateLocationInput) (*entity.Account, error) {
	if input.CallerID != input.AccountID {
		return nil, domainerrors.ErrForbidden.WrapMessage("accounts can only update their own location")
	}

	var updated *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		accounts := repoFactory.NewAccountRepository()

		err := accounts.UpdateContact(ctx, input.AccountID, input.Location, input.Phone)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to update account contact")
		}

		updated, err = accounts.FindAccountByID(ctx, input.AccountID)
		if err != nil {
			return errors.Wrap(err, "failed to reload account")
		}

		return repoFactory.NewProfileRepository().UpdateContact(ctx, updated.ID, updated.Role, input.Location, input.Phone)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update location")
	}

	return updated, nil
}

// ListNGOs lists every NGO profile.
func (srv *authService) ListNGOs(ctx context.Context) ([]*entity.NGOProfile, error) {
	profiles, err := srv.profileRepo.ListNGOs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ngos")
	}

	return profiles, nil
}

// ListRestaurants lists the restaurant profiles that can be placed on a map.
func (srv *authService) ListRestaurants(ctx context.Context) ([]*entity.RestaurantProfile, error) {
	profiles, err := srv.profileRepo.ListRestaurants(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list restaurants")
	}

	return profiles, nil
}
