package middleware

import (
	"log/slog"
	"strings"

	"foodbridge/internal/delivery/api/response"
	deliverycontext "foodbridge/internal/delivery/context"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	TokenService service.TokenService
	Logger       *slog.Logger
}

// AuthMiddleware resolves bearer session tokens into actors.
type AuthMiddleware struct {
	tokenService service.TokenService
	logger       *slog.Logger
}

func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// Authenticate rejects requests without a valid session token with 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(header, bearerPrefix)
		if !found || strings.TrimSpace(token) == "" {
			return response.AppError(c, domainerrors.ErrUnauthenticated)
		}

		claims, err := m.tokenService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Session token rejected", slog.Any("error", err))

			return response.AppError(c, domainerrors.ErrUnauthenticated)
		}

		actor, err := entity.NewActor(claims.AccountID, claims.Role)
		if err != nil {
			return response.AppError(c, domainerrors.ErrUnauthenticated)
		}
		deliverycontext.SetActor(c, actor)

		return next(c)
	}
}

// RequireRole admits only actors of one of the given roles. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := deliverycontext.GetActor(c)
			if !ok {
				return response.AppError(c, domainerrors.ErrUnauthenticated)
			}

			for _, role := range roles {
				if actor.Role() == role {
					return next(c)
				}
			}

			return response.AppError(c, domainerrors.ErrForbidden.WithDetails("role "+actor.Role().String()+" is not allowed"))
		}
	}
}

// GetActor returns the authenticated actor of the request.
func GetActor(c echo.Context) (entity.Actor, bool) {
	return deliverycontext.GetActor(c)
}

// GetAccountID returns the authenticated account of the request.
func GetAccountID(c echo.Context) (uuid.UUID, bool) {
	actor, ok := deliverycontext.GetActor(c)
	if !ok {
		return uuid.Nil, false
	}

	return actor.AccountID(), true
}
