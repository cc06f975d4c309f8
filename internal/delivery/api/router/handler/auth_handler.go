package handler

import (
	"log/slog"
	"net/http"

	"foodbridge/internal/delivery/api/middleware"
	"foodbridge/internal/delivery/api/response"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves registration, login and the public account listings.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// LocationRequest is a point on the map with an optional address.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Address   string   `json:"address" validate:"max=500"`
}

func (r *LocationRequest) toEntity() *entity.GeoLocation {
	if r == nil {
		return nil
	}

	return &entity.GeoLocation{Latitude: r.Latitude, Longitude: r.Longitude, Address: r.Address}
}

type RegisterRequest struct {
	Name     string           `json:"name" validate:"required,max=200"`
	Email    string           `json:"email" validate:"required,email"`
	Phone    string           `json:"phone" validate:"max=50"`
	Password string           `json:"password" validate:"required,min=6,max=72"`
	Location *LocationRequest `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleAuthRequest struct {
	Credential string      `json:"credential" validate:"required"`
	Role       entity.Role `json:"role" validate:"required,oneof=restaurant ngo"`
}

type UpdateLocationRequest struct {
	UserID   uuid.UUID        `json:"userId" validate:"required"`
	Location *LocationRequest `json:"location" validate:"required"`
	Phone    string           `json:"phone" validate:"max=50"`
}

// RegisterResponse carries the new account and the profile created with it.
type RegisterResponse struct {
	User   *UserResponse `json:"user"`
	Entity any           `json:"entity"`
}

// SessionResponse carries a session token.
type SessionResponse struct {
	Token         string        `json:"token"`
	User          *UserResponse `json:"user"`
	NeedsLocation bool          `json:"needsLocation"`
}

type UserEnvelope struct {
	User *UserResponse `json:"user"`
}

// RegisterNGO handles POST /auth/register-ngo.
func (h *AuthHandler) RegisterNGO(c echo.Context) error {
	return h.register(c, entity.RoleNGO)
}

// RegisterRestaurant handles POST /auth/register-restaurant.
func (h *AuthHandler) RegisterRestaurant(c echo.Context) error {
	return h.register(c, entity.RoleRestaurant)
}

func (h *AuthHandler) register(c echo.Context, role entity.Role) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Role:     role,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Location: req.Location.toEntity(),
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	resp := &RegisterResponse{User: toUserResponse(out.Account)}
	if out.Profile != nil {
		if out.Profile.Restaurant != nil {
			resp.Entity = toRestaurantResponse(out.Profile.Restaurant)
		} else {
			resp.Entity = toNGOResponse(out.Profile.NGO)
		}
	}

	return response.Success(c, http.StatusCreated, resp)
}

// LoginNGO handles POST /auth/login-ngo.
func (h *AuthHandler) LoginNGO(c echo.Context) error {
	return h.login(c, entity.RoleNGO)
}

// LoginRestaurant handles POST /auth/login-restaurant.
func (h *AuthHandler) LoginRestaurant(c echo.Context) error {
	return h.login(c, entity.RoleRestaurant)
}

func (h *AuthHandler) login(c echo.Context, role entity.Role) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	out, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Role:     role,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toSessionResponse(out))
}

// GoogleAuth handles POST /auth/google-auth.
func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	var req GoogleAuthRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	out, err := h.authUC.GoogleAuth(c.Request().Context(), &usecase.GoogleAuthInput{
		Credential: req.Credential,
		Role:       req.Role,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toSessionResponse(out))
}

// UpdateLocation handles POST /auth/update-location.
func (h *AuthHandler) UpdateLocation(c echo.Context) error {
	callerID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.AppError(c, domainerrors.ErrUnauthenticated)
	}

	var req UpdateLocationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	account, err := h.authUC.UpdateLocation(c.Request().Context(), &usecase.UpdateLocationInput{
		CallerID:  callerID,
		AccountID: req.UserID,
		Location:  req.Location.toEntity(),
		Phone:     req.Phone,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &UserEnvelope{User: toUserResponse(account)})
}

// ListNGOs handles GET /auth/ngos.
func (h *AuthHandler) ListNGOs(c echo.Context) error {
	ngos, err := h.authUC.ListNGOs(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*NGOResponse, 0, len(ngos))
	for _, ngo := range ngos {
		out = append(out, toNGOResponse(ngo))
	}

	return response.Success(c, http.StatusOK, out)
}

// ListRestaurants handles GET /auth/restaurants.
func (h *AuthHandler) ListRestaurants(c echo.Context) error {
	restaurants, err := h.authUC.ListRestaurants(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	out := make([]*RestaurantResponse, 0, len(restaurants))
	for _, restaurant := range restaurants {
		out = append(out, toRestaurantResponse(restaurant))
	}

	return response.Success(c, http.StatusOK, out)
}

func toSessionResponse(out *usecase.LoginOutput) *SessionResponse {
	return &SessionResponse{
		Token:         out.Token,
		User:          toUserResponse(out.Account),
		NeedsLocation: out.NeedsLocation,
	}
}
