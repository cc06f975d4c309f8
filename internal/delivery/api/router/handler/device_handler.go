package handler

import (
	"log/slog"
	"net/http"

	"foodbridge/internal/delivery/api/middleware"
	"foodbridge/internal/delivery/api/response"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DeviceHandlerParams holds dependencies for DeviceHandler, injected by Fx.
type DeviceHandlerParams struct {
	fx.In

	DeviceUC usecase.DeviceUsecase
	Logger   *slog.Logger
}

// DeviceHandler manages the push-notification devices of the caller's account.
type DeviceHandler struct {
	deviceUC usecase.DeviceUsecase
	logger   *slog.Logger
}

func NewDeviceHandler(params DeviceHandlerParams) *DeviceHandler {
	return &DeviceHandler{
		deviceUC: params.DeviceUC,
		logger:   params.Logger,
	}
}

type RegisterDeviceRequest struct {
	FCMToken string `json:"fcm_token" validate:"required"`
	DeviceID string `json:"device_id" validate:"required,max=200"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcm_token" validate:"required"`
}

// RegisterDevice handles POST /devices.
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.AppError(c, domainerrors.ErrUnauthenticated)
	}

	var req RegisterDeviceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	device, err := h.deviceUC.RegisterDevice(c.Request().Context(), accountID, &usecase.DeviceInfo{
		FCMToken: req.FCMToken,
		DeviceID: req.DeviceID,
		Platform: req.Platform,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, device)
}

// GetDevices handles GET /devices.
func (h *DeviceHandler) GetDevices(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.AppError(c, domainerrors.ErrUnauthenticated)
	}

	devices, err := h.deviceUC.GetDevices(c.Request().Context(), accountID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, devices)
}

// UpdateFCMToken handles PUT /devices/:id/token.
func (h *DeviceHandler) UpdateFCMToken(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.AppError(c, domainerrors.ErrUnauthenticated)
	}
	deviceID, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	var req UpdateFCMTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	if err := h.deviceUC.UpdateFCMToken(c.Request().Context(), accountID, deviceID, req.FCMToken); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &MessageResponse{Message: "FCM token updated"})
}

// DeactivateDevice handles DELETE /devices/:id.
func (h *DeviceHandler) DeactivateDevice(c echo.Context) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.AppError(c, domainerrors.ErrUnauthenticated)
	}
	deviceID, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	if err := h.deviceUC.DeactivateDevice(c.Request().Context(), accountID, deviceID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &MessageResponse{Message: "Device deactivated"})
}
