package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"foodbridge/internal/delivery/api/response"
	"foodbridge/internal/domain/entity"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DonationHandlerParams holds dependencies for DonationHandler, injected by Fx.
type DonationHandlerParams struct {
	fx.In

	DonationUC usecase.DonationUsecase
	ProfileUC  usecase.ProfileUsecase
	Logger     *slog.Logger
}

// DonationHandler serves the donation lifecycle.
type DonationHandler struct {
	donationUC usecase.DonationUsecase
	profileUC  usecase.ProfileUsecase
	logger     *slog.Logger
}

func NewDonationHandler(params DonationHandlerParams) *DonationHandler {
	return &DonationHandler{
		donationUC: params.DonationUC,
		profileUC:  params.ProfileUC,
		logger:     params.Logger,
	}
}

type CreateDonationRequest struct {
	FoodType        string                 `json:"foodType" validate:"required,max=200"`
	Quantity        string                 `json:"quantity" validate:"required,max=100"`
	ExpiryTime      time.Time              `json:"expiryTime" validate:"required"`
	PickupLocation  string                 `json:"pickupLocation" validate:"required,max=500"`
	PreferredOption entity.PreferredOption `json:"preferredOption" validate:"required,oneof='NGO Pickup' 'Restaurant Delivery'"`
}

type RateRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=2000"`
}

type DonationEnvelope struct {
	Donation *DonationResponse `json:"donation"`
}

type DonationsEnvelope struct {
	Donations []*DonationResponse `json:"donations"`
}

type RestaurantHistoryResponse struct {
	Donations  []*DonationResponse     `json:"donations"`
	Stats      usecase.RestaurantStats `json:"stats"`
	Restaurant *RestaurantResponse     `json:"restaurant"`
}

type NGOHistoryResponse struct {
	Donations []*DonationResponse `json:"donations"`
	Stats     usecase.NGOStats    `json:"stats"`
	NGO       *NGOResponse        `json:"ngo"`
}

type ReviewsResponse struct {
	Reviews []*usecase.Review   `json:"reviews"`
	Stats   usecase.ReviewStats `json:"stats"`
}

type MigrateUserResponse struct {
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// Create handles POST /donations/create.
func (h *DonationHandler) Create(c echo.Context) error {
	actor, err := restaurantOf(c)
	if err != nil {
		return done(err)
	}

	var req CreateDonationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	donation, err := h.donationUC.AsRestaurant(actor).Create(c.Request().Context(), &usecase.CreateDonationInput{
		FoodType:        req.FoodType,
		Quantity:        req.Quantity,
		ExpiryTime:      req.ExpiryTime,
		PickupLocation:  req.PickupLocation,
		PreferredOption: req.PreferredOption,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, &DonationEnvelope{Donation: toDonationResponse(donation)})
}

// Available handles GET /donations/available.
func (h *DonationHandler) Available(c echo.Context) error {
	actor, err := ngoOf(c)
	if err != nil {
		return done(err)
	}

	var query usecase.AvailableQuery
	if raw := c.QueryParam("maxDistanceKm"); raw != "" {
		km, err := strconv.ParseFloat(raw, 64)
		if err != nil || km < 0 {
			return response.BadRequest(c, "INVALID_QUERY", "maxDistanceKm must be a non-negative number")
		}
		query.MaxDistanceKm = &km
	}

	details, err := h.donationUC.AsNGO(actor).Available(c.Request().Context(), query)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationsEnvelope{Donations: toDonationDetailResponses(details)})
}

// Request handles POST /donations/request/:id.
func (h *DonationHandler) Request(c echo.Context) error {
	actor, err := ngoOf(c)
	if err != nil {
		return done(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	donation, err := h.donationUC.AsNGO(actor).Request(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationEnvelope{Donation: toDonationResponse(donation)})
}

// MyRequests handles GET /donations/my-requests.
func (h *DonationHandler) MyRequests(c echo.Context) error {
	actor, err := ngoOf(c)
	if err != nil {
		return done(err)
	}

	details, err := h.donationUC.AsNGO(actor).MyRequests(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationsEnvelope{Donations: toDonationDetailResponses(details)})
}

// PendingRequests handles GET /donations/requests.
func (h *DonationHandler) PendingRequests(c echo.Context) error {
	actor, err := restaurantOf(c)
	if err != nil {
		return done(err)
	}

	details, err := h.donationUC.AsRestaurant(actor).PendingRequests(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationsEnvelope{Donations: toDonationDetailResponses(details)})
}

// Accept handles POST /donations/accept/:id.
func (h *DonationHandler) Accept(c echo.Context) error {
	return h.restaurantTransition(c, usecase.RestaurantDonations.Accept)
}

// Reject handles POST /donations/reject/:id.
func (h *DonationHandler) Reject(c echo.Context) error {
	return h.restaurantTransition(c, usecase.RestaurantDonations.Reject)
}

func (h *DonationHandler) restaurantTransition(
	c echo.Context,
	transition func(usecase.RestaurantDonations, context.Context, uuid.UUID) (*entity.Donation, error),
) error {
	actor, err := restaurantOf(c)
	if err != nil {
		return done(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	donation, err := transition(h.donationUC.AsRestaurant(actor), c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationEnvelope{Donation: toDonationResponse(donation)})
}

// Complete handles POST /donations/complete/:id for either side of the donation.
func (h *DonationHandler) Complete(c echo.Context) error {
	participant, err := h.participant(c)
	if err != nil {
		return done(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	donation, err := participant.Complete(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationEnvelope{Donation: toDonationResponse(donation)})
}

// Rate handles POST /donations/:id/rate.
func (h *DonationHandler) Rate(c echo.Context) error {
	actor, err := ngoOf(c)
	if err != nil {
		return done(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	var req RateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return done(err)
	}

	donation, err := h.donationUC.AsNGO(actor).Rate(c.Request().Context(), id, &usecase.RateInput{
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &DonationEnvelope{Donation: toDonationResponse(donation)})
}

// PickupQR handles GET /donations/:id/pickup-qr.
func (h *DonationHandler) PickupQR(c echo.Context) error {
	participant, err := h.participant(c)
	if err != nil {
		return done(err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return done(err)
	}

	png, err := participant.PickupQR(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// Reviews handles GET /donations/restaurant/:restaurantId/reviews. It is public.
func (h *DonationHandler) Reviews(c echo.Context) error {
	restaurantID, err := pathID(c, "restaurantId")
	if err != nil {
		return done(err)
	}

	summary, err := h.donationUC.Reviews(c.Request().Context(), restaurantID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	reviews := summary.Reviews
	if reviews == nil {
		reviews = []*usecase.Review{}
	}

	return response.Success(c, http.StatusOK, &ReviewsResponse{Reviews: reviews, Stats: summary.Stats})
}

// RestaurantHistory handles GET /donations/history/restaurant.
func (h *DonationHandler) RestaurantHistory(c echo.Context) error {
	actor, err := restaurantOf(c)
	if err != nil {
		return done(err)
	}

	history, err := h.donationUC.AsRestaurant(actor).History(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &RestaurantHistoryResponse{
		Donations:  toDonationDetailResponses(history.Donations),
		Stats:      history.Stats,
		Restaurant: toRestaurantResponse(history.Profile),
	})
}

// NGOHistory handles GET /donations/history/ngo.
func (h *DonationHandler) NGOHistory(c echo.Context) error {
	actor, err := ngoOf(c)
	if err != nil {
		return done(err)
	}

	history, err := h.donationUC.AsNGO(actor).History(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, &NGOHistoryResponse{
		Donations: toDonationDetailResponses(history.Donations),
		Stats:     history.Stats,
		NGO:       toNGOResponse(history.Profile),
	})
}

// MigrateUser handles POST /donations/migrate-user by provisioning the caller's profile.
func (h *DonationHandler) MigrateUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return done(err)
	}

	out, err := h.profileUC.GetOrCreate(c.Request().Context(), actor)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	message := "Profile already exists"
	if out.Created {
		message = "Profile created"
	}

	return response.Success(c, http.StatusOK, &MigrateUserResponse{Created: out.Created, Message: message})
}

func (h *DonationHandler) participant(c echo.Context) (usecase.DonationParticipant, error) {
	actor, err := actorOf(c)
	if err != nil {
		return nil, err
	}

	participant, err := h.donationUC.AsParticipant(actor)
	if err != nil {
		_ = response.HandleAppError(c, err)

		return nil, errResponded
	}

	return participant, nil
}
