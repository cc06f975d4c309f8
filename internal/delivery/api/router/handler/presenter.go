package handler

import (
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Email    string              `json:"email"`
	Phone    string              `json:"phone"`
	Role     entity.Role         `json:"role"`
	Location *entity.GeoLocation `json:"location,omitempty"`
	Avatar   string              `json:"avatar,omitempty"`
}

func toUserResponse(account *entity.Account) *UserResponse {
	if account == nil {
		return nil
	}

	return &UserResponse{
		ID:       account.ID,
		Name:     account.Name,
		Email:    account.Email,
		Phone:    account.Phone,
		Role:     account.Role,
		Location: account.Location,
		Avatar:   account.Avatar,
	}
}

// RestaurantResponse is the public view of a restaurant profile.
type RestaurantResponse struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"userId"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	Address     string              `json:"address"`
	Description string              `json:"description,omitempty"`
	Location    *entity.GeoLocation `json:"location,omitempty"`
}

func toRestaurantResponse(profile *entity.RestaurantProfile) *RestaurantResponse {
	if profile == nil {
		return nil
	}

	return &RestaurantResponse{
		ID:          profile.ID,
		UserID:      profile.AccountID,
		Name:        profile.Name,
		Email:       profile.Email,
		Phone:       profile.Phone,
		Address:     profile.Address,
		Description: profile.Description,
		Location:    profile.Location,
	}
}

// NGOResponse is the public view of an NGO profile.
type NGOResponse struct {
	ID       uuid.UUID           `json:"id"`
	UserID   uuid.UUID           `json:"userId"`
	Name     string              `json:"name"`
	Email    string              `json:"email"`
	Phone    string              `json:"phone"`
	Address  string              `json:"address"`
	Location *entity.GeoLocation `json:"location,omitempty"`
}

func toNGOResponse(profile *entity.NGOProfile) *NGOResponse {
	if profile == nil {
		return nil
	}

	return &NGOResponse{
		ID:       profile.ID,
		UserID:   profile.AccountID,
		Name:     profile.Name,
		Email:    profile.Email,
		Phone:    profile.Phone,
		Address:  profile.Address,
		Location: profile.Location,
	}
}

// DonationResponse is a donation with its restaurant and requester populated when known.
type DonationResponse struct {
	ID              uuid.UUID              `json:"id"`
	Restaurant      any                    `json:"restaurant"`
	RestaurantUser  uuid.UUID              `json:"restaurantUser"`
	FoodType        string                 `json:"foodType"`
	Quantity        string                 `json:"quantity"`
	ExpiryTime      time.Time              `json:"expiryTime"`
	PickupLocation  string                 `json:"pickupLocation"`
	PreferredOption entity.PreferredOption `json:"preferredOption"`
	Status          entity.DonationStatus  `json:"status"`
	RequestedBy     any                    `json:"requestedBy"`
	RequestedByUser *uuid.UUID             `json:"requestedByUser"`
	RequestedAt     *time.Time             `json:"requestedAt"`
	AcceptedAt      *time.Time             `json:"acceptedAt"`
	CompletedAt     *time.Time             `json:"completedAt"`
	Rating          *int                   `json:"rating"`
	Review          *string                `json:"review"`
	RatedAt         *time.Time             `json:"ratedAt"`
	DistanceKm      *float64               `json:"distanceKm,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// toDonationResponse renders bare references as IDs.
func toDonationResponse(donation *entity.Donation) *DonationResponse {
	resp := &DonationResponse{
		ID:              donation.ID,
		Restaurant:      donation.RestaurantID,
		RestaurantUser:  donation.RestaurantAccountID,
		FoodType:        donation.FoodType,
		Quantity:        donation.Quantity,
		ExpiryTime:      donation.ExpiryTime,
		PickupLocation:  donation.PickupLocation,
		PreferredOption: donation.PreferredOption,
		Status:          donation.Status,
		RequestedByUser: donation.RequestedByAccount,
		RequestedAt:     donation.RequestedAt,
		AcceptedAt:      donation.AcceptedAt,
		CompletedAt:     donation.CompletedAt,
		Rating:          donation.Rating,
		Review:          donation.Review,
		RatedAt:         donation.RatedAt,
		CreatedAt:       donation.CreatedAt,
		UpdatedAt:       donation.UpdatedAt,
	}
	if donation.RequestedBy != nil {
		resp.RequestedBy = *donation.RequestedBy
	}

	return resp
}

func toDonationDetailResponse(detail *usecase.DonationDetail) *DonationResponse {
	resp := toDonationResponse(detail.Donation)
	if detail.Restaurant != nil {
		resp.Restaurant = toRestaurantResponse(detail.Restaurant)
	}
	if detail.Requester != nil {
		resp.RequestedBy = toNGOResponse(detail.Requester)
	}
	resp.DistanceKm = detail.DistanceKm

	return resp
}

func toDonationDetailResponses(details []*usecase.DonationDetail) []*DonationResponse {
	out := make([]*DonationResponse, 0, len(details))
	for _, detail := range details {
		out = append(out, toDonationDetailResponse(detail))
	}

	return out
}

// ChatResponse is a thread with both participants populated.
type ChatResponse struct {
	ID                   uuid.UUID             `json:"id"`
	Restaurant           *RestaurantResponse   `json:"restaurant"`
	NGO                  *NGOResponse          `json:"ngo"`
	RestaurantUser       uuid.UUID             `json:"restaurantUser"`
	NGOUser              uuid.UUID             `json:"ngoUser"`
	Messages             []*entity.ChatMessage `json:"messages"`
	LastMessage          time.Time             `json:"lastMessage"`
	LastReadByRestaurant *time.Time            `json:"lastReadByRestaurant"`
	LastReadByNGO        *time.Time            `json:"lastReadByNGO"`
	CreatedAt            time.Time             `json:"createdAt"`
}

func toChatResponse(detail *usecase.ChatDetail) *ChatResponse {
	thread := detail.Thread
	messages := thread.Messages
	if messages == nil {
		messages = []*entity.ChatMessage{}
	}

	return &ChatResponse{
		ID:                   thread.ID,
		Restaurant:           toRestaurantResponse(detail.Restaurant),
		NGO:                  toNGOResponse(detail.NGO),
		RestaurantUser:       thread.RestaurantAccountID,
		NGOUser:              thread.NGOAccountID,
		Messages:             messages,
		LastMessage:          thread.LastMessageAt,
		LastReadByRestaurant: thread.LastReadByRestaurant,
		LastReadByNGO:        thread.LastReadByNGO,
		CreatedAt:            thread.CreatedAt,
	}
}
