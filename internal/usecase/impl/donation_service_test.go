package impl

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"foodbridge/internal/domain/entity"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDonationService_FullLifecycle(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")

	donation := app.offer(t, restaurant, "10kg", 2*time.Hour)
	assert.Equal(t, entity.DonationAvailable, donation.Status)

	requested, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationRequested, requested.Status)
	require.NotNil(t, requested.RequestedByAccount)
	assert.Equal(t, ngo.ID, *requested.RequestedByAccount)
	assert.NotNil(t, requested.RequestedAt)

	threads, err := app.chats.ListThreads(ctx, ngo)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Empty(t, threads[0].Thread.Messages)
	assert.Equal(t, restaurant.ID, threads[0].Thread.RestaurantAccountID)

	accepted, err := app.donations.AsRestaurant(restaurant).Accept(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)

	completed, err := app.donations.AsNGO(ngo).Complete(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.False(t, completed.IsRated())

	rated, err := app.donations.AsNGO(ngo).Rate(ctx, donation.ID, &usecase.RateInput{Rating: 5, Review: "Great"})
	require.NoError(t, err)
	assert.Equal(t, entity.DonationCompleted, rated.Status)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)
	assert.NotNil(t, rated.RatedAt)

	summary, err := app.donations.Reviews(ctx, donation.RestaurantID)
	require.NoError(t, err)
	assert.Equal(t, usecase.ReviewStats{TotalReviews: 1, AverageRating: 5.0}, summary.Stats)
	require.Len(t, summary.Reviews, 1)
	assert.Equal(t, "Great", summary.Reviews[0].Review)
	assert.Equal(t, "10kg", summary.Reviews[0].Quantity)

	assert.Equal(t, []service.DonationEventType{
		service.EventDonationRequested,
		service.EventDonationAccepted,
		service.EventDonationCompleted,
		service.EventDonationRated,
	}, app.publisher.types())
}

func TestDonationService_CreateValidation(t *testing.T) {
	app := newTestApp(t)
	restaurant := app.restaurant(t, "kitchen@example.org")

	valid := func() *usecase.CreateDonationInput {
		return &usecase.CreateDonationInput{
			FoodType:        "Bread",
			Quantity:        "20 loaves",
			ExpiryTime:      app.clock.Add(time.Hour),
			PickupLocation:  "Front desk",
			PreferredOption: entity.OptionRestaurantDelivery,
		}
	}

	tests := []struct {
		name   string
		mutate func(*usecase.CreateDonationInput)
	}{
		{name: "expiry in the past", mutate: func(in *usecase.CreateDonationInput) { in.ExpiryTime = app.clock.Add(-time.Minute) }},
		{name: "expiry now", mutate: func(in *usecase.CreateDonationInput) { in.ExpiryTime = app.clock }},
		{name: "blank food type", mutate: func(in *usecase.CreateDonationInput) { in.FoodType = "  " }},
		{name: "missing quantity", mutate: func(in *usecase.CreateDonationInput) { in.Quantity = "" }},
		{name: "missing pickup location", mutate: func(in *usecase.CreateDonationInput) { in.PickupLocation = "" }},
		{name: "unknown option", mutate: func(in *usecase.CreateDonationInput) { in.PreferredOption = "Drone" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid()
			tt.mutate(input)

			_, err := app.donations.AsRestaurant(restaurant).Create(context.Background(), input)
			requireAppError(t, err, http.StatusBadRequest)
		})
	}
}

func TestDonationService_ConcurrentRequestsHaveOneWinner(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	donation := app.offer(t, restaurant, "10kg", time.Hour)

	ngos := []entity.NGOActor{
		app.ngo(t, "first@example.org"),
		app.ngo(t, "second@example.org"),
		app.ngo(t, "third@example.org"),
	}

	errs := make([]error, len(ngos))
	var wg sync.WaitGroup
	for i, ngo := range ngos {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = app.donations.AsNGO(ngo).Request(ctx, donation.ID)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++

			continue
		}
		requireAppError(t, err, http.StatusConflict)
	}
	assert.Equal(t, 1, winners)
}

func TestDonationService_RequestGuards(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	first := app.ngo(t, "first@example.org")
	second := app.ngo(t, "second@example.org")

	_, err := app.donations.AsNGO(first).Request(ctx, uuid.New())
	requireAppError(t, err, http.StatusNotFound)

	donation := app.offer(t, restaurant, "3 trays", time.Hour)
	_, err = app.donations.AsNGO(first).Request(ctx, donation.ID)
	require.NoError(t, err)

	_, err = app.donations.AsNGO(second).Request(ctx, donation.ID)
	requireAppError(t, err, http.StatusConflict)

	stale := app.offer(t, restaurant, "1 box", time.Minute)
	app.advance(2 * time.Minute)
	_, err = app.donations.AsNGO(second).Request(ctx, stale.ID)
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, "donation has expired", appErr.Details())
}

func TestDonationService_OwnershipIsEnforced(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	owner := app.restaurant(t, "owner@example.org")
	other := app.restaurant(t, "other@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	stranger := app.ngo(t, "stranger@example.org")

	donation := app.offer(t, owner, "10kg", time.Hour)
	_, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)

	_, err = app.donations.AsRestaurant(other).Accept(ctx, donation.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = app.donations.AsRestaurant(other).Reject(ctx, donation.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = app.donations.AsRestaurant(owner).Accept(ctx, donation.ID)
	require.NoError(t, err)

	_, err = app.donations.AsNGO(stranger).Complete(ctx, donation.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = app.donations.AsRestaurant(other).Complete(ctx, donation.ID)
	requireAppError(t, err, http.StatusForbidden)

	_, err = app.donations.AsRestaurant(owner).Accept(ctx, donation.ID)
	requireAppError(t, err, http.StatusConflict)

	completed, err := app.donations.AsRestaurant(owner).Complete(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationCompleted, completed.Status)

	_, err = app.donations.AsNGO(stranger).Rate(ctx, donation.ID, &usecase.RateInput{Rating: 1})
	requireAppError(t, err, http.StatusForbidden)
}

func TestDonationService_RejectReopensOffer(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	donation := app.offer(t, restaurant, "10kg", time.Hour)

	_, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)

	rejected, err := app.donations.AsRestaurant(restaurant).Reject(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationAvailable, rejected.Status)
	assert.Nil(t, rejected.RequestedBy)
	assert.Nil(t, rejected.RequestedByAccount)
	assert.Nil(t, rejected.RequestedAt)

	mine, err := app.donations.AsNGO(ngo).MyRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)

	app.publisher.mu.Lock()
	last := app.publisher.events[len(app.publisher.events)-1]
	app.publisher.mu.Unlock()
	assert.Equal(t, service.EventDonationRejected, last.Type)
	assert.Equal(t, ngo.ID.String(), last.RecipientAccountID)

	available, err := app.donations.AsNGO(ngo).Available(ctx, usecase.AvailableQuery{})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, donation.ID, available[0].Donation.ID)
}

func TestDonationService_RatingRules(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	donation := app.offer(t, restaurant, "10kg", time.Hour)

	_, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)

	for _, rating := range []int{0, 6, -1} {
		_, err = app.donations.AsNGO(ngo).Rate(ctx, donation.ID, &usecase.RateInput{Rating: rating})
		requireAppError(t, err, http.StatusBadRequest)
	}

	// Requested is not yet Completed.
	_, err = app.donations.AsNGO(ngo).Rate(ctx, donation.ID, &usecase.RateInput{Rating: 4})
	requireAppError(t, err, http.StatusConflict)

	_, err = app.donations.AsRestaurant(restaurant).Accept(ctx, donation.ID)
	require.NoError(t, err)
	_, err = app.donations.AsRestaurant(restaurant).Complete(ctx, donation.ID)
	require.NoError(t, err)

	first, err := app.donations.AsNGO(ngo).Rate(ctx, donation.ID, &usecase.RateInput{Rating: 2})
	require.NoError(t, err)
	require.NotNil(t, first.Review)
	assert.Equal(t, "", *first.Review)

	app.advance(time.Minute)
	second, err := app.donations.AsNGO(ngo).Rate(ctx, donation.ID, &usecase.RateInput{Rating: 4, Review: "Better"})
	require.NoError(t, err)
	assert.Equal(t, 4, *second.Rating)
	assert.Equal(t, "Better", *second.Review)
	assert.True(t, second.RatedAt.After(*first.RatedAt))
}

func TestDonationService_ExpirySweep(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")

	stale := app.offer(t, restaurant, "5 boxes", time.Hour)
	fresh := app.offer(t, restaurant, "2 boxes", 3*time.Hour)
	app.advance(90 * time.Minute)

	available, err := app.donations.AsNGO(ngo).Available(ctx, usecase.AvailableQuery{})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, fresh.ID, available[0].Donation.ID)
	assert.Equal(t, "Account kitchen@example.org", available[0].Restaurant.Name)

	history, err := app.donations.AsRestaurant(restaurant).History(ctx)
	require.NoError(t, err)
	statuses := map[uuid.UUID]entity.DonationStatus{}
	for _, detail := range history.Donations {
		statuses[detail.Donation.ID] = detail.Donation.Status
	}
	assert.Equal(t, entity.DonationExpired, statuses[stale.ID])
	assert.Equal(t, entity.DonationAvailable, statuses[fresh.ID])
	assert.Equal(t, 1, history.Stats.ExpiredDonations)
	assert.Equal(t, 1, history.Stats.AvailableDonations)
}

func TestDonationService_PendingRequestsSweepsRequested(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")

	short := app.offer(t, restaurant, "1 pot", 30*time.Minute)
	long := app.offer(t, restaurant, "2 pots", 3*time.Hour)
	for _, d := range []*entity.Donation{short, long} {
		_, err := app.donations.AsNGO(ngo).Request(ctx, d.ID)
		require.NoError(t, err)
	}

	app.advance(time.Hour)

	pending, err := app.donations.AsRestaurant(restaurant).PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, long.ID, pending[0].Donation.ID)
	require.NotNil(t, pending[0].Requester)
	assert.Equal(t, "shelter@example.org", pending[0].Requester.Email)

	history, err := app.donations.AsNGO(ngo).History(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, history.Stats.TotalRequests)
	assert.Equal(t, 1, history.Stats.ExpiredRequests)
	assert.Equal(t, 1, history.Stats.PendingRequests)
}

func TestDonationService_HistoryStats(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")

	for _, quantity := range []string{"10kg", "approx 5 boxes", "plenty"} {
		d := app.offer(t, restaurant, quantity, time.Hour)
		app.advance(time.Minute)
		_, err := app.donations.AsNGO(ngo).Request(ctx, d.ID)
		require.NoError(t, err)
		_, err = app.donations.AsRestaurant(restaurant).Accept(ctx, d.ID)
		require.NoError(t, err)
		_, err = app.donations.AsNGO(ngo).Complete(ctx, d.ID)
		require.NoError(t, err)
	}
	app.offer(t, restaurant, "7 trays", time.Hour)
	pending := app.offer(t, restaurant, "8 trays", time.Hour)
	app.advance(time.Minute)
	_, err := app.donations.AsNGO(ngo).Request(ctx, pending.ID)
	require.NoError(t, err)

	restaurantHistory, err := app.donations.AsRestaurant(restaurant).History(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.RestaurantStats{
		TotalDonations:       5,
		CompletedDonations:   3,
		PendingDonations:     1,
		AvailableDonations:   1,
		TotalQuantityDonated: 15,
	}, restaurantHistory.Stats)
	assert.Equal(t, restaurant.ID, restaurantHistory.Profile.AccountID)

	ngoHistory, err := app.donations.AsNGO(ngo).History(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.NGOStats{
		TotalRequests:         4,
		CompletedRequests:     3,
		PendingRequests:       1,
		TotalQuantityReceived: 15,
	}, ngoHistory.Stats)
	assert.Equal(t, pending.ID, ngoHistory.Donations[0].Donation.ID)
}

func TestDonationService_AvailableDistanceFilter(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	// About 5 km from the NGO.
	near := app.restaurant(t, "near@example.org")
	far := entity.RestaurantActor{ID: app.register(t, entity.RoleRestaurant, "far@example.org", &entity.GeoLocation{
		Latitude:  ptr(22.6273),
		Longitude: ptr(120.3014),
	}).ID}
	unlocated := entity.RestaurantActor{ID: app.register(t, entity.RoleRestaurant, "unlocated@example.org", nil).ID}
	ngo := app.ngo(t, "shelter@example.org")

	nearOffer := app.offer(t, near, "1kg", time.Hour)
	app.offer(t, far, "1kg", 2*time.Hour)
	app.offer(t, unlocated, "1kg", 3*time.Hour)

	all, err := app.donations.AsNGO(ngo).Available(ctx, usecase.AvailableQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[0].DistanceKm)
	assert.InDelta(t, 5, *all[0].DistanceKm, 1)
	assert.Nil(t, all[2].DistanceKm)

	nearby, err := app.donations.AsNGO(ngo).Available(ctx, usecase.AvailableQuery{MaxDistanceKm: ptr(10.0)})
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, nearOffer.ID, nearby[0].Donation.ID)
}

func TestDonationService_PickupQR(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	stranger := app.ngo(t, "stranger@example.org")
	donation := app.offer(t, restaurant, "10kg", time.Hour)

	_, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)

	_, err = app.donations.AsRestaurant(restaurant).PickupQR(ctx, donation.ID)
	requireAppError(t, err, http.StatusConflict)

	_, err = app.donations.AsRestaurant(restaurant).Accept(ctx, donation.ID)
	require.NoError(t, err)

	participant, err := app.donations.AsParticipant(ngo)
	require.NoError(t, err)
	png, err := participant.PickupQR(ctx, donation.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = app.donations.AsNGO(stranger).PickupQR(ctx, donation.ID)
	requireAppError(t, err, http.StatusForbidden)
}

func TestDonationService_PublishFailureDoesNotFailTransition(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.publisher.err = errors.New("broker unavailable")

	restaurant := app.restaurant(t, "kitchen@example.org")
	ngo := app.ngo(t, "shelter@example.org")
	donation := app.offer(t, restaurant, "10kg", time.Hour)

	requested, err := app.donations.AsNGO(ngo).Request(ctx, donation.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DonationRequested, requested.Status)
}

func TestDonationService_ReviewsWithoutRatings(t *testing.T) {
	app := newTestApp(t)

	summary, err := app.donations.Reviews(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, summary.Reviews)
	assert.Equal(t, usecase.ReviewStats{}, summary.Stats)
}

func TestSummarizeReviews_RoundsAverage(t *testing.T) {
	donations := []*entity.Donation{
		{Status: entity.DonationCompleted, Rating: ptr(5), Review: ptr("Great"), RatedAt: ptr(time.Now())},
		{Status: entity.DonationCompleted, Rating: ptr(4), RatedAt: ptr(time.Now())},
		{Status: entity.DonationCompleted, Rating: ptr(4), RatedAt: ptr(time.Now())},
	}

	summary := summarizeReviews(donations)
	assert.Equal(t, 3, summary.Stats.TotalReviews)
	assert.InDelta(t, 4.3, summary.Stats.AverageRating, 1e-9)
	assert.Equal(t, "", summary.Reviews[1].Review)
}
