package impl

import (
	"foodbridge/internal/domain/entity"
	"foodbridge/internal/usecase"
	"foodbridge/internal/util"
)

func restaurantStats(donations []*entity.Donation) usecase.RestaurantStats {
	stats := usecase.RestaurantStats{TotalDonations: len(donations)}
	for _, d := range donations {
		switch d.Status {
		case entity.DonationCompleted:
			stats.CompletedDonations++
			stats.TotalQuantityDonated += d.QuantityAmount()
		case entity.DonationRequested:
			stats.PendingDonations++
		case entity.DonationAvailable:
			stats.AvailableDonations++
		case entity.DonationExpired:
			stats.ExpiredDonations++
		}
	}

	return stats
}

func ngoStats(donations []*entity.Donation) usecase.NGOStats {
	stats := usecase.NGOStats{TotalRequests: len(donations)}
	for _, d := range donations {
		switch d.Status {
		case entity.DonationAccepted:
			stats.AcceptedRequests++
		case entity.DonationCompleted:
			stats.CompletedRequests++
			stats.TotalQuantityReceived += d.QuantityAmount()
		case entity.DonationRequested:
			stats.PendingRequests++
		case entity.DonationExpired:
			stats.ExpiredRequests++
		}
	}

	return stats
}

// summarizeReviews maps rated donations to anonymous reviews and averages their ratings.
func summarizeReviews(donations []*entity.Donation) *usecase.ReviewSummary {
	summary := &usecase.ReviewSummary{Reviews: make([]*usecase.Review, 0, len(donations))}

	total := 0
	for _, d := range donations {
		if !d.IsRated() {
			continue
		}

		review := &usecase.Review{
			Rating:   *d.Rating,
			FoodType: d.FoodType,
			Quantity: d.Quantity,
		}
		if d.Review != nil {
			review.Review = *d.Review
		}
		if d.RatedAt != nil {
			review.RatedAt = *d.RatedAt
		}

		summary.Reviews = append(summary.Reviews, review)
		total += review.Rating
	}

	summary.Stats.TotalReviews = len(summary.Reviews)
	if summary.Stats.TotalReviews > 0 {
		summary.Stats.AverageRating = util.RoundTo(float64(total)/float64(summary.Stats.TotalReviews), 1)
	}

	return summary
}
