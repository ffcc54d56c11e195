package app

import (
	"math"

	"homestay/internal/domain"
)

// ComputeListingStats derives rating and booking statistics from a listing's
// loaded relations. It always recomputes from scratch: moderation and booking
// status changes happen in steps this component never observes, so no
// incremental counter can be trusted.
func ComputeListingStats(reviews []domain.Review, bookings []domain.Booking) domain.AggregateStats {
	var stats domain.AggregateStats

	var sum int
	for _, r := range reviews {
		if r.Status != domain.ReviewAccepted {
			continue
		}
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		stats.TotalReviews++
		stats.RatingHistogram[r.Rating-1]++
		sum += r.Rating
	}
	if stats.TotalReviews > 0 {
		avg := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*100) / 100
	}

	for _, b := range bookings {
		stats.TotalBookings++
		if b.Status == domain.BookingConfirmed {
			stats.ConfirmedBookings++
		}
	}
	return stats
}
