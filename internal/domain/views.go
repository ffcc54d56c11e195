package domain

import "time"

// Localized read models. A view is a disposable, per-language copy of a
// canonical record; the cache owns no truth and every view can be rebuilt
// from the repository plus the translator.

type UserView struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"` // raw first + last, never translated
	Bio         *string `json:"bio,omitempty"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	Language    string  `json:"language"`
}

type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CategoryView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Language    string  `json:"language"`
}

type ReviewSummary struct {
	ID           int64     `json:"id"`
	Rating       int       `json:"rating"`
	Title        *string   `json:"title,omitempty"`
	Comment      *string   `json:"comment,omitempty"`
	ReviewerName string    `json:"reviewer_name"` // raw first + last, never translated
	CreatedAt    time.Time `json:"created_at"`
}

type BookingSummary struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	GuestName string    `json:"guest_name"` // raw first + last, never translated
}

type AggregateStats struct {
	AverageRating     float64 `json:"average_rating"`
	TotalReviews      int     `json:"total_reviews"`
	RatingHistogram   [5]int  `json:"rating_histogram"` // index 0 = 1 star
	TotalBookings     int     `json:"total_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
}

type ListingView struct {
	ID             int64            `json:"id"`
	HostID         int64            `json:"host_id"`
	Name           string           `json:"name"`
	Description    *string          `json:"description,omitempty"`
	Status         string           `json:"status"`
	PriceCents     int64            `json:"price_cents"`
	Currency       string           `json:"currency"`
	City           *string          `json:"city,omitempty"`
	Country        *string          `json:"country,omitempty"`
	Address        *string          `json:"address,omitempty"`
	Facilities     []string         `json:"facilities,omitempty"`
	Location       []string         `json:"location,omitempty"`
	OperatingHours []string         `json:"operating_hours,omitempty"`
	AgeGroups      []string         `json:"age_groups,omitempty"`
	Category       *CategoryRef     `json:"category,omitempty"`
	Reviews        []ReviewSummary  `json:"reviews,omitempty"`
	Bookings       []BookingSummary `json:"bookings,omitempty"`
	Stats          *AggregateStats  `json:"stats,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Language       string           `json:"language"`
}

type BookingView struct {
	ID          int64     `json:"id"`
	ListingID   int64     `json:"listing_id"`
	ListingName string    `json:"listing_name"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Guests      int       `json:"guests"`
	TotalCents  int64     `json:"total_cents"`
	Note        *string   `json:"note,omitempty"`
	Language    string    `json:"language"`
}

type ReviewView struct {
	ID           int64     `json:"id"`
	ListingID    int64     `json:"listing_id"`
	Rating       int       `json:"rating"`
	Title        *string   `json:"title,omitempty"`
	Comment      *string   `json:"comment,omitempty"`
	Status       string    `json:"status"`
	ReviewerName string    `json:"reviewer_name"`
	CreatedAt    time.Time `json:"created_at"`
	Language     string    `json:"language"`
}

type ListingsPage struct {
	Items []ListingView `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
}

type BookingsPage struct {
	Items []BookingView `json:"items"`
}

type ReviewsPage struct {
	Items []ReviewView `json:"items"`
}

// ListingsQuery is the normalized filter set for listing searches. Filter
// normalization (lowercasing, trimming, defaulted paging) happens before the
// cache key is derived so equivalent queries share one entry.
type ListingsQuery struct {
	Status     *string
	CategoryID *int64
	City       *string
	MinCents   *int64
	MaxCents   *int64
	Page       int
	PageSize   int
}
