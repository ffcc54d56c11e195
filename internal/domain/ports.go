package domain

import "context"

type Repository interface {
	// Read paths (canonical language, relations eager-loaded where noted)
	GetUser(ctx context.Context, id int64) (User, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	GetListing(ctx context.Context, id int64) (Listing, error) // + category, reviews, bookings
	GetBooking(ctx context.Context, id int64) (Booking, error) // + listing name, guest name
	GetReview(ctx context.Context, id int64) (Review, error)   // + reviewer name
	ListListings(ctx context.Context, q ListingsQuery) ([]Listing, int, error)
	ListListingIDs(ctx context.Context) ([]int64, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListUserBookings(ctx context.Context, userID int64) ([]Booking, error)
	ListUserReviews(ctx context.Context, userID int64) ([]Review, error)

	// Write paths
	CreateListing(ctx context.Context, l *Listing) error
	UpdateListing(ctx context.Context, l Listing) error
	DeleteListing(ctx context.Context, id int64) error
	CreateBooking(ctx context.Context, b *Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	DeleteBooking(ctx context.Context, id int64) error
	CreateReview(ctx context.Context, r *Review) error
	SetReviewStatus(ctx context.Context, id int64, status string) error
	UpdateUserProfile(ctx context.Context, u User) error

	// Reward ledger (append-only)
	AppendRewardEntry(ctx context.Context, e RewardEntry) error
	SumRewardPoints(ctx context.Context, userID int64) (int64, error)
	LatestRewardTier(ctx context.Context, userID int64) (Tier, error)
}

// Cache is the key-value tier holding localized views. Implementations must
// absorb store outages: a failed Get reads as a miss, failed writes return the
// error for the caller to drop.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
	DelPattern(ctx context.Context, pattern string) error
	Expire(ctx context.Context, key string, ttlSec int) error
	ListPush(ctx context.Context, key string, v any) error
	ListTrim(ctx context.Context, key string, max int64) error
}

// Translator converts a batch of texts between languages, preserving order
// and length. A nil Translator anywhere in the read path means "serve the
// source language unchanged".
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error)
}

// Notifier is the fire-and-forget sink for notification/email/audit events.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// Event is the payload handed to the Notifier. Kind selects the downstream
// consumer (email renderer, notification fan-out, audit log).
type Event struct {
	Kind      string `json:"kind"`
	UserID    int64  `json:"user_id"`
	ListingID int64  `json:"listing_id,omitempty"`
	BookingID int64  `json:"booking_id,omitempty"`
	Tier      string `json:"tier,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventTierChanged      = "reward.tier_changed"
	EventReviewModerated  = "review.moderated"
)
