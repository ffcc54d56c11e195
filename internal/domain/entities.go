package domain

import "time"

// Canonical records. Everything here is stored in the source language ("en");
// localized copies live only in the cache and are always rebuilt from these.
// The json tags are the write-API request contract; joined display fields and
// eager-loaded relations are never part of the wire format.

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       *string   `json:"bio,omitempty"`
	City      *string   `json:"city,omitempty"`
	Country   *string   `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type Listing struct {
	ID             int64     `json:"id"`
	HostID         int64     `json:"host_id"`
	CategoryID     *int64    `json:"category_id,omitempty"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	Status         string    `json:"status"` // ACTIVE | PAUSED | ARCHIVED
	PriceCents     int64     `json:"price_cents"`
	Currency       string    `json:"currency"`
	City           *string   `json:"city,omitempty"`
	Country        *string   `json:"country,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Facilities     []string  `json:"facilities,omitempty"`
	Location       []string  `json:"location,omitempty"`
	OperatingHours []string  `json:"operating_hours,omitempty"`
	AgeGroups      []string  `json:"age_groups,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Eager-loaded relations; nil when not requested.
	Category *Category `json:"-"`
	Reviews  []Review  `json:"-"`
	Bookings []Booking `json:"-"`
}

type Booking struct {
	ID         int64     `json:"id"`
	ListingID  int64     `json:"listing_id"`
	UserID     int64     `json:"user_id"`
	Status     string    `json:"status"` // PENDING | CONFIRMED | CANCELLED
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Guests     int       `json:"guests"`
	TotalCents int64     `json:"total_cents"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined for display; canonical truth stays on the parent rows.
	ListingName    string `json:"-"`
	GuestFirstName string `json:"-"`
	GuestLastName  string `json:"-"`
}

// Review moderation states. Only accepted reviews count toward aggregates.
const (
	ReviewPending  = "PENDING"
	ReviewAccepted = "ACCEPTED"
	ReviewRejected = "REJECTED"
)

type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title,omitempty"`
	Comment   *string   `json:"comment,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	ReviewerFirstName string `json:"-"`
	ReviewerLastName  string `json:"-"`
}

// RewardEntry is one append-only row of a user's points ledger. Tier-change
// markers are zero-point entries whose Reason is ReasonTierChange.
type RewardEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Points    int64     `json:"points"`
	Reason    string    `json:"reason"`
	Tier      Tier      `json:"tier"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ReasonBookingCreated = "BOOKING_CREATED"
	ReasonTierChange     = "TIER_CHANGE"
)

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)
