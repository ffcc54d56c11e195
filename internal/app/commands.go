package app

import (
	"context"
	"fmt"
	"time"

	"homestay/internal/domain"
)

// CommandService owns the write path. Every mutation commits to the canonical
// store first; if that fails the error propagates and nothing else happens.
// On success the dirtied cache entries are invalidated synchronously, so the
// response is only returned once stale views are gone, and a repair task is
// scheduled to repopulate and run side effects off the request path.
type CommandService struct {
	repo   domain.Repository
	inv    *Invalidator
	repair *Repairer // nil disables background repair
}

func NewCommandService(r domain.Repository, inv *Invalidator, rep *Repairer) *CommandService {
	return &CommandService{repo: r, inv: inv, repair: rep}
}

func (s *CommandService) finish(ctx context.Context, t Task) {
	s.inv.Invalidate(ctx, Invalidation{Entity: t.Entity, ID: t.ID, UserIDs: t.UserIDs, ListingIDs: t.ListingIDs})
	if s.repair != nil {
		s.repair.Schedule(t)
	}
}

func (s *CommandService) CreateListing(ctx context.Context, l *domain.Listing) error {
	if err := s.repo.CreateListing(ctx, l); err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	s.finish(ctx, Task{Entity: "listing", ID: l.ID, UserIDs: []int64{l.HostID}})
	return nil
}

func (s *CommandService) UpdateListing(ctx context.Context, l domain.Listing) error {
	if err := s.repo.UpdateListing(ctx, l); err != nil {
		return fmt.Errorf("update listing %d: %w", l.ID, err)
	}
	s.finish(ctx, Task{Entity: "listing", ID: l.ID, UserIDs: []int64{l.HostID}})
	return nil
}

func (s *CommandService) DeleteListing(ctx context.Context, id int64) error {
	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	s.finish(ctx, Task{Entity: "listing", ID: id, UserIDs: []int64{l.HostID}, Deleted: true})
	return nil
}

// CreateBooking commits the booking, then queues reward points and the
// confirmation email for the background pass. Points are one per currency
// unit spent.
func (s *CommandService) CreateBooking(ctx context.Context, b *domain.Booking) error {
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	s.finish(ctx, Task{
		Entity:       "booking",
		ID:           b.ID,
		UserIDs:      []int64{b.UserID},
		ListingIDs:   []int64{b.ListingID},
		RewardPoints: b.TotalCents / 100,
		RewardUserID: b.UserID,
		Events: []domain.Event{{
			Kind:      domain.EventBookingConfirmed,
			UserID:    b.UserID,
			ListingID: b.ListingID,
			BookingID: b.ID,
			Message:   "booking confirmed",
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}},
	})
	return nil
}

func (s *CommandService) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateBookingStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update booking %d status: %w", id, err)
	}
	t := Task{Entity: "booking", ID: id, UserIDs: []int64{b.UserID}, ListingIDs: []int64{b.ListingID}}
	if status == domain.BookingCancelled {
		t.Events = []domain.Event{{
			Kind:      domain.EventBookingCancelled,
			UserID:    b.UserID,
			ListingID: b.ListingID,
			BookingID: id,
			Message:   "booking cancelled",
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}}
	}
	s.finish(ctx, t)
	return nil
}

func (s *CommandService) DeleteBooking(ctx context.Context, id int64) error {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	s.finish(ctx, Task{Entity: "booking", ID: id, UserIDs: []int64{b.UserID}, ListingIDs: []int64{b.ListingID}, Deleted: true})
	return nil
}

func (s *CommandService) CreateReview(ctx context.Context, r *domain.Review) error {
	if r.Status == "" {
		r.Status = domain.ReviewPending
	}
	if err := s.repo.CreateReview(ctx, r); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	s.finish(ctx, Task{Entity: "review", ID: r.ID, UserIDs: []int64{r.UserID}, ListingIDs: []int64{r.ListingID}})
	return nil
}

// ModerateReview flips the moderation status. The parent listing is always
// invalidated: its aggregates only count accepted reviews.
func (s *CommandService) ModerateReview(ctx context.Context, id int64, status string) error {
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetReviewStatus(ctx, id, status); err != nil {
		return fmt.Errorf("moderate review %d: %w", id, err)
	}
	s.finish(ctx, Task{
		Entity:     "review",
		ID:         id,
		UserIDs:    []int64{r.UserID},
		ListingIDs: []int64{r.ListingID},
		Events: []domain.Event{{
			Kind:      domain.EventReviewModerated,
			UserID:    r.UserID,
			ListingID: r.ListingID,
			Message:   "review " + status,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
		}},
	})
	return nil
}

func (s *CommandService) UpdateUserProfile(ctx context.Context, u domain.User) error {
	if err := s.repo.UpdateUserProfile(ctx, u); err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	s.finish(ctx, Task{Entity: "user", ID: u.ID, UserIDs: []int64{u.ID}})
	return nil
}
