package app_test

import (
	"context"
	"errors"
	"testing"

	"homestay/internal/app"
	"homestay/internal/domain"
)

// Commands run with repair disabled so assertions see exactly the synchronous
// part of the write path.
func newCommandService(repo *fakeRepo, cache *fakeCache) *app.CommandService {
	inv := app.NewInvalidator(cache, []string{"ar"})
	return app.NewCommandService(repo, inv, nil)
}

func TestUpdateListing_InvalidatesBeforeReturn(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	cache := newFakeCache()
	ctx := context.Background()

	// Pre-populate the caches a reader would have warmed.
	q := newQueryService(repo, cache)
	if _, err := q.GetListing(ctx, 7, "ar"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if _, err := q.ListListings(ctx, domain.ListingsQuery{}, "ar"); err != nil {
		t.Fatalf("warm list: %v", err)
	}

	cmd := newCommandService(repo, cache)
	l := repo.listings[7]
	l.Name = "Renamed Villa"
	if err := cmd.UpdateListing(ctx, l); err != nil {
		t.Fatalf("update: %v", err)
	}

	if cache.has("listing:7:ar") {
		t.Fatal("entity key must be gone when the write returns")
	}
	for k := range cache.store {
		if len(k) > 12 && k[:12] == "listings:all" {
			t.Fatalf("filtered list entry survived: %s", k)
		}
	}

	// An immediate read must see the new canonical value.
	v, err := q.GetListing(ctx, 7, "ar")
	if err != nil {
		t.Fatalf("read after write: %v", err)
	}
	if v.Name != "[ar]Renamed Villa" {
		t.Fatalf("stale view after invalidation: %s", v.Name)
	}
}

func TestDeleteBooking_InvalidatesOwnerAndParentListing(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	repo.bookings[21] = domain.Booking{ID: 21, ListingID: 7, UserID: 3}
	cache := newFakeCache()
	ctx := context.Background()

	q := newQueryService(repo, cache)
	_, _ = q.GetListing(ctx, 7, "ar")
	_, _ = q.ListUserBookings(ctx, 3, "ar")

	cmd := newCommandService(repo, cache)
	if err := cmd.DeleteBooking(ctx, 21); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, k := range []string{"booking:21:ar", "user:3:bookings:ar", "listing:7:ar"} {
		if cache.has(k) {
			t.Fatalf("key %s survived booking deletion", k)
		}
	}
}

func TestCreateBooking_WriteFailureSchedulesNothing(t *testing.T) {
	repo := newFakeRepo()
	repo.writeErr = errors.New("deadlock")
	cache := newFakeCache()
	cache.store["bookings:allxyz:ar"] = []byte(`{}`)

	cmd := newCommandService(repo, cache)
	b := domain.Booking{ListingID: 7, UserID: 3, TotalCents: 50000}
	if err := cmd.CreateBooking(context.Background(), &b); err == nil {
		t.Fatal("expected write failure to propagate")
	}
	if !cache.has("bookings:allxyz:ar") {
		t.Fatal("failed write must not invalidate anything")
	}
}

func TestModerateReview_MissingReviewReturnsNotFound(t *testing.T) {
	repo := newFakeRepo()
	cmd := newCommandService(repo, newFakeCache())
	err := cmd.ModerateReview(context.Background(), 99, domain.ReviewAccepted)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
