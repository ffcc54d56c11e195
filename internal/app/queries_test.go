package app_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"homestay/internal/adapters/translate"
	"homestay/internal/app"
	"homestay/internal/domain"
)

func newQueryService(repo *fakeRepo, cache *fakeCache) *app.QueryService {
	mat := app.NewMaterializer(translate.NewMock(), "en")
	return app.NewQueryService(repo, cache, mat, app.QueryConfig{
		SourceLang: "en",
		ViewTTLSec: 3600,
		ListTTLSec: 600,
	})
}

func TestGetListing_CacheMissThenHit(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	cache := newFakeCache()
	q := newQueryService(repo, cache)
	ctx := context.Background()

	// Miss (first time, populates cache)
	v, err := q.GetListing(ctx, 7, "ar")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if v.Name != "[ar]Sea View Villa" {
		t.Fatalf("unexpected name: %s", v.Name)
	}
	if v.Stats == nil || v.Stats.TotalReviews != 1 {
		t.Fatalf("stats not attached: %+v", v.Stats)
	}

	// Mutate repo to prove the second read comes from cache
	l := repo.listings[7]
	l.Name = "SHOULD NOT SEE THIS"
	repo.listings[7] = l

	v2, err := q.GetListing(ctx, 7, "ar")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if v2.Name != "[ar]Sea View Villa" {
		t.Fatalf("expected cached name, got %s", v2.Name)
	}
}

func TestGetListing_SourceLangBypassesCache(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	cache := newFakeCache()
	q := newQueryService(repo, cache)

	v, err := q.GetListing(context.Background(), 7, "en")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if v.Name != "Sea View Villa" {
		t.Fatalf("canonical name expected: %s", v.Name)
	}
	if cache.has("listing:7:en") {
		t.Fatal("source-language reads must not populate the cache")
	}
}

func TestGetListing_NotFoundIsNotCached(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	q := newQueryService(repo, cache)

	_, err := q.GetListing(context.Background(), 404, "ar")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if cache.has("listing:404:ar") {
		t.Fatal("negative results must not be cached")
	}
}

func TestGetListing_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	cache := newFakeCache()
	q := newQueryService(repo, cache)
	ctx := context.Background()

	if _, err := q.GetListing(ctx, 7, "ar"); err != nil {
		t.Fatalf("err: %v", err)
	}
	first := append([]byte(nil), cache.raw("listing:7:ar")...)

	if _, err := q.GetListing(ctx, 7, "ar"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if !bytes.Equal(first, cache.raw("listing:7:ar")) {
		t.Fatal("repeated reads must reproduce the cached bytes exactly")
	}
}

func TestListListings_FilterShapeSharesEntry(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	cache := newFakeCache()
	q := newQueryService(repo, cache)
	ctx := context.Background()

	if _, err := q.ListListings(ctx, domain.ListingsQuery{Status: ptr("active"), Page: 1}, "ar"); err != nil {
		t.Fatalf("err: %v", err)
	}
	entries := len(cache.store)

	// Same filters, different spelling and order of construction
	if _, err := q.ListListings(ctx, domain.ListingsQuery{Page: 1, Status: ptr(" ACTIVE ")}, "ar"); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cache.store) != entries {
		t.Fatalf("equivalent filters created a second entry: %d -> %d", entries, len(cache.store))
	}
}

func TestListUserBookings_CachedPerUser(t *testing.T) {
	repo := newFakeRepo()
	repo.bookings[21] = domain.Booking{ID: 21, ListingID: 7, UserID: 3, Status: domain.BookingConfirmed, ListingName: "Sea View Villa"}
	cache := newFakeCache()
	q := newQueryService(repo, cache)

	page, err := q.ListUserBookings(context.Background(), 3, "ar")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ListingName != "[ar]Sea View Villa" {
		t.Fatalf("unexpected page: %+v", page.Items)
	}
	if !cache.has("user:3:bookings:ar") {
		t.Fatal("user collection key not populated")
	}
}

func TestGetListing_ConcurrentMissesBothSucceed(t *testing.T) {
	repo := newFakeRepo()
	repo.listings[7] = sampleListing()
	cache := newFakeCache()
	q := newQueryService(repo, cache)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = q.GetListing(context.Background(), 7, "ar")
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("reader %d: %v", i, err)
		}
	}

	var v domain.ListingView
	ok, err := cache.Get(context.Background(), "listing:7:ar", &v)
	if err != nil || !ok {
		t.Fatalf("cache not populated after concurrent misses: ok=%v err=%v", ok, err)
	}
	if v.Name != "[ar]Sea View Villa" {
		t.Fatalf("corrupt cached view: %+v", v)
	}
}
