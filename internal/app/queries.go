package app

import (
	"context"
	"strconv"
	"strings"

	"homestay/internal/cachekey"
	"homestay/internal/domain"
)

// QueryService is the read-through accessor layer. Requests in the source
// language always bypass the cache (the canonical store is already in that
// language); any other language is served hit-first, miss-materialize-populate.
// Concurrent misses for one key are tolerated: both writers derive the same
// view from the same canonical snapshot and the last Set wins.
type QueryService struct {
	repo  domain.Repository
	cache domain.Cache
	mat   *Materializer

	source       string
	viewTTLSec   int
	listTTLSec   int
	refreshOnHit bool
}

type QueryConfig struct {
	SourceLang string
	ViewTTLSec int
	ListTTLSec int
	// RefreshTTLOnHit extends a view's TTL on every cache hit, keeping hot
	// entries resident. Off by default; policy knob, not a correctness lever.
	RefreshTTLOnHit bool
}

func NewQueryService(r domain.Repository, c domain.Cache, m *Materializer, cfg QueryConfig) *QueryService {
	return &QueryService{
		repo:         r,
		cache:        c,
		mat:          m,
		source:       cfg.SourceLang,
		viewTTLSec:   cfg.ViewTTLSec,
		listTTLSec:   cfg.ListTTLSec,
		refreshOnHit: cfg.RefreshTTLOnHit,
	}
}

func (s *QueryService) hit(ctx context.Context, key string, dst any) bool {
	ok, _ := s.cache.Get(ctx, key, dst)
	if ok && s.refreshOnHit {
		_ = s.cache.Expire(ctx, key, s.viewTTLSec)
	}
	return ok
}

func (s *QueryService) GetListing(ctx context.Context, id int64, lang string) (domain.ListingView, error) {
	if lang != s.source {
		key := cachekey.Entity("listing", id, lang)
		var lv domain.ListingView
		if s.hit(ctx, key, &lv) {
			return lv, nil
		}
		l, err := s.repo.GetListing(ctx, id)
		if err != nil {
			return domain.ListingView{}, err
		}
		lv = s.mat.Listing(ctx, l, lang)
		stats := ComputeListingStats(l.Reviews, l.Bookings)
		lv.Stats = &stats
		_ = s.cache.Set(ctx, key, lv, s.viewTTLSec)
		return lv, nil
	}

	l, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return domain.ListingView{}, err
	}
	lv := s.mat.Listing(ctx, l, lang)
	stats := ComputeListingStats(l.Reviews, l.Bookings)
	lv.Stats = &stats
	return lv, nil
}

func (s *QueryService) GetUser(ctx context.Context, id int64, lang string) (domain.UserView, error) {
	if lang != s.source {
		key := cachekey.Entity("user", id, lang)
		var uv domain.UserView
		if s.hit(ctx, key, &uv) {
			return uv, nil
		}
		u, err := s.repo.GetUser(ctx, id)
		if err != nil {
			return domain.UserView{}, err
		}
		uv = s.mat.User(ctx, u, lang)
		_ = s.cache.Set(ctx, key, uv, s.viewTTLSec)
		return uv, nil
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.UserView{}, err
	}
	return s.mat.User(ctx, u, lang), nil
}

func (s *QueryService) GetBooking(ctx context.Context, id int64, lang string) (domain.BookingView, error) {
	if lang != s.source {
		key := cachekey.Entity("booking", id, lang)
		var bv domain.BookingView
		if s.hit(ctx, key, &bv) {
			return bv, nil
		}
		b, err := s.repo.GetBooking(ctx, id)
		if err != nil {
			return domain.BookingView{}, err
		}
		bv = s.mat.Booking(ctx, b, lang)
		_ = s.cache.Set(ctx, key, bv, s.viewTTLSec)
		return bv, nil
	}
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return domain.BookingView{}, err
	}
	return s.mat.Booking(ctx, b, lang), nil
}

func (s *QueryService) GetReview(ctx context.Context, id int64, lang string) (domain.ReviewView, error) {
	if lang != s.source {
		key := cachekey.Entity("review", id, lang)
		var rv domain.ReviewView
		if s.hit(ctx, key, &rv) {
			return rv, nil
		}
		r, err := s.repo.GetReview(ctx, id)
		if err != nil {
			return domain.ReviewView{}, err
		}
		rv = s.mat.Review(ctx, r, lang)
		_ = s.cache.Set(ctx, key, rv, s.viewTTLSec)
		return rv, nil
	}
	r, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return domain.ReviewView{}, err
	}
	return s.mat.Review(ctx, r, lang), nil
}

func (s *QueryService) GetCategory(ctx context.Context, id int64, lang string) (domain.CategoryView, error) {
	if lang != s.source {
		key := cachekey.Entity("category", id, lang)
		var cv domain.CategoryView
		if s.hit(ctx, key, &cv) {
			return cv, nil
		}
		c, err := s.repo.GetCategory(ctx, id)
		if err != nil {
			return domain.CategoryView{}, err
		}
		cv = s.mat.Category(ctx, c, lang)
		_ = s.cache.Set(ctx, key, cv, s.viewTTLSec)
		return cv, nil
	}
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return domain.CategoryView{}, err
	}
	return s.mat.Category(ctx, c, lang), nil
}

// ListListings serves one materialized page per normalized filter shape.
// List items stay light: no nested reviews or stats, those live on the
// single-listing view.
func (s *QueryService) ListListings(ctx context.Context, q domain.ListingsQuery, lang string) (domain.ListingsPage, error) {
	q = normalizeListingsQuery(q)

	if lang != s.source {
		key := cachekey.FilteredList("listings", listingFilters(q), lang)
		var page domain.ListingsPage
		if s.hit(ctx, key, &page) {
			return page, nil
		}
		page, err := s.listListingsCanonical(ctx, q, lang)
		if err != nil {
			return domain.ListingsPage{}, err
		}
		_ = s.cache.Set(ctx, key, page, s.listTTLSec)
		return page, nil
	}
	return s.listListingsCanonical(ctx, q, lang)
}

func (s *QueryService) listListingsCanonical(ctx context.Context, q domain.ListingsQuery, lang string) (domain.ListingsPage, error) {
	items, total, err := s.repo.ListListings(ctx, q)
	if err != nil {
		return domain.ListingsPage{}, err
	}
	page := domain.ListingsPage{Total: total, Page: q.Page}
	for _, l := range items {
		page.Items = append(page.Items, s.mat.Listing(ctx, l, lang))
	}
	return page, nil
}

func (s *QueryService) ListUserBookings(ctx context.Context, userID int64, lang string) (domain.BookingsPage, error) {
	if lang != s.source {
		key := cachekey.UserCollection(userID, "bookings", lang)
		var page domain.BookingsPage
		if s.hit(ctx, key, &page) {
			return page, nil
		}
		page, err := s.listUserBookingsCanonical(ctx, userID, lang)
		if err != nil {
			return domain.BookingsPage{}, err
		}
		_ = s.cache.Set(ctx, key, page, s.listTTLSec)
		return page, nil
	}
	return s.listUserBookingsCanonical(ctx, userID, lang)
}

func (s *QueryService) listUserBookingsCanonical(ctx context.Context, userID int64, lang string) (domain.BookingsPage, error) {
	bs, err := s.repo.ListUserBookings(ctx, userID)
	if err != nil {
		return domain.BookingsPage{}, err
	}
	var page domain.BookingsPage
	for _, b := range bs {
		page.Items = append(page.Items, s.mat.Booking(ctx, b, lang))
	}
	return page, nil
}

func (s *QueryService) ListUserReviews(ctx context.Context, userID int64, lang string) (domain.ReviewsPage, error) {
	if lang != s.source {
		key := cachekey.UserCollection(userID, "reviews", lang)
		var page domain.ReviewsPage
		if s.hit(ctx, key, &page) {
			return page, nil
		}
		page, err := s.listUserReviewsCanonical(ctx, userID, lang)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		_ = s.cache.Set(ctx, key, page, s.listTTLSec)
		return page, nil
	}
	return s.listUserReviewsCanonical(ctx, userID, lang)
}

func (s *QueryService) listUserReviewsCanonical(ctx context.Context, userID int64, lang string) (domain.ReviewsPage, error) {
	rs, err := s.repo.ListUserReviews(ctx, userID)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	var page domain.ReviewsPage
	for _, r := range rs {
		page.Items = append(page.Items, s.mat.Review(ctx, r, lang))
	}
	return page, nil
}

func (s *QueryService) ListCategories(ctx context.Context, lang string) ([]domain.CategoryView, error) {
	if lang != s.source {
		key := cachekey.FilteredList("categories", nil, lang)
		var out []domain.CategoryView
		if s.hit(ctx, key, &out) {
			return out, nil
		}
		out, err := s.listCategoriesCanonical(ctx, lang)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, key, out, s.listTTLSec)
		return out, nil
	}
	return s.listCategoriesCanonical(ctx, lang)
}

func (s *QueryService) listCategoriesCanonical(ctx context.Context, lang string) ([]domain.CategoryView, error) {
	cs, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CategoryView, 0, len(cs))
	for _, c := range cs {
		out = append(out, s.mat.Category(ctx, c, lang))
	}
	return out, nil
}

// normalizeListingsQuery canonicalizes free-form filter input so equivalent
// queries share one cache entry.
func normalizeListingsQuery(q domain.ListingsQuery) domain.ListingsQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	if q.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*q.Status))
		q.Status = &s
	}
	if q.City != nil {
		c := strings.ToLower(strings.TrimSpace(*q.City))
		q.City = &c
	}
	return q
}

func listingFilters(q domain.ListingsQuery) map[string]string {
	f := map[string]string{
		"page":      strconv.Itoa(q.Page),
		"page_size": strconv.Itoa(q.PageSize),
	}
	if q.Status != nil && *q.Status != "" {
		f["status"] = *q.Status
	}
	if q.City != nil && *q.City != "" {
		f["city"] = *q.City
	}
	if q.CategoryID != nil {
		f["category"] = strconv.FormatInt(*q.CategoryID, 10)
	}
	if q.MinCents != nil {
		f["min_cents"] = strconv.FormatInt(*q.MinCents, 10)
	}
	if q.MaxCents != nil {
		f["max_cents"] = strconv.FormatInt(*q.MaxCents, 10)
	}
	return f
}
