package app_test

import (
	"context"
	"encoding/json"
	"path"
	"sync"

	"homestay/internal/domain"
)

// ---- fakes shared across the app tests ----

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *fakeCache) DelPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.store {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.store, k)
		}
	}
	return nil
}

func (c *fakeCache) Expire(ctx context.Context, key string, ttlSec int) error { return nil }

func (c *fakeCache) ListPush(ctx context.Context, key string, v any) error {
	b, _ := json.Marshal(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store["list:"+key] = append(b, c.store["list:"+key]...)
	return nil
}

func (c *fakeCache) ListTrim(ctx context.Context, key string, max int64) error { return nil }

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

func (c *fakeCache) raw(key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

type fakeRepo struct {
	mu sync.Mutex

	users      map[int64]domain.User
	categories map[int64]domain.Category
	listings   map[int64]domain.Listing
	bookings   map[int64]domain.Booking
	reviews    map[int64]domain.Review
	ledger     []domain.RewardEntry

	writeErr error // forced failure for every write
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      map[int64]domain.User{},
		categories: map[int64]domain.Category{},
		listings:   map[int64]domain.Listing{},
		bookings:   map[int64]domain.Booking{},
		reviews:    map[int64]domain.Review{},
	}
}

func (f *fakeRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeRepo) GetBooking(ctx context.Context, id int64) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) ListListings(ctx context.Context, q domain.ListingsQuery) ([]domain.Listing, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Listing
	for _, l := range f.listings {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListListingIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id := range f.listings {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Category
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) ListUserBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListUserReviews(ctx context.Context, userID int64) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateListing(ctx context.Context, l *domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if l.ID == 0 {
		l.ID = int64(len(f.listings) + 1)
	}
	f.listings[l.ID] = *l
	return nil
}

func (f *fakeRepo) UpdateListing(ctx context.Context, l domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.listings[l.ID] = l
	return nil
}

func (f *fakeRepo) DeleteListing(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeRepo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if b.ID == 0 {
		b.ID = int64(len(f.bookings) + 1)
	}
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeRepo) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	b := f.bookings[id]
	b.Status = status
	f.bookings[id] = b
	return nil
}

func (f *fakeRepo) DeleteBooking(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	delete(f.bookings, id)
	return nil
}

func (f *fakeRepo) CreateReview(ctx context.Context, r *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if r.ID == 0 {
		r.ID = int64(len(f.reviews) + 1)
	}
	f.reviews[r.ID] = *r
	return nil
}

func (f *fakeRepo) SetReviewStatus(ctx context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	r := f.reviews[id]
	r.Status = status
	f.reviews[id] = r
	return nil
}

func (f *fakeRepo) UpdateUserProfile(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) AppendRewardEntry(ctx context.Context, e domain.RewardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	e.ID = int64(len(f.ledger) + 1)
	f.ledger = append(f.ledger, e)
	return nil
}

func (f *fakeRepo) SumRewardPoints(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, e := range f.ledger {
		if e.UserID == userID {
			sum += e.Points
		}
	}
	return sum, nil
}

func (f *fakeRepo) LatestRewardTier(ctx context.Context, userID int64) (domain.Tier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.ledger) - 1; i >= 0; i-- {
		if f.ledger[i].UserID == userID {
			return f.ledger[i].Tier, nil
		}
	}
	return "", domain.ErrNotFound
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *fakeNotifier) Publish(ctx context.Context, ev domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *fakeNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, ev := range n.events {
		out = append(out, ev.Kind)
	}
	return out
}

// ---- small helpers ----

func ptr[T any](v T) *T { return &v }

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
