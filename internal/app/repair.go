package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"homestay/internal/adapters/observability"
	"homestay/internal/cachekey"
	"homestay/internal/domain"
)

// Task is the immutable payload of one background repair unit. It carries ids
// only, never closures or loaded records: the task re-reads canonical state
// when it runs, so late execution still derives a correct view.
type Task struct {
	Entity       string
	ID           int64
	UserIDs      []int64
	ListingIDs   []int64
	Deleted      bool // entity row is gone; skip its own repopulation
	RewardPoints int64
	RewardUserID int64
	Events       []domain.Event
}

// Repairer runs repair tasks after the write response has been handed back.
// Concurrency is bounded by a weighted semaphore; tasks for the same entity
// may race, which is safe because every run computes the same deterministic
// transformation from canonical data. Failures are logged and swallowed: a
// failed repair degrades to "next reader repopulates via read-through miss".
type Repairer struct {
	queries  *QueryService
	inv      *Invalidator
	rewards  *RewardService
	notifier domain.Notifier
	cache    domain.Cache
	langs    []string

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

const notificationFeedMax = 100

func NewRepairer(q *QueryService, inv *Invalidator, rw *RewardService, n domain.Notifier, c domain.Cache, targetLangs []string, maxConcurrent int64) *Repairer {
	if maxConcurrent < 1 {
		maxConcurrent = 4
	}
	return &Repairer{
		queries:  q,
		inv:      inv,
		rewards:  rw,
		notifier: n,
		cache:    c,
		langs:    targetLangs,
		sem:      semaphore.NewWeighted(maxConcurrent),
	}
}

// Schedule hands off a task and returns immediately. Tasks are not
// cancellable; shutdown waits for in-flight work via Wait.
func (r *Repairer) Schedule(t Task) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(context.Background(), 1); err != nil {
			observability.ObserveRepair(t.Entity, "dropped")
			return
		}
		defer r.sem.Release(1)
		r.run(t)
	}()
}

// Wait blocks until every scheduled task has finished.
func (r *Repairer) Wait() { r.wg.Wait() }

func (r *Repairer) run(t Task) {
	ctx := context.Background()
	start := time.Now()

	// Invalidate again first: the synchronous pass may have raced a
	// concurrent read-through that repopulated a pre-write snapshot.
	r.inv.Invalidate(ctx, Invalidation{Entity: t.Entity, ID: t.ID, UserIDs: t.UserIDs, ListingIDs: t.ListingIDs})

	failed := false
	if !t.Deleted {
		failed = r.repopulateEntity(ctx, t) || failed
	}
	for _, lang := range r.langs {
		for _, uid := range t.UserIDs {
			if _, err := r.queries.ListUserBookings(ctx, uid, lang); err != nil && !errors.Is(err, domain.ErrNotFound) {
				failed = true
				log.Warn().Err(err).Int64("user", uid).Str("lang", lang).Msg("repair: user bookings repopulation failed")
			}
			if _, err := r.queries.ListUserReviews(ctx, uid, lang); err != nil && !errors.Is(err, domain.ErrNotFound) {
				failed = true
				log.Warn().Err(err).Int64("user", uid).Str("lang", lang).Msg("repair: user reviews repopulation failed")
			}
		}
		for _, lid := range t.ListingIDs {
			if _, err := r.queries.GetListing(ctx, lid, lang); err != nil && !errors.Is(err, domain.ErrNotFound) {
				failed = true
				log.Warn().Err(err).Int64("listing", lid).Str("lang", lang).Msg("repair: parent listing repopulation failed")
			}
		}
	}

	events := t.Events
	if t.RewardPoints > 0 && t.RewardUserID > 0 {
		tier, changed, err := r.rewards.Award(ctx, t.RewardUserID, t.RewardPoints, domain.ReasonBookingCreated)
		if err != nil {
			failed = true
			log.Warn().Err(err).Int64("user", t.RewardUserID).Msg("repair: reward award failed")
		} else if changed {
			events = append(events, domain.Event{
				Kind:      domain.EventTierChanged,
				UserID:    t.RewardUserID,
				Tier:      string(tier),
				Message:   "reward tier changed",
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
			})
		}
	}

	for _, ev := range events {
		if r.notifier != nil {
			if err := r.notifier.Publish(ctx, ev); err != nil {
				log.Warn().Err(err).Str("kind", ev.Kind).Msg("repair: event publish failed")
			}
		}
		if ev.UserID > 0 {
			feed := cachekey.NotificationFeed(ev.UserID)
			if err := r.cache.ListPush(ctx, feed, ev); err == nil {
				_ = r.cache.ListTrim(ctx, feed, notificationFeedMax)
			}
		}
	}

	result := "ok"
	if failed {
		result = "failed"
	}
	observability.ObserveRepair(t.Entity, result)
	log.Debug().
		Str("entity", t.Entity).
		Int64("id", t.ID).
		Str("result", result).
		Dur("duration", time.Since(start)).
		Msg("repair task finished")
}

// repopulateEntity eagerly rebuilds the entity's own localized views.
// Returns true when any language failed.
func (r *Repairer) repopulateEntity(ctx context.Context, t Task) bool {
	failed := false
	for _, lang := range r.langs {
		var err error
		switch t.Entity {
		case "listing":
			_, err = r.queries.GetListing(ctx, t.ID, lang)
		case "booking":
			_, err = r.queries.GetBooking(ctx, t.ID, lang)
		case "review":
			_, err = r.queries.GetReview(ctx, t.ID, lang)
		case "user":
			_, err = r.queries.GetUser(ctx, t.ID, lang)
		case "category":
			_, err = r.queries.GetCategory(ctx, t.ID, lang)
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			failed = true
			log.Warn().Err(err).Str("entity", t.Entity).Int64("id", t.ID).Str("lang", lang).Msg("repair: entity repopulation failed")
		}
	}
	return failed
}
