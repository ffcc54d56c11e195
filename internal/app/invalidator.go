package app

import (
	"context"

	"homestay/internal/cachekey"
	"homestay/internal/domain"
)

// Invalidation names everything a mutation can dirty: the entity itself, the
// users whose collection views embed it, and the parent listings whose
// aggregates depend on it.
type Invalidation struct {
	Entity     string // listing | booking | review | user | category
	ID         int64
	UserIDs    []int64
	ListingIDs []int64
}

// Invalidator deletes cache entries dirtied by a mutation. Deletion is
// unconditional and runs before the write response is returned, so a reader
// arriving immediately after a write always falls through to canonical.
// Cache errors are absorbed: a failed delete only widens the window until the
// entry's TTL or the next repair pass.
type Invalidator struct {
	cache domain.Cache
	langs []string // configured target languages; source is never cached
}

func NewInvalidator(c domain.Cache, targetLangs []string) *Invalidator {
	return &Invalidator{cache: c, langs: targetLangs}
}

var collections = map[string]string{
	"listing":  "listings",
	"booking":  "bookings",
	"review":   "reviews",
	"user":     "users",
	"category": "categories",
}

func (i *Invalidator) Invalidate(ctx context.Context, ev Invalidation) {
	var keys []string
	for _, lang := range i.langs {
		keys = append(keys, cachekey.Entity(ev.Entity, ev.ID, lang))
		for _, uid := range ev.UserIDs {
			keys = append(keys,
				cachekey.Entity("user", uid, lang),
				cachekey.UserCollection(uid, "bookings", lang),
				cachekey.UserCollection(uid, "reviews", lang),
			)
		}
		for _, lid := range ev.ListingIDs {
			keys = append(keys, cachekey.Entity("listing", lid, lang))
		}
	}
	_ = i.cache.Del(ctx, keys...)

	// Any mutation can change which filter shapes match which rows, so the
	// whole filtered-list namespace of the collection is swept.
	if coll, ok := collections[ev.Entity]; ok {
		for _, lang := range i.langs {
			_ = i.cache.DelPattern(ctx, cachekey.FilteredListPattern(coll, lang))
		}
	}
}
