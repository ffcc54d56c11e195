// Package cachekey builds every cache key the service uses. Keeping the whole
// namespace in one place is what makes pattern invalidation reliable: a
// filtered list key can always be swept by the matching All* pattern.
package cachekey

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Entity returns the key for one localized entity view, e.g. "listing:42:ar".
func Entity(entity string, id int64, lang string) string {
	return fmt.Sprintf("%s:%d:%s", entity, id, strings.ToLower(lang))
}

// UserCollection returns the key for a user-owned collection view,
// e.g. "user:7:bookings:ar".
func UserCollection(userID int64, collection, lang string) string {
	return fmt.Sprintf("user:%d:%s:%s", userID, collection, strings.ToLower(lang))
}

// FilteredList returns the key for one materialized page of a filtered list,
// e.g. "listings:all1f3870be27:ar".
func FilteredList(collection string, filters map[string]string, lang string) string {
	return fmt.Sprintf("%s:all%s:%s", collection, FilterHash(filters), strings.ToLower(lang))
}

// FilteredListPattern matches every filter-shape variant of a collection for
// one language; used for bulk invalidation.
func FilteredListPattern(collection, lang string) string {
	return fmt.Sprintf("%s:all*:%s", collection, strings.ToLower(lang))
}

// NotificationFeed returns the key of a user's cached notification list.
func NotificationFeed(userID int64) string {
	return fmt.Sprintf("user:%d:notifications", userID)
}

// FilterHash derives a stable digest from a filter set. Keys are sorted
// lexicographically and serialized canonically first, so semantically
// identical filters hash identically regardless of insertion order.
func FilterHash(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(filters[k])
	}
	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:12]
}
