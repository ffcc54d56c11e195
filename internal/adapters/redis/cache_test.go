package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"

	redisad "homestay/internal/adapters/redis"
)

func newTestCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type view struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	if err := c.Set(ctx, "listing:1:ar", view{ID: 1, Name: "فيلا"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got view
	ok, err := c.Get(ctx, "listing:1:ar", &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.ID != 1 || got.Name != "فيلا" {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := c.Del(ctx, "listing:1:ar"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "listing:1:ar", &got)
	if ok {
		t.Fatal("expected miss after delete")
	}
}

func TestCache_DelPattern_SweepsFilteredLists(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"listings:allaaa:ar", "listings:allbbb:ar", "listing:9:ar"} {
		if err := c.Set(ctx, k, map[string]string{"k": k}, 60); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	if err := c.DelPattern(ctx, "listings:all*:ar"); err != nil {
		t.Fatalf("del pattern: %v", err)
	}

	if mr.Exists("listings:allaaa:ar") || mr.Exists("listings:allbbb:ar") {
		t.Fatal("filtered list keys survived pattern delete")
	}
	if !mr.Exists("listing:9:ar") {
		t.Fatal("entity key was swept by the list pattern")
	}
}

func TestCache_ListPushTrim(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := c.ListPush(ctx, "user:1:notifications", map[string]int{"n": i}); err != nil {
			t.Fatalf("lpush: %v", err)
		}
	}
	if err := c.ListTrim(ctx, "user:1:notifications", 3); err != nil {
		t.Fatalf("ltrim: %v", err)
	}
	items, err := mr.List("user:1:notifications")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items after trim, got %d", len(items))
	}
}

func TestCache_OutageReadsAsMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Close()

	var dst map[string]string
	ok, err := c.Get(context.Background(), "listing:1:ar", &dst)
	if ok {
		t.Fatal("expected miss during outage")
	}
	if err == nil {
		t.Fatal("expected transport error to surface for logging")
	}
}

// redismock pins the exact SCAN/DEL command sequence of DelPattern.
func TestCache_DelPattern_Commands(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := redisad.NewFromClient(db)

	mock.ExpectScan(0, "bookings:all*:ar", 200).SetVal([]string{"bookings:allccc:ar"}, 0)
	mock.ExpectDel("bookings:allccc:ar").SetVal(1)

	if err := c.DelPattern(context.Background(), "bookings:all*:ar"); err != nil {
		t.Fatalf("del pattern: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
