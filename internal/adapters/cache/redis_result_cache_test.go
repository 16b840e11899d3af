package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"collection-route-service/internal/domain"
)

func testCache(t *testing.T, ttl time.Duration) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisResultCache(client, ttl), mr
}

func sampleResult() *domain.Result {
	return &domain.Result{
		RunID:  "run-1",
		Status: domain.StatusOptimal,
		Direct: []domain.DirectShipment{{LocationID: "A", Cost: 100}},
		Routes: []domain.Route{{
			Stops:        []domain.RouteStop{{LocationID: "B", Minutes: 25, Cost: 50}},
			TotalMinutes: 25,
			TotalCost:    50,
		}},
		TotalCost: 150,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := testCache(t, time.Hour)
	ctx := context.Background()

	if err := c.Put(ctx, "abc", sampleResult()); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.RunID != "run-1" || got.TotalCost != 150 {
		t.Fatalf("result = %+v, want run-1 / 150", got)
	}
	if len(got.Routes) != 1 || got.Routes[0].Stops[0].LocationID != "B" {
		t.Fatalf("routes = %+v", got.Routes)
	}
}

func TestCacheMiss(t *testing.T) {
	c, _ := testCache(t, time.Hour)

	got, ok, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("expected a clean miss, got %+v (ok=%v)", got, ok)
	}
}

func TestCacheEntriesExpire(t *testing.T) {
	c, mr := testCache(t, time.Minute)
	ctx := context.Background()

	if err := c.Put(ctx, "abc", sampleResult()); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("entry should have expired")
	}
}

func TestCacheKeysAreNamespaced(t *testing.T) {
	c, mr := testCache(t, time.Hour)

	if err := c.Put(context.Background(), "abc", sampleResult()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("result:abc") {
		t.Fatalf("expected key result:abc, have %v", mr.Keys())
	}
}

func TestCacheNilClient(t *testing.T) {
	c := NewRedisResultCache(nil, 0)
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error from nil client on Get")
	}
	if err := c.Put(context.Background(), "k", sampleResult()); err == nil {
		t.Fatal("expected error from nil client on Put")
	}
}
