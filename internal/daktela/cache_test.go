package daktela

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"
)

func testCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return NewCache(store, ttl, log.New(io.Discard, "", 0))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, found, err := store.Get(ctx, "k")
	if err != nil || !found || got != "v" {
		t.Errorf("Get = (%q, %v, %v), want (\"v\", true, nil)", got, found, err)
	}

	_, found, err = store.Get(ctx, "missing")
	if err != nil || found {
		t.Errorf("Get missing key: found=%v err=%v, want clean miss", found, err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	_, found, err := store.Get(ctx, "k")
	if err != nil || found {
		t.Errorf("expired entry: found=%v err=%v, want clean miss", found, err)
	}
}

func TestCacheOnlyServesReferenceEndpoints(t *testing.T) {
	c := testCache(t, time.Minute)
	ctx := context.Background()
	result := &ListResult{Data: []map[string]any{{"name": "agent"}}, Total: 1}

	c.Put(ctx, "users", "key-1", result)
	cached, ok := c.Get(ctx, "users", "key-1")
	if !ok {
		t.Fatal("users page should be served from cache")
	}
	if cached.Total != 1 || len(cached.Data) != 1 || cached.Data[0]["name"] != "agent" {
		t.Errorf("cached result = %+v", cached)
	}

	c.Put(ctx, "tickets", "key-2", result)
	if _, ok := c.Get(ctx, "tickets", "key-2"); ok {
		t.Error("tickets must never be served from cache")
	}
}

func TestNilCacheAlwaysMisses(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	c.Put(ctx, "users", "k", &ListResult{Total: 3})
	if _, ok := c.Get(ctx, "users", "k"); ok {
		t.Error("nil cache should always miss")
	}
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("https://a.daktela.com|agent", "users", 0, 100, "", "desc")
	if a != cacheKey("https://a.daktela.com|agent", "users", 0, 100, "", "desc") {
		t.Error("cache key should be deterministic")
	}
	if a == cacheKey("https://b.daktela.com|agent", "users", 0, 100, "", "desc") {
		t.Error("different instances must not share cache keys")
	}
	if a == cacheKey("https://a.daktela.com|agent", "users", 100, 100, "", "desc") {
		t.Error("different pages must not share cache keys")
	}
	if strings.Contains(a, "agent") {
		t.Error("identity should be hashed into the key, not embedded")
	}
}
