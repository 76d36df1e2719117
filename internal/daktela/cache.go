package daktela

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/tidwall/buntdb"
	"github.com/valkey-io/valkey-go"
)

// Endpoints whose contents change rarely enough to cache. Tickets,
// activities, and other operational data are always fetched live.
var cacheableEndpoints = map[string]bool{
	"users":             true,
	"queues":            true,
	"ticketsCategories": true,
	"groups":            true,
	"pauses":            true,
	"statuses":          true,
	"templates":         true,
	"campaignsTypes":    true,
}

// Store is the cache backing. Get returns found=false on a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type buntStore struct {
	db *buntdb.DB
}

// NewMemoryStore returns an in-process Store. Suitable for single-instance
// deployments; entries vanish on restart.
func NewMemoryStore() (Store, error) {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		return nil, err
	}
	return &buntStore{db: db}, nil
}

func (s *buntStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if err == buntdb.ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *buntStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, value, &buntdb.SetOptions{Expires: true, TTL: ttl})
		return err
	})
}

type valkeyStore struct {
	client valkey.Client
}

// NewValkeyStore returns a Store backed by a shared valkey instance so
// multiple server replicas reuse each other's reference data.
func NewValkeyStore(rawURL string) (Store, error) {
	opt, err := valkey.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse valkey URL: %w", err)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("connect valkey: %w", err)
	}
	return &valkeyStore{client: client}, nil
}

func (s *valkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	res := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	if res.Error() != nil {
		return "", false, nil
	}
	value, err := res.ToString()
	if err != nil || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *valkeyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Do(ctx, s.client.B().Set().Key(key).Value(value).Ex(ttl).Build()).Error()
}

// Cache holds list responses for slow-changing reference endpoints. A nil
// *Cache is valid and never hits.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *log.Logger
}

// NewCache wraps a Store with a TTL.
func NewCache(store Store, ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// Get returns the cached list result for endpoint, if present. Store errors
// are logged and reported as misses so a flaky backend degrades to live
// fetches instead of failing tool calls.
func (c *Cache) Get(ctx context.Context, endpoint, key string) (*ListResult, bool) {
	if c == nil || !cacheableEndpoints[endpoint] {
		return nil, false
	}
	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Printf("cache get %s: %v", endpoint, err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var result ListResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Printf("cache decode %s: %v", endpoint, err)
		return nil, false
	}
	return &result, true
}

// Put stores a list result for endpoint. No-op for non-cacheable endpoints.
func (c *Cache) Put(ctx context.Context, endpoint, key string, result *ListResult) {
	if c == nil || !cacheableEndpoints[endpoint] {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.Printf("cache put %s: %v", endpoint, err)
	}
}

// cacheKey identifies one page of one endpoint for one instance and account.
// The identity carries credentials, so it is hashed rather than stored raw.
func cacheKey(identity, endpoint string, skip, take int, sort, dir string) string {
	sum := sha256.Sum256([]byte(identity))
	return fmt.Sprintf("%s|%s|%d|%d|%s|%s", hex.EncodeToString(sum[:]), endpoint, skip, take, sort, dir)
}
