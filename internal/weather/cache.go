package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"krishisense/internal/model"

	"github.com/redis/go-redis/v9"
)

// Cache stores serialized weather snapshots
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
}

type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memItem
}

type memItem struct {
	val []byte
	exp time.Time
}

// NewCache connects to Redis, falling back to an in-memory cache when the URL is empty or unreachable
func NewCache(redisURL string) Cache {
	if redisURL == "" {
		return NewMemoryCache()
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Warning: invalid REDIS_URL, using in-memory weather cache: %v", err)
		return NewMemoryCache()
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unreachable, using in-memory weather cache: %v", err)
		client.Close()
		return NewMemoryCache()
	}
	log.Println("✅ Connected to Redis weather cache")
	return &RedisCache{client: client}
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memItem)}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, val, ttl).Err()
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !it.exp.IsZero() && time.Now().After(it.exp) {
		delete(m.items, key)
		return nil, false
	}
	return it.val, true
}

func (m *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, it := range m.items {
		if !it.exp.IsZero() && now.After(it.exp) {
			delete(m.items, k)
		}
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	m.items[key] = memItem{val: val, exp: exp}
	return nil
}

// Len reports how many entries are held, expired ones included until the next Set.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// CachedProvider serves repeated lookups for nearby coordinates from a cache.
// Failures are never cached.
type CachedProvider struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
}

// NewCachedProvider creates a new cached provider. A non-positive ttl disables caching.
func NewCachedProvider(provider Provider, cache Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{provider: provider, cache: cache, ttl: ttl}
}

// cacheKey rounds to two decimals, roughly a 1km grid
func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("weather:%.2f:%.2f", lat, lon)
}

func (c *CachedProvider) Fetch(ctx context.Context, lat, lon float64) (*model.WeatherSnapshot, error) {
	if c.ttl <= 0 {
		return c.provider.Fetch(ctx, lat, lon)
	}

	key := cacheKey(lat, lon)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var snapshot model.WeatherSnapshot
		if err := json.Unmarshal(raw, &snapshot); err == nil {
			return &snapshot, nil
		}
		log.Printf("Warning: discarding unreadable weather cache entry %s", key)
	}

	snapshot, err := c.provider.Fetch(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(snapshot); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			log.Printf("Warning: failed to cache weather for %s: %v", key, err)
		}
	}
	return snapshot, nil
}

var (
	_ Cache    = (*RedisCache)(nil)
	_ Cache    = (*MemoryCache)(nil)
	_ Provider = (*CachedProvider)(nil)
)
