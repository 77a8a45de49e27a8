// Package external contains clients for collaborators outside the decision
// engine: the narrative text-generation service and its response cache.
package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/biomerkin/decision-engine/internal/domain"
)

const defaultMemoryItems = 512

// NarrativeCache is a two-tier cache for generated narrative text: an
// in-process LRU in front of an optional shared Redis tier. Cache failures
// are never surfaced to callers; a broken cache degrades to a miss.
type NarrativeCache struct {
	memory     *lru.Cache
	redis      *redis.Client
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// cachedNarrative wraps a cached section with expiry metadata for the Redis
// tier.
type cachedNarrative struct {
	Text      string    `json:"text"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewNarrativeCache creates the cache. An empty RedisURL yields a memory-only
// cache; an unreachable Redis is an error because it indicates
// misconfiguration rather than a transient failure.
func NewNarrativeCache(config domain.CacheConfig, logger *logrus.Logger) (*NarrativeCache, error) {
	items := config.MemoryItems
	if items <= 0 {
		items = defaultMemoryItems
	}
	memory, err := lru.New(items)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	cache := &NarrativeCache{
		memory:     memory,
		defaultTTL: config.DefaultTTL,
		logger:     logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts.PoolSize = config.PoolSize
		opts.PoolTimeout = config.PoolTimeout
		opts.MaxRetries = config.MaxRetries

		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		cache.redis = client
	}

	return cache, nil
}

// Get returns the cached narrative for a key, checking the memory tier first.
// A Redis hit is promoted into the memory tier.
func (c *NarrativeCache) Get(ctx context.Context, key string) (string, bool) {
	if value, ok := c.memory.Get(key); ok {
		if text, ok := value.(string); ok {
			return text, true
		}
	}

	if c.redis == nil {
		return "", false
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		if c.logger != nil {
			c.logger.WithError(err).Warn("Narrative cache read failed")
		}
		return "", false
	}

	var cached cachedNarrative
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, key)
		return "", false
	}
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return "", false
	}

	c.memory.Add(key, cached.Text)
	return cached.Text, true
}

// Set stores a narrative in both tiers. Errors are logged and swallowed.
func (c *NarrativeCache) Set(ctx context.Context, key, text string, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	c.memory.Add(key, text)

	if c.redis == nil {
		return
	}

	cached := cachedNarrative{
		Text:      text,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	jsonData, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, jsonData, ttl).Err(); err != nil && c.logger != nil {
		c.logger.WithError(err).Warn("Narrative cache write failed")
	}
}

// Purge empties the memory tier. The Redis tier expires on its own.
func (c *NarrativeCache) Purge() {
	c.memory.Purge()
}

// Ping checks the Redis tier connection. A memory-only cache always pings ok.
func (c *NarrativeCache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

// Close releases the Redis connection if one exists.
func (c *NarrativeCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

// NarrativeKey builds the cache key for a prompt against a given model. The
// prompt is hashed so keys stay bounded and free of patient text.
func NarrativeKey(model, prompt string, maxTokens int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", model, maxTokens, prompt)))
	return fmt.Sprintf("narrative:%x", hash[:16])
}
