package vendry

import (
	"time"

	"github.com/vendry-cloud/vendry/internal/cache"
	"github.com/vendry-cloud/vendry/internal/domain/search/query"
	searchuc "github.com/vendry-cloud/vendry/internal/usecase/search"
)

type clientConfig struct {
	driver    string
	addrs     []string
	username  string
	password  string
	db        int
	keyPrefix string

	maxRadiusKm  float64
	fetchTimeout time.Duration

	cacheEnabled   bool
	cacheTTL       time.Duration
	cacheCapacity  int
	coordPrecision int
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		driver:         "memory",
		maxRadiusKm:    query.DefaultMaxRadiusKm,
		fetchTimeout:   searchuc.DefaultFetchTimeout,
		cacheEnabled:   true,
		cacheTTL:       cache.DefaultTTL,
		cacheCapacity:  cache.DefaultCapacity,
		coordPrecision: query.DefaultCoordPrecision,
	}
}

// Option configures a Client.
type Option func(*clientConfig)

// WithMemory selects the in-memory store (the default).
func WithMemory() Option {
	return func(c *clientConfig) { c.driver = "memory" }
}

// WithRedis selects the Redis GEO store.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = addrs
	}
}

// WithRedisAuth sets Redis credentials.
func WithRedisAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithRedisDB selects the Redis logical database.
func WithRedisDB(db int) Option {
	return func(c *clientConfig) { c.db = db }
}

// WithKeyPrefix overrides the Redis key prefix (default "vendry:").
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithMaxRadiusKm overrides the search radius cap.
func WithMaxRadiusKm(km float64) Option {
	return func(c *clientConfig) {
		if km > 0 {
			c.maxRadiusKm = km
		}
	}
}

// WithFetchTimeout overrides the per-search store fetch deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithoutCache disables the query result cache.
func WithoutCache() Option {
	return func(c *clientConfig) { c.cacheEnabled = false }
}

// WithCachePolicy overrides query cache TTL and capacity.
func WithCachePolicy(ttl time.Duration, capacity int) Option {
	return func(c *clientConfig) {
		if ttl > 0 {
			c.cacheTTL = ttl
		}
		if capacity > 0 {
			c.cacheCapacity = capacity
		}
	}
}

// WithCoordPrecision overrides the cache fingerprint coordinate rounding
// (decimal places; default 4, ~11m).
func WithCoordPrecision(decimals int) Option {
	return func(c *clientConfig) {
		if decimals > 0 {
			c.coordPrecision = decimals
		}
	}
}
