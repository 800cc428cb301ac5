package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

const (
	DefaultPrefix = "rbt:smiles:"
	DefaultTTL    = 7 * 24 * time.Hour
)

var _ molecule.RemoteCache = (*StructureCache)(nil)

// StructureCache shares canonical SMILES between normalizer instances on
// different hosts.  Keys are the raw input as seen by the normalizer; values
// are canonical strings.
type StructureCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
	jitter float64
	group  singleflight.Group
}

type CacheOption func(*StructureCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *StructureCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *StructureCache) { c.ttl = ttl }
}

// WithJitter spreads expirations by +/- ratio of the TTL.  Zero disables it.
func WithJitter(ratio float64) CacheOption {
	return func(c *StructureCache) { c.jitter = ratio }
}

// NewStructureCache builds a cache over client.
func NewStructureCache(client *Client, log logging.Logger, opts ...CacheOption) *StructureCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &StructureCache{
		client: client,
		logger: log,
		prefix: DefaultPrefix,
		ttl:    DefaultTTL,
		jitter: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StructureCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *StructureCache) jitterTTL() time.Duration {
	if c.ttl <= 0 || c.jitter <= 0 {
		return c.ttl
	}
	delta := float64(c.ttl) * c.jitter * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(delta)
}

// Get returns the canonical form stored for key.  Concurrent lookups of the
// same key share one round trip.
func (c *StructureCache) Get(ctx context.Context, key string) (string, bool, error) {
	fullKey := c.fullKey(key)
	v, err, _ := c.group.Do(fullKey, func() (interface{}, error) {
		val, err := c.client.Get(ctx, fullKey).Result()
		if err == redis.Nil {
			return "", nil
		}
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeCacheError, "failed to read structure cache").WithDetail(fullKey)
		}
		return val, nil
	})
	if err != nil {
		return "", false, err
	}
	canonical := v.(string)
	return canonical, canonical != "", nil
}

// Set stores canonical under key.  Empty values are not stored.
func (c *StructureCache) Set(ctx context.Context, key, canonical string) error {
	if canonical == "" {
		return nil
	}
	fullKey := c.fullKey(key)
	if err := c.client.Set(ctx, fullKey, canonical, c.jitterTTL()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write structure cache").WithDetail(fullKey)
	}
	return nil
}

// Close releases the underlying client.
func (c *StructureCache) Close() error {
	return c.client.Close()
}

//Personal.AI order the ending
