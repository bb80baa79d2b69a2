// Package di wires the blog object graph from configuration.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-blog-cache/blog"
	"github.com/goliatone/go-blog-cache/cache"
	"github.com/goliatone/go-blog-cache/internal/cacheinfra"
	"github.com/goliatone/go-blog-cache/listing"
	"github.com/goliatone/go-blog-cache/pkg/config"
)

// Container manages singleton instances of the cache store, listing service
// and post service, and owns the database handle.
type Container struct {
	cfg      *config.Config
	log      *zap.Logger
	store    cache.Store
	keys     cache.Keys
	db       *bun.DB
	posts    *blog.Posts
	listings *listing.Service[blog.Post]

	redis *cacheinfra.RedisStore
}

// NewContainer builds the object graph for the given configuration. A nil
// logger is replaced with a nop logger.
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}

	c := &Container{cfg: cfg, log: log}

	switch cfg.CacheBackend {
	case config.BackendMemory, "":
		c.store = cacheinfra.NewMemoryStore()
	case config.BackendRedis:
		redis, err := cacheinfra.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		c.redis = redis
		c.store = redis
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	db, err := blog.OpenDB(cfg.SQLiteDSN)
	if err != nil {
		return nil, err
	}
	c.db = db

	postStore := blog.NewPostStore(db)
	if err := postStore.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	cacheCfg := cfg.CacheConfig()
	c.keys = cache.NewKeys(cacheCfg.KeyPrefix)

	listings, err := listing.New[blog.Post](c.store, postStore, c.keys, cacheCfg, log)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.listings = listings

	detailCfg := cacheinfra.DefaultReadThroughConfig()
	detailCfg.TTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	detail, err := cacheinfra.NewSturdycReadThrough(detailCfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	c.posts = blog.NewPosts(postStore, listings, detail, c.keys, log)

	return c, nil
}

// NewContainerWithDefaults builds a container with an in-memory cache and an
// in-memory database. Convenient for tests and demos.
func NewContainerWithDefaults() (*Container, error) {
	cfg := config.Default()
	cfg.SQLiteDSN = ":memory:"
	return NewContainer(cfg, nil)
}

// Posts returns the post service.
func (c *Container) Posts() *blog.Posts {
	return c.posts
}

// Listings returns the cache-aside listing service.
func (c *Container) Listings() *listing.Service[blog.Post] {
	return c.listings
}

// Store returns the listing cache store.
func (c *Container) Store() cache.Store {
	return c.store
}

// Keys returns the cache key builder.
func (c *Container) Keys() cache.Keys {
	return c.keys
}

// Config returns the configuration used by this container.
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Close releases the database and, when configured, the redis connection.
func (c *Container) Close() error {
	var firstErr error
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			firstErr = err
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
