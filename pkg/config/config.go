// Package config loads runtime configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-blog-cache/cache"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the resolved runtime configuration.
type Config struct {
	PageSize        int    `mapstructure:"pageSize"`
	CacheTTLSeconds int    `mapstructure:"cacheTTLSeconds"`
	CacheKeyPrefix  string `mapstructure:"cacheKeyPrefix"`
	CacheBackend    string `mapstructure:"cacheBackend"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	SQLiteDSN string `mapstructure:"sqliteDSN"`

	HTTPAddr string `mapstructure:"httpAddr"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Load reads configuration from the given file (optional) with environment
// overrides under the BLOG_ prefix, e.g. BLOG_PAGESIZE=25.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("pageSize", cache.DefaultPageSize)
	v.SetDefault("cacheTTLSeconds", int(cache.DefaultTTL/time.Second))
	v.SetDefault("cacheKeyPrefix", cache.DefaultKeyPrefix)
	v.SetDefault("cacheBackend", BackendMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("sqliteDSN", "blog.db")
	v.SetDefault("httpAddr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration with every option at its default.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// Load without a file only fails on unmarshal, which cannot happen
		// for the defaults.
		panic(err)
	}
	return cfg
}

// CacheConfig translates the runtime options into the listing cache config.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		PageSize:  c.PageSize,
		TTL:       time.Duration(c.CacheTTLSeconds) * time.Second,
		KeyPrefix: c.CacheKeyPrefix,
	}
}
