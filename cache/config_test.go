package cache

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PageSize != 10 {
		t.Errorf("expected default page size 10, got %d", cfg.PageSize)
	}

	if cfg.TTL != time.Hour {
		t.Errorf("expected default TTL of one hour, got %v", cfg.TTL)
	}

	if cfg.KeyPrefix != "posts" {
		t.Errorf("expected default key prefix 'posts', got %q", cfg.KeyPrefix)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"zero page size", Config{PageSize: 0, TTL: time.Hour, KeyPrefix: "posts"}, "PageSize"},
		{"zero ttl", Config{PageSize: 10, TTL: 0, KeyPrefix: "posts"}, "TTL"},
		{"empty prefix", Config{PageSize: 10, TTL: time.Hour, KeyPrefix: ""}, "KeyPrefix"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}

			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %T", err)
			}

			if cfgErr.Field != tc.field {
				t.Errorf("expected error on field %q, got %q", tc.field, cfgErr.Field)
			}
		})
	}
}
