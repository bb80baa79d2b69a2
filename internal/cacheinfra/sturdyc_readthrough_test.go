package cacheinfra

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestReadThroughConfig_Validate(t *testing.T) {
	cases := []struct {
		name  string
		cfg   ReadThroughConfig
		field string
	}{
		{"zero capacity", ReadThroughConfig{Capacity: 0, NumShards: 8, TTL: time.Hour, EvictionPercentage: 10}, "Capacity"},
		{"zero shards", ReadThroughConfig{Capacity: 100, NumShards: 0, TTL: time.Hour, EvictionPercentage: 10}, "NumShards"},
		{"zero ttl", ReadThroughConfig{Capacity: 100, NumShards: 8, TTL: 0, EvictionPercentage: 10}, "TTL"},
		{"eviction out of range", ReadThroughConfig{Capacity: 100, NumShards: 8, TTL: time.Hour, EvictionPercentage: 101}, "EvictionPercentage"},
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

func TestSturdycReadThrough_CachesFetches(t *testing.T) {
	rt, err := NewSturdycReadThrough(DefaultReadThroughConfig())
	if err != nil {
		t.Fatalf("failed to create read-through cache: %v", err)
	}

	ctx := context.Background()
	var fetches int32

	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&fetches, 1)
		return "post-body", nil
	}

	for i := 0; i < 3; i++ {
		value, err := rt.GetOrFetch(ctx, "posts:detail:1", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
		if value != "post-body" {
			t.Errorf("expected 'post-body', got %v", value)
		}
	}

	if got := atomic.LoadInt32(&fetches); got != 1 {
		t.Errorf("expected a single source fetch, got %d", got)
	}
}

func TestSturdycReadThrough_ForgetForcesRefetch(t *testing.T) {
	rt, err := NewSturdycReadThrough(DefaultReadThroughConfig())
	if err != nil {
		t.Fatalf("failed to create read-through cache: %v", err)
	}

	ctx := context.Background()
	var fetches int32

	fetch := func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&fetches, 1), nil
	}

	if _, err := rt.GetOrFetch(ctx, "posts:detail:1", fetch); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	if err := rt.Forget(ctx, "posts:detail:1"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}

	if _, err := rt.GetOrFetch(ctx, "posts:detail:1", fetch); err != nil {
		t.Fatalf("GetOrFetch after Forget failed: %v", err)
	}

	if got := atomic.LoadInt32(&fetches); got != 2 {
		t.Errorf("expected refetch after Forget, fetch count %d", got)
	}
}
