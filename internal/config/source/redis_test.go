package source

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const redisConfigJSON = `{
  "defaults": {"timeout_ms": 1000},
  "routes": [
    {"path": "/a", "methods": ["GET"], "targets": [{"url": "http://localhost:9000/a", "primary": true}]}
  ]
}`

func setupRedisSource(t *testing.T) (*RedisSource, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSource(client, "tenant-a"), mr, client
}

func TestRedisSource_NotFound(t *testing.T) {
	s, _, _ := setupRedisSource(t)
	_, _, err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestRedisSource_LoadAndHasChanged(t *testing.T) {
	s, mr, _ := setupRedisSource(t)
	if err := mr.Set(s.key(), redisConfigJSON); err != nil {
		t.Fatal(err)
	}

	cfg, v1, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Routes[0].Path != "/a" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	changed, err := s.HasChanged(context.Background(), v1)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("expected no change")
	}

	if err := mr.Set(s.key(), redisConfigJSON+" "); err != nil {
		t.Fatal(err)
	}
	changed, err = s.HasChanged(context.Background(), v1)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected change after payload edit")
	}
}
