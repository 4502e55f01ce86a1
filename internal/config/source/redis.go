package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/julienandreu/switchboard/internal/config"
)

// RedisSource stores the config JSON blob under a single key built from
// namespace.
type RedisSource struct {
	client    *redis.Client
	namespace string
}

// NewRedisSource wraps an already-configured *redis.Client.
func NewRedisSource(client *redis.Client, namespace string) *RedisSource {
	return &RedisSource{client: client, namespace: namespace}
}

func (s *RedisSource) key() string { return "switchboard:config:" + s.namespace }

func (s *RedisSource) Name() string { return "redis" }

func (s *RedisSource) fetch(ctx context.Context) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, config.NewSourceError(config.ErrKindNotFound, "redis", fmt.Errorf("key %q not found", s.key()))
	}
	if err != nil {
		return nil, config.NewSourceError(config.ErrKindIO, "redis", err)
	}
	return raw, nil
}

func (s *RedisSource) Load(ctx context.Context) (*config.Config, config.Version, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return nil, config.Version{}, err
	}
	return ParseValidateHash(raw, "redis")
}

func (s *RedisSource) HasChanged(ctx context.Context, current config.Version) (bool, error) {
	raw, err := s.fetch(ctx)
	if err != nil {
		return false, err
	}
	return !config.HashPayload(raw).Equal(current), nil
}
