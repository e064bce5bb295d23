package whitelist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"crowdsale/pkg/domain"
)

// DefaultRedisKey is the set holding whitelisted addresses.
const DefaultRedisKey = "crowdsale:whitelist"

// RedisStore keeps the whitelist in a Redis set so several engine replicas
// share one view. Members are lowercase hex addresses.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey overrides the set key.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		if key != "" {
			s.key = key
		}
	}
}

func NewRedis(client redis.Cmdable, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, key: DefaultRedisKey}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Add issues a single SADD, which Redis applies atomically.
func (s *RedisStore) Add(ctx context.Context, addrs ...domain.Address) (int, error) {
	if len(addrs) == 0 {
		return 0, nil
	}
	members := make([]any, len(addrs))
	for i, addr := range addrs {
		members[i] = addr.Hex()
	}
	n, err := s.client.SAdd(ctx, s.key, members...).Result()
	if err != nil {
		return 0, fmt.Errorf("add to whitelist: %w", err)
	}
	return int(n), nil
}

func (s *RedisStore) Remove(ctx context.Context, addr domain.Address) error {
	if err := s.client.SRem(ctx, s.key, addr.Hex()).Err(); err != nil {
		return fmt.Errorf("remove from whitelist: %w", err)
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, addr domain.Address) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, addr.Hex()).Result()
	if err != nil {
		return false, fmt.Errorf("check whitelist: %w", err)
	}
	return ok, nil
}
