package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore は同じ Redis を使うすべてのプロセスで共有される Store です。
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore は prefix で名前空間を分けた RedisStore を作成します。
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "token"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return fmt.Sprintf("%s:%s", s.prefix, k)
}

// Get は key のトークンを返します。キーが存在しない場合もエラーにはなりません。
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get token: %w", err)
	}
	return token, true, nil
}

// Set は ttl 付きで key にトークンを保存します。
func (s *RedisStore) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(key), token, ttl).Err(); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}
