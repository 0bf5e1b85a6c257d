package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zlutov/notepad/cache"
)

type RedisNotepadCache struct {
	client redis.UniversalClient
}

func NewRedisNotepadCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisNotepadCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisNotepadCache{client: client}, nil
}

// Hash tags keep a user's keys on one node in cluster mode
func buildNoteListKey(userId string) string {
	return "notes:{" + userId + "}"
}

const cacheTTL = 10 * time.Minute

func (redisCache *RedisNotepadCache) GetNoteList(ctx context.Context, userId string) ([]byte, error) {
	data, err := redisCache.client.Get(ctx, buildNoteListKey(userId)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (redisCache *RedisNotepadCache) SetNoteList(ctx context.Context, userId string, data []byte) error {
	return redisCache.client.Set(ctx, buildNoteListKey(userId), data, cacheTTL).Err()
}

func (redisCache *RedisNotepadCache) InvalidateNoteList(ctx context.Context, userId string) error {
	return redisCache.client.Del(ctx, buildNoteListKey(userId)).Err()
}
