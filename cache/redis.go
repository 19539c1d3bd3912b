// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend shares the cache across server instances. Optional,
// enabled by REDIS_URL.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(ctx context.Context, addr string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %v", err)
	}

	c := redis.NewClient(opts)

	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %v", err)
	}

	return &RedisBackend{client: c}, nil
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("error reading from redis: %v", err)
	}
	return value, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	// TTL accounting lives in the record timestamps, not in redis
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("error writing to redis: %v", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting from redis: %v", err)
	}
	return nil
}

func (r *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("error deleting from redis: %v", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning redis keys: %v", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("error closing redis client: %v", err)
	}
	return nil
}
