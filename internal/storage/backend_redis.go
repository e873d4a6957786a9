// Copyright (c) 2026 RootLink. All rights reserved.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RuzhenWong/rootlink/internal/platform/constants"
)

// RedisBackend stores session keys in Redis without expiry.
//
// Keys are prefixed with [constants.RedisPrefixSession] and a namespace, so
// several consoles (or several API origins) can share one Redis.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend creates a Redis-backed [Backend] scoped to namespace.
func NewRedisBackend(client *redis.Client, namespace string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: constants.RedisPrefixSession + namespace + ":",
	}
}

// Get implements [Backend].
func (backend *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := backend.client.Get(ctx, backend.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return value, true, nil
}

// Set implements [Backend].
func (backend *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := backend.client.Set(ctx, backend.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// Delete implements [Backend].
func (backend *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = backend.prefix + key
	}

	if err := backend.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
