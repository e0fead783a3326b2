// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// redisStoreDefaultKeyPrefix is the prefix for all progression keys
	redisStoreDefaultKeyPrefix = "progression:"
	// redisStoreDefaultTTL keeps per-day caches alive this long after the last write (400 days)
	redisStoreDefaultTTL = 400 * 24 * time.Hour
)

// RedisStore implements Store on Redis.
// Counters and write-once records rely on single commands or Lua scripts so
// every check-and-write is atomic on the server.
type RedisStore struct {
	client redis.UniversalClient
	cfg    RedisStoreConfig
}

type RedisStoreConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

func NewRedisStore(client redis.UniversalClient, cfg RedisStoreConfig) *RedisStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = redisStoreDefaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = redisStoreDefaultTTL
	}
	return &RedisStore{
		client: client,
		cfg:    cfg,
	}
}

// makeKey creates a Redis key for one kind of per-user record
func (r *RedisStore) makeKey(kind, userID string) string {
	return fmt.Sprintf("%s%s:%s", r.cfg.KeyPrefix, kind, userID)
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// touch refreshes the TTL of a per-day key (daily stats, targets).
// The event log, ledger, goals and unlocks are never given a TTL.
func (r *RedisStore) touch(ctx context.Context, key string) {
	r.client.Expire(ctx, key, r.cfg.TTL)
}

var _ Store = (*RedisStore)(nil)
