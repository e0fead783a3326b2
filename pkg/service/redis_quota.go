package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// consumeQuotaScript is the single check-and-increment of a daily scan counter.
// The counter is created at 0 on first touch. A negative max never denies.
// ARGV: max_scans, ttl_ms, reset_at_ms. Returns {allowed, scan_count}.
var consumeQuotaScript = redis.NewScript(`
redis.call('HSETNX', KEYS[1], 'scan_count', 0)
redis.call('HSET', KEYS[1], 'max_scans', ARGV[1], 'reset_at', ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[2])

local max = tonumber(ARGV[1])
local count = tonumber(redis.call('HGET', KEYS[1], 'scan_count'))
if max >= 0 and count >= max then
  return {0, count}
end

count = redis.call('HINCRBY', KEYS[1], 'scan_count', 1)
return {1, count}
`)

func (r *RedisStore) quotaKey(userID, dayKey string) string {
	return r.makeKey("quota", userID) + ":" + dayKey
}

func (r *RedisStore) ConsumeQuota(ctx context.Context, w QuotaWindow) (QuotaConsumption, error) {
	ttl := w.TTL.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	res, err := consumeQuotaScript.Run(ctx, r.client,
		[]string{r.quotaKey(w.UserID, w.DayKey)},
		w.MaxScans, ttl, w.ResetAt.UnixMilli(),
	).Slice()
	if err != nil {
		return QuotaConsumption{}, fmt.Errorf("failed to consume quota: %w", err)
	}
	if len(res) != 2 {
		return QuotaConsumption{}, fmt.Errorf("unexpected quota script reply: %v", res)
	}
	allowed, ok1 := res[0].(int64)
	count, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return QuotaConsumption{}, fmt.Errorf("unexpected quota script reply: %v", res)
	}

	return QuotaConsumption{
		Allowed:   allowed == 1,
		ScanCount: int(count),
	}, nil
}

func (r *RedisStore) GetQuotaCount(ctx context.Context, userID, dayKey string) (int, error) {
	val, err := r.client.HGet(ctx, r.quotaKey(userID, dayKey), "scan_count").Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get quota count: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid quota count %q: %w", val, err)
	}
	return count, nil
}
