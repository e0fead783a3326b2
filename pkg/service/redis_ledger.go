package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// saveLedgerScript writes the ledger hash unless the stored copy was derived
// from more events. total_xp and longest_streak keep the larger value.
// ARGV: total_xp, current_streak, longest_streak, last_active_day_key, events_applied
var saveLedgerScript = redis.NewScript(`
local applied = tonumber(ARGV[5])
local stored = redis.call('HGET', KEYS[1], 'events_applied')
if stored and tonumber(stored) > applied then
  return 0
end

local total = ARGV[1]
local oldTotal = redis.call('HGET', KEYS[1], 'total_xp')
if oldTotal and tonumber(oldTotal) > tonumber(total) then
  total = oldTotal
end

local longest = ARGV[3]
local oldLongest = redis.call('HGET', KEYS[1], 'longest_streak')
if oldLongest and tonumber(oldLongest) > tonumber(longest) then
  longest = oldLongest
end

redis.call('HSET', KEYS[1],
  'total_xp', total,
  'current_streak', ARGV[2],
  'longest_streak', longest,
  'last_active_day_key', ARGV[4],
  'events_applied', ARGV[5])
return 1
`)

func (r *RedisStore) GetLedger(ctx context.Context, userID string) (progression.Ledger, error) {
	data, err := r.client.HGetAll(ctx, r.makeKey("ledger", userID)).Result()
	if err != nil {
		return progression.Ledger{}, fmt.Errorf("failed to get ledger: %w", err)
	}

	var ledger progression.Ledger
	ledger.TotalXP, _ = strconv.ParseInt(data["total_xp"], 10, 64)
	ledger.Current, _ = strconv.Atoi(data["current_streak"])
	ledger.Longest, _ = strconv.Atoi(data["longest_streak"])
	ledger.LastActiveDayKey = data["last_active_day_key"]
	ledger.EventsApplied, _ = strconv.ParseInt(data["events_applied"], 10, 64)

	return ledger, nil
}

func (r *RedisStore) SaveLedger(ctx context.Context, userID string, ledger progression.Ledger) (bool, error) {
	key := r.makeKey("ledger", userID)

	res, err := saveLedgerScript.Run(ctx, r.client, []string{key},
		strconv.FormatInt(ledger.TotalXP, 10),
		strconv.Itoa(ledger.Current),
		strconv.Itoa(ledger.Longest),
		ledger.LastActiveDayKey,
		strconv.FormatInt(ledger.EventsApplied, 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to save ledger: %w", err)
	}
	return res == 1, nil
}

func (r *RedisStore) UpsertDailyStats(ctx context.Context, userID string, stats progression.DailyStats) error {
	key := r.makeKey("daily", userID)

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal daily stats: %w", err)
	}

	if err := r.client.HSet(ctx, key, stats.DayKey, data).Err(); err != nil {
		return fmt.Errorf("failed to set daily stats for %s: %w", stats.DayKey, err)
	}

	r.touch(ctx, key)
	return nil
}

func (r *RedisStore) GetDailyStats(ctx context.Context, userID, dayKey string) (progression.DailyStats, bool, error) {
	data, err := r.client.HGet(ctx, r.makeKey("daily", userID), dayKey).Result()
	if err == redis.Nil {
		return progression.DailyStats{DayKey: dayKey}, false, nil
	}
	if err != nil {
		return progression.DailyStats{}, false, fmt.Errorf("failed to get daily stats: %w", err)
	}

	var stats progression.DailyStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return progression.DailyStats{}, false, fmt.Errorf("failed to unmarshal daily stats: %w", err)
	}
	return stats, true, nil
}
