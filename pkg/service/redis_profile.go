package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

func (r *RedisStore) SetTargets(ctx context.Context, userID, dayKey string, targets progression.Targets) error {
	key := r.makeKey("targets", userID)

	data, err := json.Marshal(targets)
	if err != nil {
		return fmt.Errorf("failed to marshal targets: %w", err)
	}
	if err := r.client.HSet(ctx, key, dayKey, data).Err(); err != nil {
		return fmt.Errorf("failed to set targets: %w", err)
	}

	r.touch(ctx, key)
	return nil
}

func (r *RedisStore) GetTargets(ctx context.Context, userID, dayKey string) (progression.Targets, bool, error) {
	data, err := r.client.HGet(ctx, r.makeKey("targets", userID), dayKey).Result()
	if err == redis.Nil {
		return progression.Targets{}, false, nil
	}
	if err != nil {
		return progression.Targets{}, false, fmt.Errorf("failed to get targets: %w", err)
	}

	var targets progression.Targets
	if err := json.Unmarshal([]byte(data), &targets); err != nil {
		return progression.Targets{}, false, fmt.Errorf("failed to unmarshal targets: %w", err)
	}
	return targets, true, nil
}

func (r *RedisStore) SetGoalProgress(ctx context.Context, userID, goalID string, percent int) error {
	key := r.makeKey("goals", userID)

	if err := r.client.HSet(ctx, key, goalID, percent).Err(); err != nil {
		return fmt.Errorf("failed to set goal progress: %w", err)
	}
	return nil
}

func (r *RedisStore) ListGoalProgress(ctx context.Context, userID string) (map[string]int, error) {
	data, err := r.client.HGetAll(ctx, r.makeKey("goals", userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list goal progress: %w", err)
	}

	goals := make(map[string]int, len(data))
	for goalID, val := range data {
		percent, err := strconv.Atoi(val)
		if err != nil {
			// Skip invalid entries
			continue
		}
		goals[goalID] = percent
	}
	return goals, nil
}

// Tiers share one hash; they are looked up on every quota call.

func (r *RedisStore) GetTier(ctx context.Context, userID string) (Tier, error) {
	val, err := r.client.HGet(ctx, r.cfg.KeyPrefix+"tiers", userID).Result()
	if err == redis.Nil {
		return TierFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get tier: %w", err)
	}
	return ParseTier(val)
}

func (r *RedisStore) SetTier(ctx context.Context, userID string, tier Tier) error {
	if err := r.client.HSet(ctx, r.cfg.KeyPrefix+"tiers", userID, string(tier)).Err(); err != nil {
		return fmt.Errorf("failed to set tier: %w", err)
	}
	return nil
}
