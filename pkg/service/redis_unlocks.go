package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Unlock rows live in a hash keyed by achievement id; HSETNX makes them write-once.
// Delivery is tracked in a separate set so flipping it is one SADD.

func (r *RedisStore) InsertUnlock(ctx context.Context, u Unlock) (bool, error) {
	key := r.makeKey("unlocks", u.UserID)

	u.Delivered = false
	data, err := json.Marshal(u)
	if err != nil {
		return false, fmt.Errorf("failed to marshal unlock: %w", err)
	}

	inserted, err := r.client.HSetNX(ctx, key, u.AchievementID, data).Result()
	if err != nil {
		return false, fmt.Errorf("failed to insert unlock %s: %w", u.AchievementID, err)
	}
	return inserted, nil
}

func (r *RedisStore) ListUnlocks(ctx context.Context, userID string) ([]Unlock, error) {
	rows, err := r.client.HGetAll(ctx, r.makeKey("unlocks", userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	delivered, err := r.client.SMembers(ctx, r.makeKey("unlocks_delivered", userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered unlocks: %w", err)
	}
	deliveredSet := make(map[string]bool, len(delivered))
	for _, id := range delivered {
		deliveredSet[id] = true
	}

	unlocks := make([]Unlock, 0, len(rows))
	for id, data := range rows {
		var u Unlock
		if err := json.Unmarshal([]byte(data), &u); err != nil {
			logrus.Errorf("skipping unreadable unlock %s for user %s: %v", id, userID, err)
			continue
		}
		u.Delivered = deliveredSet[id]
		unlocks = append(unlocks, u)
	}

	sortUnlocks(unlocks)
	return unlocks, nil
}

func (r *RedisStore) MarkDelivered(ctx context.Context, userID, achievementID string) (bool, error) {
	key := r.makeKey("unlocks_delivered", userID)

	added, err := r.client.SAdd(ctx, key, achievementID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s delivered: %w", achievementID, err)
	}
	return added == 1, nil
}

// sortUnlocks orders unlocks oldest first, then by id.
func sortUnlocks(unlocks []Unlock) {
	sort.Slice(unlocks, func(i, j int) bool {
		if !unlocks[i].UnlockedAt.Equal(unlocks[j].UnlockedAt) {
			return unlocks[i].UnlockedAt.Before(unlocks[j].UnlockedAt)
		}
		return unlocks[i].AchievementID < unlocks[j].AchievementID
	})
}
