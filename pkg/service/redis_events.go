package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// appendEventScript adds an event to the per-user sorted set once per id.
// KEYS[1] event zset, KEYS[2] id hash; ARGV[1] id, ARGV[2] score, ARGV[3] payload
var appendEventScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[2], ARGV[1], 1) == 0 then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
return 1
`)

func (r *RedisStore) AppendEvent(ctx context.Context, ev progression.Event) (bool, error) {
	eventsKey := r.makeKey("events", ev.UserID)
	idsKey := r.makeKey("event_ids", ev.UserID)

	data, err := json.Marshal(ev)
	if err != nil {
		return false, fmt.Errorf("failed to marshal event: %w", err)
	}

	res, err := appendEventScript.Run(ctx, r.client,
		[]string{eventsKey, idsKey},
		ev.ID, ev.OccurredAt.UnixMilli(), string(data),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to append event %s: %w", ev.ID, err)
	}

	return res == 1, nil
}

func (r *RedisStore) ListEvents(ctx context.Context, userID string) ([]progression.Event, error) {
	members, err := r.client.ZRange(ctx, r.makeKey("events", userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]progression.Event, 0, len(members))
	for _, m := range members {
		var ev progression.Event
		if err := json.Unmarshal([]byte(m), &ev); err != nil {
			// one corrupt member must not hide the rest of the log
			logrus.Errorf("skipping unreadable event for user %s: %v", userID, err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *RedisStore) ListDayEvents(ctx context.Context, userID, dayKey string) ([]progression.Event, error) {
	all, err := r.ListEvents(ctx, userID)
	if err != nil {
		return nil, err
	}

	var day []progression.Event
	for _, ev := range all {
		if ev.DayKey == dayKey {
			day = append(day, ev)
		}
	}
	return day, nil
}
