// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisStore(client, RedisStoreConfig{}), mr
}

func TestRedisStore_QuotaKeyExpires(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	w := QuotaWindow{
		UserID:   "test-user-123",
		DayKey:   "2025-03-01",
		MaxScans: 5,
		ResetAt:  time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
		TTL:      30 * time.Hour,
	}

	if _, err := store.ConsumeQuota(ctx, w); err != nil {
		t.Fatalf("ConsumeQuota() error = %v", err)
	}

	key := "progression:quota:test-user-123:2025-03-01"
	if !mr.Exists(key) {
		t.Fatalf("expected quota key %s to exist", key)
	}
	if ttl := mr.TTL(key); ttl != 30*time.Hour {
		t.Errorf("TTL = %v, expected %v", ttl, 30*time.Hour)
	}
	if got := mr.HGet(key, "max_scans"); got != "5" {
		t.Errorf("max_scans = %s, expected 5", got)
	}

	mr.FastForward(31 * time.Hour)

	count, err := store.GetQuotaCount(ctx, "test-user-123", "2025-03-01")
	if err != nil {
		t.Fatalf("GetQuotaCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("count after expiry = %d, expected 0", count)
	}
}

func TestRedisStore_LogAndUnlocksOutliveIdleUsers(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	at := time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)

	if _, err := store.AppendEvent(ctx, testEvent("u1", "e1", progression.CategoryAction, at, "2025-03-01")); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}
	if _, err := store.SaveLedger(ctx, "u1", progression.Ledger{TotalXP: 16, EventsApplied: 1}); err != nil {
		t.Fatalf("SaveLedger() error = %v", err)
	}
	if err := store.SetGoalProgress(ctx, "u1", "g1", 40); err != nil {
		t.Fatalf("SetGoalProgress() error = %v", err)
	}
	unlock := Unlock{UserID: "u1", AchievementID: "first_xp", XPBonus: 5, UnlockedAt: at}
	if _, err := store.InsertUnlock(ctx, unlock); err != nil {
		t.Fatalf("InsertUnlock() error = %v", err)
	}
	if _, err := store.MarkDelivered(ctx, "u1", "first_xp"); err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}
	if err := store.UpsertDailyStats(ctx, "u1", progression.DailyStats{DayKey: "2025-03-01"}); err != nil {
		t.Fatalf("UpsertDailyStats() error = %v", err)
	}

	mr.FastForward(2 * redisStoreDefaultTTL)

	events, err := store.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events after idle period = %d, expected 1", len(events))
	}

	ledger, err := store.GetLedger(ctx, "u1")
	if err != nil {
		t.Fatalf("GetLedger() error = %v", err)
	}
	if ledger.TotalXP != 16 {
		t.Errorf("TotalXP after idle period = %d, expected 16", ledger.TotalXP)
	}

	goals, err := store.ListGoalProgress(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGoalProgress() error = %v", err)
	}
	if goals["g1"] != 40 {
		t.Errorf("goal progress after idle period = %v, expected 40", goals)
	}

	inserted, err := store.InsertUnlock(ctx, unlock)
	if err != nil {
		t.Fatalf("InsertUnlock() error = %v", err)
	}
	if inserted {
		t.Error("unlock was written a second time after the idle period")
	}
	unlocks, err := store.ListUnlocks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUnlocks() error = %v", err)
	}
	if len(unlocks) != 1 || !unlocks[0].Delivered {
		t.Errorf("unlocks after idle period = %+v, expected one delivered", unlocks)
	}

	if mr.Exists("progression:daily:u1") {
		t.Error("daily stats cache should expire")
	}
}

func TestRedisStore_QuotaDeniedWhenExhausted(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	w := QuotaWindow{UserID: "test-user-456", DayKey: "2025-03-01", MaxScans: 0, TTL: time.Hour}

	res, err := store.ConsumeQuota(ctx, w)
	if err != nil {
		t.Fatalf("ConsumeQuota() error = %v", err)
	}
	if res.Allowed {
		t.Error("ConsumeQuota() allowed a scan with max 0")
	}
	if res.ScanCount != 0 {
		t.Errorf("ScanCount = %d, expected 0", res.ScanCount)
	}
}

func TestRedisStore_SkipsUnreadableEvents(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	at := time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC)

	if _, err := store.AppendEvent(ctx, testEvent("u1", "e1", progression.CategoryAction, at, "2025-03-01")); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}
	if _, err := mr.ZAdd("progression:events:u1", 1, "{not json"); err != nil {
		t.Fatalf("failed to seed corrupt member: %v", err)
	}

	events, err := store.ListEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].ID != "e1" {
		t.Errorf("ListEvents() = %+v, expected only e1", events)
	}
}

func TestRedisStore_StoreUnavailable(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	ctx := context.Background()
	if _, err := store.ConsumeQuota(ctx, QuotaWindow{UserID: "u1", DayKey: "2025-03-01", MaxScans: 5, TTL: time.Hour}); err == nil {
		t.Error("ConsumeQuota() expected error when redis is down")
	}
	if err := store.Ping(ctx); err == nil {
		t.Error("Ping() expected error when redis is down")
	}
	if NewHealthChecker(store).IsHealthy(ctx) {
		t.Error("IsHealthy() = true, expected false")
	}
}
