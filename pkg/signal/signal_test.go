package signal

import (
	"testing"
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

func TestBaseSignal(t *testing.T) {
	timestamp := time.Now()
	metadata := map[string]interface{}{
		"test_key": "test_value",
	}
	playerCtx := &PlayerContext{
		UserID:    "user123",
		Namespace: "test-namespace",
	}

	signal := NewBaseSignal("test_type", "user123", timestamp, metadata, playerCtx)

	if signal.Type() != "test_type" {
		t.Errorf("Expected type 'test_type', got '%s'", signal.Type())
	}

	if signal.UserID() != "user123" {
		t.Errorf("Expected userID 'user123', got '%s'", signal.UserID())
	}

	if !signal.Timestamp().Equal(timestamp) {
		t.Errorf("Expected timestamp %v, got %v", timestamp, signal.Timestamp())
	}

	if signal.Metadata()["test_key"] != "test_value" {
		t.Errorf("Expected metadata test_key='test_value', got '%v'", signal.Metadata()["test_key"])
	}

	if signal.Context() != playerCtx {
		t.Errorf("Expected context to match")
	}
}

func TestBaseSignal_NilMetadata(t *testing.T) {
	signal := NewBaseSignal("test", "user1", time.Now(), nil, nil)

	if signal.Metadata() == nil {
		t.Error("Expected non-nil metadata map")
	}
}

func TestEventRecordedSignal(t *testing.T) {
	ev := progression.Event{ID: "e1", UserID: "user123", Category: progression.CategoryHabit, DayKey: "2025-03-01"}

	signal := NewEventRecordedSignal(ev, 13, time.Now(), &PlayerContext{UserID: "user123"})

	if signal.Type() != TypeEventRecorded {
		t.Errorf("Expected type '%s', got '%s'", TypeEventRecorded, signal.Type())
	}
	if signal.UserID() != "user123" {
		t.Errorf("Expected userID 'user123', got '%s'", signal.UserID())
	}
	if signal.Metadata()["category"] != "habit" {
		t.Errorf("Expected category in metadata, got %v", signal.Metadata()["category"])
	}
	if signal.XP != 13 {
		t.Errorf("Expected XP 13, got %d", signal.XP)
	}
}

func TestGoalProgressSignal(t *testing.T) {
	signal := NewGoalProgressSignal("user123", "goal-1", 80, time.Now(), nil)

	if signal.Type() != TypeGoalProgress {
		t.Errorf("Expected type '%s', got '%s'", TypeGoalProgress, signal.Type())
	}
	if signal.GoalID != "goal-1" || signal.Percent != 80 {
		t.Errorf("Unexpected goal fields: %s %d", signal.GoalID, signal.Percent)
	}
	if signal.Metadata()["percent"] != 80 {
		t.Errorf("Expected percent in metadata")
	}
}

func TestBuildPlayerContext_AddsUnlockBonus(t *testing.T) {
	tables := progression.DefaultTables()
	d := &progression.Derivation{
		Ledger:   progression.Ledger{TotalXP: 90, EventsApplied: 8},
		Days:     map[string]progression.DailyStats{},
		Lifetime: map[progression.Category]int{},
		EventXP:  map[string]int64{},
	}
	unlocks := []service.Unlock{
		{AchievementID: "first_steps", XPBonus: 10},
		{AchievementID: "streak_3", XPBonus: 25},
	}

	pc := BuildPlayerContext("u1", "ns", "2025-03-01", tables, d, tables.DefaultTargets(), nil, unlocks)

	if pc.Ledger.TotalXP != 125 {
		t.Errorf("TotalXP = %d, expected 125", pc.Ledger.TotalXP)
	}
	if pc.UnlockBonusXP != 35 {
		t.Errorf("UnlockBonusXP = %d, expected 35", pc.UnlockBonusXP)
	}
	if pc.Level.Level != 2 {
		t.Errorf("Level = %d, expected 2", pc.Level.Level)
	}
	if !pc.HasUnlocked("streak_3") || pc.HasUnlocked("streak_7") {
		t.Errorf("Unlocked = %v", pc.Unlocked)
	}
	if pc.Goals == nil {
		t.Error("Goals must never be nil")
	}
	if pc.Today.ActionsTotal != 3 {
		t.Errorf("Today.ActionsTotal = %d, expected default 3", pc.Today.ActionsTotal)
	}
}
