package rule_test

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

func newContext() *signal.PlayerContext {
	return &signal.PlayerContext{
		UserID:   "player-1",
		DayKey:   "2024-03-05",
		Lifetime: make(map[progression.Category]int),
		Goals:    make(map[string]int),
		Unlocked: make(map[string]bool),
	}
}

func evaluate(t *testing.T, config rule.RuleConfig, pc *signal.PlayerContext) []*rule.Trigger {
	t.Helper()

	config.Enabled = true
	r, err := rule.Build(config, progression.DefaultTables())
	if err != nil {
		t.Fatalf("failed to create rule: %v", err)
	}

	sig := signal.NewBaseSignal(signal.TypeRecompute, pc.UserID, time.Now(), nil, pc)
	triggers, err := r.Evaluate(context.Background(), sig)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return triggers
}

func TestAchievementRule_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		config  rule.RuleConfig
		setup   func(pc *signal.PlayerContext)
		matches bool
	}{
		{
			name:   "streak uses longest",
			config: rule.RuleConfig{ID: "streak_3", Type: "streak", Parameters: map[string]interface{}{"days": 3}},
			setup: func(pc *signal.PlayerContext) {
				pc.Ledger.Current = 1
				pc.Ledger.Longest = 3
			},
			matches: true,
		},
		{
			name:   "streak below",
			config: rule.RuleConfig{ID: "streak_3", Type: "streak", Parameters: map[string]interface{}{"days": 3}},
			setup: func(pc *signal.PlayerContext) {
				pc.Ledger.Longest = 2
			},
		},
		{
			name:   "xp reached",
			config: rule.RuleConfig{ID: "xp_100", Type: "xp", Parameters: map[string]interface{}{"xp": 100}},
			setup: func(pc *signal.PlayerContext) {
				pc.Ledger.TotalXP = 100
			},
			matches: true,
		},
		{
			name:   "count by category",
			config: rule.RuleConfig{ID: "habits_2", Type: "count", Parameters: map[string]interface{}{"category": "habit", "count": 2}},
			setup: func(pc *signal.PlayerContext) {
				pc.Lifetime[progression.CategoryHabit] = 2
				pc.Lifetime[progression.CategoryAction] = 10
			},
			matches: true,
		},
		{
			name:   "count ignores other categories",
			config: rule.RuleConfig{ID: "habits_2", Type: "count", Parameters: map[string]interface{}{"category": "habit", "count": 2}},
			setup: func(pc *signal.PlayerContext) {
				pc.Lifetime[progression.CategoryAction] = 10
			},
		},
		{
			name:   "daily score",
			config: rule.RuleConfig{ID: "score_50", Type: "daily_score", Parameters: map[string]interface{}{"score": 50}},
			setup: func(pc *signal.PlayerContext) {
				pc.Today.DailyScore = 56
			},
			matches: true,
		},
		{
			name:   "perfect day",
			config: rule.RuleConfig{ID: "perfect_day", Type: "perfect_day"},
			setup: func(pc *signal.PlayerContext) {
				pc.Today.ComboCount = 3
			},
			matches: true,
		},
		{
			name:   "two categories is not perfect",
			config: rule.RuleConfig{ID: "perfect_day", Type: "perfect_day"},
			setup: func(pc *signal.PlayerContext) {
				pc.Today.ComboCount = 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := newContext()
			tt.setup(pc)

			tt.config.XPBonus = 20
			triggers := evaluate(t, tt.config, pc)

			if !tt.matches {
				if len(triggers) != 0 {
					t.Errorf("Expected no trigger, got %d", len(triggers))
				}
				return
			}

			if len(triggers) != 1 {
				t.Fatalf("Expected 1 trigger, got %d", len(triggers))
			}
			if triggers[0].AchievementID != tt.config.ID {
				t.Errorf("Expected achievement %s, got %s", tt.config.ID, triggers[0].AchievementID)
			}
			if triggers[0].XPBonus != 20 {
				t.Errorf("Expected XP bonus 20, got %d", triggers[0].XPBonus)
			}
		})
	}
}

func TestAchievementRule_GoalMilestoneFiresHighestOnly(t *testing.T) {
	pc := newContext()
	pc.Goals["g1"] = 80

	triggers := evaluate(t, rule.RuleConfig{ID: "goal", Type: "goal_milestone"}, pc)

	if len(triggers) != 1 {
		t.Fatalf("Expected 1 trigger, got %d", len(triggers))
	}
	if triggers[0].AchievementID != "goal:g1:75" {
		t.Errorf("Expected goal:g1:75, got %s", triggers[0].AchievementID)
	}
	if triggers[0].XPBonus != 75 {
		t.Errorf("Expected 75 XP, got %d", triggers[0].XPBonus)
	}
}

func TestAchievementRule_GoalMilestoneSkipsCovered(t *testing.T) {
	pc := newContext()
	pc.Goals["g1"] = 60
	pc.Unlocked[rule.MilestoneAchievementID("goal", "g1", 75)] = true

	triggers := evaluate(t, rule.RuleConfig{ID: "goal", Type: "goal_milestone"}, pc)

	if len(triggers) != 0 {
		t.Errorf("Expected no trigger once a higher milestone is unlocked, got %v", triggers[0].AchievementID)
	}
}

func TestAchievementRule_GoalMilestoneNextThreshold(t *testing.T) {
	pc := newContext()
	pc.Goals["g1"] = 100
	pc.Goals["g2"] = 10
	pc.Unlocked[rule.MilestoneAchievementID("goal", "g1", 75)] = true

	triggers := evaluate(t, rule.RuleConfig{ID: "goal", Type: "goal_milestone"}, pc)

	if len(triggers) != 1 {
		t.Fatalf("Expected 1 trigger, got %d", len(triggers))
	}
	if triggers[0].AchievementID != "goal:g1:100" {
		t.Errorf("Expected goal:g1:100, got %s", triggers[0].AchievementID)
	}
	if triggers[0].XPBonus != 150 {
		t.Errorf("Expected 150 XP, got %d", triggers[0].XPBonus)
	}
}

func TestAchievementRule_NoContext(t *testing.T) {
	r, err := rule.Build(rule.RuleConfig{ID: "xp", Type: "xp", Enabled: true, Parameters: map[string]interface{}{"xp": 1}}, nil)
	if err != nil {
		t.Fatalf("failed to create rule: %v", err)
	}

	sig := signal.NewBaseSignal(signal.TypeRecompute, "player-1", time.Now(), nil, nil)
	if _, err := r.Evaluate(context.Background(), sig); err == nil {
		t.Error("Expected error for signal without context")
	}
}
