package rule_test

import (
	"strings"
	"testing"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
)

func TestBuild_AllKinds(t *testing.T) {
	tables := progression.DefaultTables()

	configs := []rule.RuleConfig{
		{ID: "streak_7", Type: "streak", Parameters: map[string]interface{}{"days": 7}},
		{ID: "xp_1000", Type: "xp", Parameters: map[string]interface{}{"xp": 1000}},
		{ID: "habits_50", Type: "count", Parameters: map[string]interface{}{"category": "habit", "count": 50}},
		{ID: "score_100", Type: "daily_score", Parameters: map[string]interface{}{"score": 100}},
		{ID: "perfect_day", Type: "perfect_day"},
		{ID: "goal", Type: "goal_milestone"},
	}

	for _, config := range configs {
		config.Enabled = true
		t.Run(config.ID, func(t *testing.T) {
			r, err := rule.Build(config, tables)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if r == nil {
				t.Fatal("Expected non-nil rule")
			}
			if r.ID() != config.ID {
				t.Errorf("Expected rule ID '%s', got '%s'", config.ID, r.ID())
			}
			if !rule.KnownKind(config.Type) {
				t.Errorf("Expected %s to be a known type", config.Type)
			}
		})
	}
}

func TestBuild_Disabled(t *testing.T) {
	config := rule.RuleConfig{
		ID:         "streak_3",
		Type:       "streak",
		Enabled:    false,
		Parameters: map[string]interface{}{"days": 3},
	}

	r, err := rule.Build(config, progression.DefaultTables())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r != nil {
		t.Error("Expected nil rule for disabled config")
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config rule.RuleConfig
	}{
		{"unknown type", rule.RuleConfig{ID: "x", Type: "leaderboard_rank"}},
		{"missing threshold", rule.RuleConfig{ID: "x", Type: "streak"}},
		{"negative xp", rule.RuleConfig{ID: "x", Type: "xp", Parameters: map[string]interface{}{"xp": -5}}},
		{"score above 100", rule.RuleConfig{ID: "x", Type: "daily_score", Parameters: map[string]interface{}{"score": 101}}},
		{"fractional days", rule.RuleConfig{ID: "x", Type: "streak", Parameters: map[string]interface{}{"days": 2.5}}},
		{"fractional xp", rule.RuleConfig{ID: "x", Type: "xp", Parameters: map[string]interface{}{"xp": 99.9}}},
		{"unknown category", rule.RuleConfig{ID: "x", Type: "count", Parameters: map[string]interface{}{"category": "naps", "count": 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Enabled = true
			if _, err := rule.Build(tt.config, progression.DefaultTables()); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestBuild_GoalMilestoneNeedsTables(t *testing.T) {
	config := rule.RuleConfig{ID: "goal", Type: "goal_milestone", Enabled: true}

	if _, err := rule.Build(config, nil); err == nil {
		t.Error("Expected error without tables")
	}
}

func TestBuildAll_WithErrors(t *testing.T) {
	configs := []rule.RuleConfig{
		{ID: "ok", Type: "xp", Enabled: true, Parameters: map[string]interface{}{"xp": 100}},
		{ID: "bad", Type: "unknown", Enabled: true},
		{ID: "off", Type: "xp", Enabled: false},
	}

	rules, err := rule.BuildAll(configs, progression.DefaultTables())

	if len(rules) != 1 {
		t.Errorf("Expected 1 rule, got %d", len(rules))
	}
	if err == nil || !strings.Contains(err.Error(), "rule bad") {
		t.Errorf("Expected error naming rule bad, got %v", err)
	}
}

func TestRegisterRules(t *testing.T) {
	registry := rule.NewRegistry()
	configs := []rule.RuleConfig{
		{ID: "streak_3", Type: "streak", Enabled: true, Parameters: map[string]interface{}{"days": 3}},
		{ID: "xp_100", Type: "xp", Enabled: true, Parameters: map[string]interface{}{"xp": 100}},
	}

	if err := rule.RegisterRules(registry, configs, progression.DefaultTables()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if registry.Count() != 2 {
		t.Errorf("Expected 2 registered rules, got %d", registry.Count())
	}
}

func TestRegisterRules_DuplicateID(t *testing.T) {
	registry := rule.NewRegistry()
	configs := []rule.RuleConfig{
		{ID: "dup", Type: "streak", Enabled: true, Parameters: map[string]interface{}{"days": 3}},
		{ID: "dup", Type: "xp", Enabled: true, Parameters: map[string]interface{}{"xp": 100}},
	}

	if err := rule.RegisterRules(registry, configs, progression.DefaultTables()); err == nil {
		t.Error("Expected error for duplicate rule ID")
	}
}

func TestRegisterRules_InvalidConfigFails(t *testing.T) {
	registry := rule.NewRegistry()
	configs := []rule.RuleConfig{
		{ID: "bad", Type: "streak", Enabled: true},
	}

	if err := rule.RegisterRules(registry, configs, progression.DefaultTables()); err == nil {
		t.Error("Expected error for invalid rule")
	}
	if registry.Count() != 0 {
		t.Errorf("Expected nothing registered, got %d", registry.Count())
	}
}
