package rule

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// testRule emits a fixed list of achievement ids.
type testRule struct {
	id           string
	name         string
	signalTypes  []string
	config       RuleConfig
	achievements []string
	shouldError  bool
}

func (r *testRule) ID() string            { return r.id }
func (r *testRule) Name() string          { return r.name }
func (r *testRule) SignalTypes() []string { return r.signalTypes }
func (r *testRule) Config() RuleConfig    { return r.config }

func (r *testRule) Evaluate(ctx context.Context, sig signal.Signal) ([]*Trigger, error) {
	if r.shouldError {
		return nil, &testError{msg: "test error"}
	}

	var triggers []*Trigger
	for _, id := range r.achievements {
		trigger := NewTrigger(r.id, sig.UserID(), id, "test trigger", r.config.Priority)
		trigger.Metadata["test"] = true
		triggers = append(triggers, trigger)
	}
	return triggers, nil
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func newTestRule(id string, priority int, achievements ...string) *testRule {
	return &testRule{
		id:           id,
		name:         id,
		config:       RuleConfig{ID: id, Enabled: true, Priority: priority},
		achievements: achievements,
	}
}

func newTestSignal(unlocked ...string) signal.Signal {
	pc := &signal.PlayerContext{
		UserID:   "player-1",
		Unlocked: make(map[string]bool),
	}
	for _, id := range unlocked {
		pc.Unlocked[id] = true
	}
	return signal.NewBaseSignal(signal.TypeEventRecorded, "player-1", time.Now(), nil, pc)
}

func TestNewEngine(t *testing.T) {
	registry := NewRegistry()
	engine := NewEngine(registry)

	if engine == nil {
		t.Fatal("Expected non-nil engine")
	}

	if engine.GetRegistry() != registry {
		t.Error("Expected engine to use provided registry")
	}
}

func TestEngine_Evaluate_NoRules(t *testing.T) {
	engine := NewEngine(NewRegistry())

	triggers, err := engine.Evaluate(context.Background(), newTestSignal())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 0 {
		t.Errorf("Expected 0 triggers, got %d", len(triggers))
	}
}

func TestEngine_Evaluate_NilSignal(t *testing.T) {
	engine := NewEngine(NewRegistry())

	triggers, err := engine.Evaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if triggers != nil {
		t.Errorf("Expected nil triggers, got %v", triggers)
	}
}

func TestEngine_Evaluate_SkipsUnlocked(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newTestRule("rule_a", 1, "first_step", "streak_3"))

	engine := NewEngine(registry)
	triggers, err := engine.Evaluate(context.Background(), newTestSignal("first_step"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(triggers) != 1 {
		t.Fatalf("Expected 1 trigger, got %d", len(triggers))
	}
	if triggers[0].AchievementID != "streak_3" {
		t.Errorf("Expected streak_3, got %s", triggers[0].AchievementID)
	}
}

func TestEngine_Evaluate_DeduplicatesAchievements(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newTestRule("rule_a", 1, "shared"))
	registry.Register(newTestRule("rule_b", 5, "shared"))

	engine := NewEngine(registry)
	triggers, err := engine.Evaluate(context.Background(), newTestSignal())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(triggers) != 1 {
		t.Fatalf("Expected 1 trigger, got %d", len(triggers))
	}
}

func TestEngine_Evaluate_OrdersByPriorityThenID(t *testing.T) {
	registry := NewRegistry()
	registry.Register(newTestRule("low", 1, "zeta", "alpha"))
	registry.Register(newTestRule("high", 10, "omega"))

	engine := NewEngine(registry)
	triggers, err := engine.Evaluate(context.Background(), newTestSignal())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"omega", "alpha", "zeta"}
	if len(triggers) != len(want) {
		t.Fatalf("Expected %d triggers, got %d", len(want), len(triggers))
	}
	for i, id := range want {
		if triggers[i].AchievementID != id {
			t.Errorf("trigger %d: expected %s, got %s", i, id, triggers[i].AchievementID)
		}
	}
}

func TestEngine_Evaluate_RuleError(t *testing.T) {
	registry := NewRegistry()
	broken := newTestRule("broken", 1)
	broken.shouldError = true
	registry.Register(broken)
	registry.Register(newTestRule("working", 1, "ok"))

	engine := NewEngine(registry)
	triggers, err := engine.Evaluate(context.Background(), newTestSignal())

	// Engine should continue evaluating other rules even if one fails
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 1 || triggers[0].AchievementID != "ok" {
		t.Errorf("Expected only the working rule's trigger, got %v", triggers)
	}
}

func TestEngine_Evaluate_SignalTypeFilter(t *testing.T) {
	registry := NewRegistry()
	goalOnly := newTestRule("goal_only", 1, "goal")
	goalOnly.signalTypes = []string{signal.TypeGoalProgress}
	registry.Register(goalOnly)

	engine := NewEngine(registry)
	triggers, err := engine.Evaluate(context.Background(), newTestSignal())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 0 {
		t.Errorf("Expected 0 triggers, got %d", len(triggers))
	}
}
