package rule

import (
	"testing"

	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

func typedRule(id string, kind Kind, enabled bool, signalTypes ...string) *testRule {
	return &testRule{
		id:          id,
		name:        id,
		signalTypes: signalTypes,
		config:      RuleConfig{ID: id, Type: string(kind), Enabled: enabled},
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(typedRule("streak_3", KindStreak, true)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(typedRule("streak_3", KindStreak, true)); err == nil {
		t.Error("expected duplicate id to be rejected")
	}
	if err := registry.Register(nil); err == nil {
		t.Error("expected nil rule to be rejected")
	}
	if registry.Count() != 1 {
		t.Errorf("Count() = %d, want 1", registry.Count())
	}

	if registry.Get("streak_3") == nil {
		t.Error("expected to find streak_3")
	}
	if registry.Get("streak_7") != nil {
		t.Error("expected nil for unknown rule")
	}
}

func TestRegistry_ForSignal(t *testing.T) {
	registry := NewRegistry()
	for _, r := range []*testRule{
		typedRule("first_checkin", KindCount, true, signal.TypeEventRecorded, signal.TypeRecompute),
		typedRule("goal", KindGoalMilestone, true, signal.TypeGoalProgress),
		typedRule("xp_1000", KindXP, true),
		typedRule("streak_30", KindStreak, false, signal.TypeEventRecorded),
	} {
		if err := registry.Register(r); err != nil {
			t.Fatalf("Register(%s) error = %v", r.id, err)
		}
	}

	tests := []struct {
		signalType string
		want       []string
	}{
		{signal.TypeEventRecorded, []string{"first_checkin", "xp_1000"}},
		{signal.TypeGoalProgress, []string{"goal", "xp_1000"}},
		{"unknown", []string{"xp_1000"}},
	}

	for _, tt := range tests {
		t.Run(tt.signalType, func(t *testing.T) {
			got := registry.ForSignal(tt.signalType)
			if len(got) != len(tt.want) {
				t.Fatalf("ForSignal(%s) returned %d rules, want %d", tt.signalType, len(got), len(tt.want))
			}
			for i, r := range got {
				if r.ID() != tt.want[i] {
					t.Errorf("rule[%d] = %s, want %s", i, r.ID(), tt.want[i])
				}
			}
		})
	}
}

func TestRegistry_CountByType(t *testing.T) {
	registry := NewRegistry()
	registry.Register(typedRule("streak_3", KindStreak, true))
	registry.Register(typedRule("streak_7", KindStreak, false))
	registry.Register(typedRule("perfect_day", KindPerfectDay, true))

	counts := registry.CountByType()
	if counts[string(KindStreak)] != 2 || counts[string(KindPerfectDay)] != 1 {
		t.Errorf("CountByType() = %v", counts)
	}
}

func TestParams(t *testing.T) {
	params := Params{
		"days":       7,
		"yaml_float": float64(3),
		"ratio":      0.5,
		"category":   "checkin",
		"enabled":    true,
		"tags":       []interface{}{"a", 1, "b"},
	}

	if got := params.Int("days", 0); got != 7 {
		t.Errorf("Int(days) = %d, want 7", got)
	}
	if got := params.Int("yaml_float", 0); got != 3 {
		t.Errorf("Int(yaml_float) = %d, want 3", got)
	}
	if got := params.Int("missing", 99); got != 99 {
		t.Errorf("Int(missing) = %d, want default", got)
	}
	if !params.Whole("days") || !params.Whole("yaml_float") || !params.Whole("missing") {
		t.Error("Whole() should accept ints, integral floats and unset keys")
	}
	if params.Whole("ratio") {
		t.Error("Whole(ratio) = true for 0.5")
	}
	if got := params.Float("ratio", 0); got != 0.5 {
		t.Errorf("Float(ratio) = %v, want 0.5", got)
	}
	if got := params.Float("days", 0); got != 7 {
		t.Errorf("Float(days) = %v, want 7", got)
	}
	if got := params.String("category", ""); got != "checkin" {
		t.Errorf("String(category) = %q", got)
	}
	if got := params.String("days", "def"); got != "def" {
		t.Errorf("String on a non-string should fall back, got %q", got)
	}
	if !params.Bool("enabled", false) {
		t.Error("Bool(enabled) = false")
	}
	if got := params.Strings("tags", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Strings(tags) = %v", got)
	}

	var empty Params
	if got := empty.Int("days", 1); got != 1 {
		t.Errorf("nil params should return default, got %d", got)
	}
}
