package rule

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// Engine evaluates signals against registered rules and returns triggers.
// It never writes; the caller persists unlocks from the returned triggers.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new rule evaluation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry: registry,
	}
}

// Evaluate evaluates a signal against all matching rules.
// Returns triggers for achievements that are met and not yet unlocked,
// ordered by priority (higher first) then achievement id.
func (e *Engine) Evaluate(ctx context.Context, sig signal.Signal) ([]*Trigger, error) {
	if sig == nil {
		return nil, nil
	}

	// Get rules that handle this signal type
	rules := e.registry.ForSignal(sig.Type())
	if len(rules) == 0 {
		logrus.Debugf("no rules found for signal type '%s'", sig.Type())
		return nil, nil
	}

	logrus.Debugf("evaluating signal type '%s' against %d rules", sig.Type(), len(rules))

	pc := sig.Context()
	seen := make(map[string]bool)
	var triggers []*Trigger

	// Evaluate each rule
	for _, rule := range rules {
		candidates, err := rule.Evaluate(ctx, sig)
		if err != nil {
			logrus.Errorf("rule %s evaluation failed: %v", rule.ID(), err)
			// Continue evaluating other rules even if one fails
			continue
		}

		for _, trigger := range candidates {
			if trigger == nil || seen[trigger.AchievementID] {
				continue
			}
			if pc != nil && pc.HasUnlocked(trigger.AchievementID) {
				continue
			}
			seen[trigger.AchievementID] = true

			logrus.Infof("rule %s triggered for user %s: %s", rule.ID(), sig.UserID(), trigger.Reason)
			triggers = append(triggers, trigger)
		}
	}

	sort.Slice(triggers, func(i, j int) bool {
		if triggers[i].Priority != triggers[j].Priority {
			return triggers[i].Priority > triggers[j].Priority
		}
		return triggers[i].AchievementID < triggers[j].AchievementID
	})

	return triggers, nil
}

// GetRegistry returns the rule registry used by this engine.
func (e *Engine) GetRegistry() *Registry {
	return e.registry
}
