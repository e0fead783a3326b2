package rule

import (
	"context"
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// Rule evaluates signals and emits triggers when an achievement is earned.
// Rules are registered in a Registry and evaluated by the Engine.
type Rule interface {
	// ID returns unique rule identifier.
	ID() string

	// Name returns human-readable rule name.
	Name() string

	// SignalTypes returns which signal types this rule handles.
	// An empty slice means the rule handles all signal types.
	SignalTypes() []string

	// Evaluate returns one trigger per achievement the player currently
	// qualifies for. It must be pure over the signal's PlayerContext.
	// Returns error only for unexpected failures, not rule mismatches.
	Evaluate(ctx context.Context, sig signal.Signal) ([]*Trigger, error)

	// Config returns the rule's configuration.
	Config() RuleConfig
}

// Trigger represents an achievement a player qualifies for.
type Trigger struct {
	RuleID        string                 // ID of the rule that triggered
	UserID        string                 // Player who triggered the rule
	AchievementID string                 // Unlock row id, unique per user
	XPBonus       int64                  // XP awarded once on unlock
	Timestamp     time.Time              // When the trigger occurred
	Reason        string                 // Human-readable reason for the trigger
	Metadata      map[string]interface{} // Rule-specific data for actions
	Priority      int                    // Priority for action ordering (higher = first)
}

// NewTrigger creates a new trigger with the given parameters.
func NewTrigger(ruleID, userID, achievementID, reason string, priority int) *Trigger {
	return &Trigger{
		RuleID:        ruleID,
		UserID:        userID,
		AchievementID: achievementID,
		Timestamp:     time.Now(),
		Reason:        reason,
		Metadata:      make(map[string]interface{}),
		Priority:      priority,
	}
}

// WithMetadata adds metadata to the trigger and returns it for chaining.
func (t *Trigger) WithMetadata(key string, value interface{}) *Trigger {
	t.Metadata[key] = value
	return t
}

// WithXPBonus sets the unlock bonus and returns the trigger for chaining.
func (t *Trigger) WithXPBonus(xp int64) *Trigger {
	t.XPBonus = xp
	return t
}
