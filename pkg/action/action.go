package action

import (
	"context"

	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// Action delivers a reward for an unlocked achievement.
// The unlock row is already written when an action runs, so a failing
// action never takes the unlock or its XP back.
type Action interface {
	ID() string
	Name() string

	// Execute delivers the reward. playerCtx is the state the achievement was earned in.
	Execute(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error

	// Rollback undoes Execute when a later action of the same unlock fails.
	// Return ErrRollbackNotSupported when the reward cannot be revoked.
	Rollback(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error

	Config() ActionConfig
}

// Outcome is how a single action run ended. Used as a metrics label.
type Outcome string

const (
	OutcomeDelivered  Outcome = "delivered"
	OutcomeFailed     Outcome = "failed"
	OutcomeDispatched Outcome = "dispatched"
)

// ActionResult reports one action run for one unlocked achievement.
type ActionResult struct {
	ActionID      string
	AchievementID string
	Outcome       Outcome
	Error         error
}

func delivered(actionID string, trigger *rule.Trigger) *ActionResult {
	return &ActionResult{ActionID: actionID, AchievementID: trigger.AchievementID, Outcome: OutcomeDelivered}
}

func dispatched(actionID string, trigger *rule.Trigger) *ActionResult {
	return &ActionResult{ActionID: actionID, AchievementID: trigger.AchievementID, Outcome: OutcomeDispatched}
}

func failed(actionID string, trigger *rule.Trigger, err error) *ActionResult {
	return &ActionResult{ActionID: actionID, AchievementID: trigger.AchievementID, Outcome: OutcomeFailed, Error: err}
}
