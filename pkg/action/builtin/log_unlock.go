package builtin

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

const (
	// LogUnlockActionID is the identifier for the unlock notification action
	LogUnlockActionID = "log_unlock"
)

// LogUnlockAction writes a structured log entry for an unlock.
// It stands in for a player notification channel.
type LogUnlockAction struct {
	config action.ActionConfig
}

func NewLogUnlockAction(config action.ActionConfig) *LogUnlockAction {
	return &LogUnlockAction{
		config: config,
	}
}

func (a *LogUnlockAction) ID() string {
	return a.config.ID
}

func (a *LogUnlockAction) Name() string {
	return "Log Unlock"
}

func (a *LogUnlockAction) Config() action.ActionConfig {
	return a.config
}

func (a *LogUnlockAction) Execute(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	fields := logrus.Fields{
		"userID":        trigger.UserID,
		"achievementID": trigger.AchievementID,
		"ruleID":        trigger.RuleID,
		"xpBonus":       trigger.XPBonus,
	}
	if playerCtx != nil {
		fields["level"] = playerCtx.Level.Level
		fields["totalXP"] = playerCtx.Ledger.TotalXP
	}

	logrus.WithFields(fields).Infof("achievement unlocked: %s", trigger.Reason)
	return nil
}

func (a *LogUnlockAction) Rollback(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	return action.ErrRollbackNotSupported
}
