package builtin

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

const (
	// UpdateStatActionID is the identifier for the user statistic action
	UpdateStatActionID = "update_stat"
)

// UpdateStatAction increments a user statistic when an achievement unlocks.
// Parameters: stat_code (required), value (default 1). With use_xp_bonus the
// increment is the trigger's XP bonus instead.
type UpdateStatAction struct {
	config     action.ActionConfig
	updater    service.StatUpdater
	statCode   string
	value      float64
	useXPBonus bool
}

// NewUpdateStatAction creates a new update stat action.
func NewUpdateStatAction(config action.ActionConfig, updater service.StatUpdater) (*UpdateStatAction, error) {
	statCode := config.Parameters.String("stat_code", "")
	if statCode == "" {
		return nil, fmt.Errorf("%w: stat_code parameter not configured", action.ErrInvalidConfig)
	}

	return &UpdateStatAction{
		config:     config,
		updater:    updater,
		statCode:   statCode,
		value:      config.Parameters.Float("value", 1),
		useXPBonus: config.Parameters.Bool("use_xp_bonus", false),
	}, nil
}

func (a *UpdateStatAction) ID() string {
	return a.config.ID
}

func (a *UpdateStatAction) Name() string {
	return "Update Statistic"
}

func (a *UpdateStatAction) Config() action.ActionConfig {
	return a.config
}

// Execute increments the configured statistic.
func (a *UpdateStatAction) Execute(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	inc := a.value
	if a.useXPBonus {
		inc = float64(trigger.XPBonus)
	}
	if inc == 0 {
		return nil
	}

	if a.updater == nil {
		logrus.Warnf("[TEST MODE] would increment stat %s by %v for user %s", a.statCode, inc, trigger.UserID)
		return nil
	}

	if err := a.updater.IncrementStat(ctx, trigger.UserID, a.statCode, inc); err != nil {
		return fmt.Errorf("failed to update stat %s: %w", a.statCode, err)
	}

	logrus.Debugf("incremented stat %s by %v for user %s", a.statCode, inc, trigger.UserID)
	return nil
}

// Rollback decrements the statistic by the same amount.
func (a *UpdateStatAction) Rollback(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	if a.updater == nil {
		return nil
	}

	inc := a.value
	if a.useXPBonus {
		inc = float64(trigger.XPBonus)
	}
	if inc == 0 {
		return nil
	}
	return a.updater.IncrementStat(ctx, trigger.UserID, a.statCode, -inc)
}
