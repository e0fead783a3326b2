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
	// GrantItemActionID is the identifier for item grant action
	GrantItemActionID = "grant_item"
)

// GrantItemAction grants an item or entitlement to a player when an
// achievement unlocks. Parameters: item_id (required), quantity (default 1).
type GrantItemAction struct {
	config   action.ActionConfig
	granter  service.EntitlementGranter
	itemID   string
	quantity int
}

// NewGrantItemAction creates a new grant item action.
func NewGrantItemAction(config action.ActionConfig, granter service.EntitlementGranter) (*GrantItemAction, error) {
	itemID := config.Parameters.String("item_id", "")
	if itemID == "" {
		return nil, fmt.Errorf("%w: item_id parameter not configured", action.ErrInvalidConfig)
	}

	quantity := config.Parameters.Int("quantity", 1)
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", action.ErrInvalidConfig, quantity)
	}

	logrus.Infof("creating grant item action: itemID=%s, quantity=%d", itemID, quantity)

	return &GrantItemAction{
		config:   config,
		granter:  granter,
		itemID:   itemID,
		quantity: quantity,
	}, nil
}

// ID returns the action identifier.
func (a *GrantItemAction) ID() string {
	return a.config.ID
}

// Name returns the action name.
func (a *GrantItemAction) Name() string {
	return "Grant Item"
}

// Config returns the action configuration.
func (a *GrantItemAction) Config() action.ActionConfig {
	return a.config
}

// Execute grants the configured item to the player.
func (a *GrantItemAction) Execute(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	if a.granter == nil {
		logrus.Warnf("[TEST MODE] would grant item %s (quantity: %d) to user %s for %s",
			a.itemID, a.quantity, trigger.UserID, trigger.AchievementID)
		return nil
	}

	logrus.Infof("granting item %s (quantity: %d) to user %s for %s",
		a.itemID, a.quantity, trigger.UserID, trigger.AchievementID)

	if err := a.granter.GrantEntitlement(ctx, trigger.UserID, a.itemID, a.quantity); err != nil {
		return fmt.Errorf("failed to grant item: %w", err)
	}

	logrus.Infof("successfully granted item %s to user %s", a.itemID, trigger.UserID)
	return nil
}

// Rollback is not supported for item grants (items cannot be taken back).
func (a *GrantItemAction) Rollback(ctx context.Context, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	return action.ErrRollbackNotSupported
}
