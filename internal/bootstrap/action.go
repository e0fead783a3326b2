// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	actionBuiltin "github.com/AccelByte/extend-progression-engine/pkg/action/builtin"
	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// InitActionExecutor creates and initializes an action executor with the reward actions from the engine config.
//
// ============================================================
// DEVELOPER: Register custom action types here.
// ============================================================
// Actions deliver rewards after an achievement unlocks.
//
// Steps to add a new action:
// 1. Create your action in pkg/action/builtin/
// 2. Implement the Action interface
// 3. Register the action type in pkg/action/builtin/init.go
// 4. Add action configuration to config/engine.yaml
// 5. Map it to rules in config/engine.yaml
//
// The builtin actions:
// - grant_item  → grants entitlements/items to players
// - update_stat → increments a player statistic
// - log_unlock  → logs the unlock
//
// IMPORTANT: Actions may need external service dependencies.
// Pass them through service.Dependencies; nil services run the
// action in test mode.
// ============================================================
func InitActionExecutor(
	pipelineConfig *pipeline.Config,
	deps *service.Dependencies,
) (*action.Executor, *action.Registry, error) {
	actionBuiltin.RegisterActions(deps)

	actionConfigs := pipelineConfig.ActionConfigs()

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, actionConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register actions: %w", err)
	}

	logrus.Infof("registered %d reward actions (%d async)", registry.Count(), registry.AsyncCount())

	executor := action.NewExecutor(registry)
	logrus.Infof("initialized action executor")

	return executor, registry, nil
}
