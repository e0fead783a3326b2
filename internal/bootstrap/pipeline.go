// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/quota"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// InitPipeline creates and initializes the pipeline manager with rule-to-action mappings.
//
// ============================================================
// DEVELOPER: Configure rule-to-action mappings
// ============================================================
// The pipeline orchestrates the flow:
// Event → Signal → Rules → Unlocks → Actions
//
// Rule-to-action mappings are configured in config/engine.yaml:
//
// rules:
//   - id: streak_7
//     type: streak
//     actions: [grant-streak-badge]  # ← Actions to execute
//
// When a rule unlocks an achievement:
// 1. The unlock is written once with its XP bonus
// 2. The pipeline looks up the action IDs from the mapping
// 3. Executes each action; failures are logged, never returned
//
// To modify mappings, edit config/engine.yaml, not this file.
// ============================================================
func InitPipeline(
	store service.Store,
	processor *signal.Processor,
	ruleEngine *rule.Engine,
	actionExecutor *action.Executor,
	tracker *quota.Tracker,
	pipelineConfig *pipeline.Config,
) *pipeline.Manager {
	ruleActions := pipelineConfig.RuleActions()

	logrus.Infof("configured %d rule-to-action mappings", len(ruleActions))

	manager := pipeline.NewManager(store, processor, ruleEngine, actionExecutor, tracker, ruleActions)
	logrus.Infof("initialized pipeline manager")

	return manager
}
