// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
)

// InitRuleEngine creates and initializes a rule engine with the achievements from the engine config.
//
// ============================================================
// DEVELOPER: Achievement rules are a closed set of kinds.
// ============================================================
// Rules evaluate the freshly derived player context and decide
// which achievements unlock. The kinds are:
// - streak         → longest streak reached `days`
// - xp             → total XP reached `xp`
// - count          → lifetime `count` events of `category`
// - daily_score    → today's score reached `score`
// - perfect_day    → all three combo categories done today
// - goal_milestone → goal progress crossed a milestone threshold
//
// Steps to add a new kind:
// 1. Add the Kind constant and its Evaluate branch in pkg/rule/achievement.go
// 2. Validate its parameters in NewAchievementRule
// 3. Add rule configuration to config/engine.yaml
// ============================================================
func InitRuleEngine(pipelineConfig *pipeline.Config, tables *progression.Tables) (*rule.Engine, *rule.Registry, error) {
	ruleConfigs := pipelineConfig.RuleConfigs()

	registry := rule.NewRegistry()
	if err := rule.RegisterRules(registry, ruleConfigs, tables); err != nil {
		return nil, nil, fmt.Errorf("failed to register rules: %w", err)
	}

	logrus.WithField("byType", registry.CountByType()).Infof("registered %d achievement rules", registry.Count())

	engine := rule.NewEngine(registry)
	logrus.Infof("initialized rule engine")

	return engine, registry, nil
}
