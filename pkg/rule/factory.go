package rule

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// Build creates the rule for one achievement entry.
// A disabled entry yields a nil rule and no error.
func Build(config RuleConfig, tables *progression.Tables) (Rule, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled rule: %s", config.ID)
		return nil, nil
	}

	logrus.Debugf("building rule: id=%s, type=%s, priority=%d", config.ID, config.Type, config.Priority)
	return NewAchievementRule(config, tables)
}

// KnownKind reports whether ruleType names a supported Kind.
func KnownKind(ruleType string) bool {
	for _, k := range Kinds {
		if string(k) == ruleType {
			return true
		}
	}
	return false
}

// BuildAll builds every entry it can and joins the failures into one error.
func BuildAll(configs []RuleConfig, tables *progression.Tables) ([]Rule, error) {
	var rules []Rule
	var errs []error

	for _, config := range configs {
		rule, err := Build(config, tables)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", config.ID, err))
			continue
		}
		if rule != nil {
			rules = append(rules, rule)
		}
	}

	return rules, errors.Join(errs...)
}

// RegisterRules builds the configured achievements into registry.
// Unlike reward actions, a broken achievement fails startup: a silently
// missing rule would change which unlocks users get.
func RegisterRules(registry *Registry, configs []RuleConfig, tables *progression.Tables) error {
	rules, err := BuildAll(configs, tables)
	if err != nil {
		return fmt.Errorf("invalid achievement rules: %w", err)
	}

	for _, rule := range rules {
		if err := registry.Register(rule); err != nil {
			return fmt.Errorf("failed to register rule %s: %w", rule.ID(), err)
		}
	}
	return nil
}
