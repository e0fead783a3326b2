package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
)

// ValidateWiring cross-checks the built registries against the engine config
// before the service starts taking traffic. Every enabled achievement must
// have a rule and every enabled reward must have an action. A rule pointing
// at a disabled reward is allowed but logged, since its unlocks will carry
// no reward.
func ValidateWiring(ruleRegistry *rule.Registry, actionRegistry *action.Registry, config *Config) error {
	var errs []error

	enabledActions := make(map[string]bool, len(config.Actions))
	for _, ac := range config.Actions {
		enabledActions[ac.ID] = ac.Enabled
	}

	for _, rc := range config.Rules {
		if !rc.Enabled {
			continue
		}
		if ruleRegistry.Get(rc.ID) == nil {
			errs = append(errs, fmt.Errorf("achievement %s (type=%s) is enabled but has no rule", rc.ID, rc.Type))
		}
		for _, actionID := range rc.Actions {
			if !enabledActions[actionID] {
				logrus.Warnf("achievement %s rewards with disabled action %s", rc.ID, actionID)
			}
		}
	}

	for _, ac := range config.Actions {
		if ac.Enabled && actionRegistry.Get(ac.ID) == nil {
			errs = append(errs, fmt.Errorf("reward action %s (type=%s) is enabled but was not built", ac.ID, ac.Type))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("engine wiring is invalid: %w", err)
	}
	return nil
}
