package action

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Builder constructs an action from its config entry.
type Builder func(config ActionConfig) (Action, error)

var (
	builders   = make(map[string]Builder)
	buildersMu sync.RWMutex
)

// RegisterType binds an action type name to its builder. Registering a
// type again replaces the builder, which is how dependencies get swapped
// between the service and tests.
func RegisterType(actionType string, builder Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()

	builders[actionType] = builder
	logrus.Debugf("registered action type: %s", actionType)
}

// KnownType reports whether a builder exists for actionType.
func KnownType(actionType string) bool {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	_, ok := builders[actionType]
	return ok
}

// KnownTypes lists the registered action types, sorted.
func KnownTypes() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	types := make([]string, 0, len(builders))
	for t := range builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build creates the action for one config entry.
// A disabled entry yields a nil action and no error.
func Build(config ActionConfig) (Action, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled action: %s", config.ID)
		return nil, nil
	}
	if err := config.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	buildersMu.RLock()
	builder, ok := builders[config.Type]
	buildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown action type %q (known: %v)", ErrInvalidConfig, config.Type, KnownTypes())
	}

	return builder(config)
}

// BuildAll builds every entry it can. Failures are joined into one error
// and do not stop the remaining entries.
func BuildAll(configs []ActionConfig) ([]Action, error) {
	var actions []Action
	var errs []error

	for _, config := range configs {
		action, err := Build(config)
		if err != nil {
			errs = append(errs, fmt.Errorf("action %s: %w", config.ID, err))
			continue
		}
		if action != nil {
			actions = append(actions, action)
		}
	}

	return actions, errors.Join(errs...)
}

// RegisterActions builds the configured actions into registry.
// Rewards are best effort, so a broken entry is logged and skipped;
// only a registry conflict fails the call.
func RegisterActions(registry *Registry, configs []ActionConfig) error {
	actions, err := BuildAll(configs)
	if err != nil {
		logrus.Warnf("some reward actions were skipped: %v", err)
	}

	for _, action := range actions {
		if err := registry.Register(action); err != nil {
			return fmt.Errorf("failed to register action %s: %w", action.ID(), err)
		}
	}
	return nil
}
