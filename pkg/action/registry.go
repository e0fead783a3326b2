package action

import (
	"fmt"
	"sync"
)

// Registry holds the reward actions built from the engine config, keyed by id.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
	}
}

// Register adds an action. Action ids are unique.
func (r *Registry) Register(action Action) error {
	if action == nil {
		return fmt.Errorf("cannot register nil action")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[action.ID()]; exists {
		return fmt.Errorf("action %s already registered", action.ID())
	}

	r.actions[action.ID()] = action
	return nil
}

// Get returns an action by ID, enabled or not, or nil.
func (r *Registry) Get(actionID string) Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.actions[actionID]
}

// Enabled returns the action only if it exists and is enabled.
func (r *Registry) Enabled(actionID string) Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action := r.actions[actionID]
	if action == nil || !action.Config().Enabled {
		return nil
	}
	return action
}

// AsyncCount returns how many enabled actions run detached from the request.
func (r *Registry) AsyncCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, action := range r.actions {
		cfg := action.Config()
		if cfg.Enabled && cfg.Async {
			n++
		}
	}
	return n
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.actions)
}
