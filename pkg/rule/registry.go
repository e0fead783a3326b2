package rule

import (
	"fmt"
	"sync"
)

// Registry holds the configured achievement rules in registration order.
// Evaluation walks rules in that order, so config order decides tie-breaks in logs.
type Registry struct {
	mu    sync.RWMutex
	order []Rule
	byID  map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Rule),
	}
}

// Register appends a rule. Rule ids are unique.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return fmt.Errorf("cannot register nil rule")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[rule.ID()]; exists {
		return fmt.Errorf("rule %s already registered", rule.ID())
	}

	r.byID[rule.ID()] = rule
	r.order = append(r.order, rule)
	return nil
}

// Get returns a rule by ID, or nil.
func (r *Registry) Get(ruleID string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byID[ruleID]
}

// ForSignal returns the enabled rules that handle signalType, in registration order.
// A rule with no signal types handles every signal.
func (r *Registry) ForSignal(signalType string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matching []Rule
	for _, rule := range r.order {
		if !rule.Config().Enabled {
			continue
		}
		if handles(rule, signalType) {
			matching = append(matching, rule)
		}
	}
	return matching
}

func handles(rule Rule, signalType string) bool {
	types := rule.SignalTypes()
	if len(types) == 0 {
		return true
	}
	for _, st := range types {
		if st == signalType {
			return true
		}
	}
	return false
}

// CountByType returns how many rules of each configured type are registered.
func (r *Registry) CountByType() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, rule := range r.order {
		counts[rule.Config().Type]++
	}
	return counts
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
