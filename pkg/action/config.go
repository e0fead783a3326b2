package action

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/rule"
)

// ActionConfig is one reward action entry of the engine config.
type ActionConfig struct {
	ID         string       `yaml:"id" json:"id"`
	Name       string       `yaml:"name" json:"name"`
	Type       string       `yaml:"type" json:"type"` // e.g., "grant_item"
	Enabled    bool         `yaml:"enabled" json:"enabled"`
	Async      bool         `yaml:"async" json:"async"`
	Retry      *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty"`
	Parameters rule.Params  `yaml:"parameters" json:"parameters"`
}

// RetryConfig defines retry behavior for failed actions.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	Delay       time.Duration `yaml:"delay" json:"delay"`
	Backoff     string        `yaml:"backoff" json:"backoff"` // "constant" or "exponential"
}

const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// Validate checks the retry policy. A nil policy is valid and means one attempt.
func (r *RetryConfig) Validate() error {
	if r == nil {
		return nil
	}
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative, got %d", r.MaxAttempts)
	}
	if r.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %s", r.Delay)
	}
	switch r.Backoff {
	case "", BackoffConstant, BackoffExponential:
		return nil
	default:
		return fmt.Errorf("unknown backoff %q", r.Backoff)
	}
}
