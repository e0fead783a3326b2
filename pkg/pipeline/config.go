package pipeline

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// Config represents the complete engine configuration.
// Tables start from the product defaults; the file only needs to list what it changes.
type Config struct {
	Tables  progression.TablesConfig `yaml:"tables"`
	Quota   QuotaConfig              `yaml:"quota"`
	Rules   []RuleConfig             `yaml:"rules"`
	Actions []ActionConfig           `yaml:"actions"`
}

// QuotaConfig overrides the daily scan allowance per tier. -1 is unlimited.
type QuotaConfig struct {
	Limits map[string]int `yaml:"limits"`
}

// RuleConfig represents an achievement rule entry.
type RuleConfig struct {
	ID         string      `yaml:"id"`
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	Enabled    bool        `yaml:"enabled"`
	Priority   int         `yaml:"priority"`
	XPBonus    int64       `yaml:"xp_bonus"`
	Actions    []string    `yaml:"actions,omitempty"` // Action IDs to execute when the achievement unlocks
	Parameters rule.Params `yaml:"parameters,omitempty"`
}

// ActionConfig represents a reward action entry.
type ActionConfig struct {
	ID         string              `yaml:"id"`
	Name       string              `yaml:"name"`
	Type       string              `yaml:"type"`
	Enabled    bool                `yaml:"enabled"`
	Async      bool                `yaml:"async"`
	Retry      *action.RetryConfig `yaml:"retry,omitempty"`
	Parameters rule.Params         `yaml:"parameters,omitempty"`
}

// DefaultConfig returns the default tables with no rules or actions.
func DefaultConfig() *Config {
	return &Config{
		Tables: progression.DefaultTablesConfig(),
	}
}

// LoadConfig loads engine configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates YAML configuration content.
func ParseConfig(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	// Parse YAML over the defaults
	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	if _, err := progression.NewTables(c.Tables); err != nil {
		return fmt.Errorf("tables: %w", err)
	}

	for name, limit := range c.Quota.Limits {
		if _, err := service.ParseTier(name); err != nil {
			return fmt.Errorf("quota: %w", err)
		}
		if limit < -1 {
			return fmt.Errorf("quota limit for %s must be -1 (unlimited) or non-negative, got %d", name, limit)
		}
	}

	// Check for duplicate rule IDs
	ruleIDs := make(map[string]bool)
	for _, rc := range c.Rules {
		if rc.ID == "" {
			return fmt.Errorf("rule with empty ID found")
		}
		if ruleIDs[rc.ID] {
			return fmt.Errorf("duplicate rule ID: %s", rc.ID)
		}
		ruleIDs[rc.ID] = true

		if rc.Type == "" {
			return fmt.Errorf("rule %s has empty type", rc.ID)
		}
		if !rule.KnownKind(rc.Type) {
			return fmt.Errorf("rule %s has unknown type: %s", rc.ID, rc.Type)
		}
		if rc.XPBonus < 0 {
			return fmt.Errorf("rule %s has negative xp_bonus", rc.ID)
		}
	}

	// Check for duplicate action IDs
	actionIDs := make(map[string]bool)
	for _, ac := range c.Actions {
		if ac.ID == "" {
			return fmt.Errorf("action with empty ID found")
		}
		if actionIDs[ac.ID] {
			return fmt.Errorf("duplicate action ID: %s", ac.ID)
		}
		actionIDs[ac.ID] = true

		if ac.Type == "" {
			return fmt.Errorf("action %s has empty type", ac.ID)
		}
		if err := ac.Retry.Validate(); err != nil {
			return fmt.Errorf("action %s retry: %w", ac.ID, err)
		}
	}

	// Validate that all action references in rules exist
	for _, rc := range c.Rules {
		for _, actionID := range rc.Actions {
			if !actionIDs[actionID] {
				return fmt.Errorf("rule %s references unknown action: %s", rc.ID, actionID)
			}
		}
	}

	return nil
}

// BuildTables freezes the configured tables.
func (c *Config) BuildTables() (*progression.Tables, error) {
	return progression.NewTables(c.Tables)
}

// QuotaLimits converts the configured limits to tier keys.
func (c *Config) QuotaLimits() map[service.Tier]int {
	limits := make(map[service.Tier]int, len(c.Quota.Limits))
	for name, limit := range c.Quota.Limits {
		tier, err := service.ParseTier(name)
		if err != nil {
			continue
		}
		limits[tier] = limit
	}
	return limits
}

// RuleConfigs converts the rule entries for the rule factory.
func (c *Config) RuleConfigs() []rule.RuleConfig {
	result := make([]rule.RuleConfig, len(c.Rules))
	for i, rc := range c.Rules {
		result[i] = rule.RuleConfig{
			ID:         rc.ID,
			Name:       rc.Name,
			Type:       rc.Type,
			Enabled:    rc.Enabled,
			Priority:   rc.Priority,
			XPBonus:    rc.XPBonus,
			Parameters: rc.Parameters,
		}
	}
	return result
}

// ActionConfigs converts the action entries for the action factory.
func (c *Config) ActionConfigs() []action.ActionConfig {
	result := make([]action.ActionConfig, len(c.Actions))
	for i, ac := range c.Actions {
		result[i] = action.ActionConfig{
			ID:         ac.ID,
			Name:       ac.Name,
			Type:       ac.Type,
			Enabled:    ac.Enabled,
			Async:      ac.Async,
			Retry:      ac.Retry,
			Parameters: ac.Parameters,
		}
	}
	return result
}

// RuleActions maps each rule with actions to its action IDs.
func (c *Config) RuleActions() map[string][]string {
	ruleActions := make(map[string][]string)
	for _, rc := range c.Rules {
		if len(rc.Actions) > 0 {
			ruleActions[rc.ID] = rc.Actions
		}
	}
	return ruleActions
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		// Support ${VAR:default} syntax
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
