package rule

import "math"

// RuleConfig is one achievement entry of the engine config.
type RuleConfig struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"` // one of the Kind values, e.g. "streak"
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Priority int    `yaml:"priority" json:"priority"`
	XPBonus  int64  `yaml:"xp_bonus" json:"xpBonus"`
	// Parameters hold the kind-specific threshold, e.g. days for streak.
	Parameters Params `yaml:"parameters" json:"parameters"`
}

// Params is a loosely typed parameter bag decoded from YAML.
// YAML numbers may arrive as int or float64; the getters accept both.
type Params map[string]interface{}

func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Whole reports whether key is unset or holds a number without a fraction.
func (p Params) Whole(key string) bool {
	if f, ok := p[key].(float64); ok {
		return f == math.Trunc(f)
	}
	return true
}

func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Strings reads a list of strings; non-string items are skipped.
func (p Params) Strings(key string, def []string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return def
}
