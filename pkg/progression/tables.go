// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import (
	"fmt"
	"sort"
)

// LevelEntry is one row of the level table.
type LevelEntry struct {
	Level       int    `yaml:"level" json:"level"`
	XPThreshold int64  `yaml:"xp_threshold" json:"xpThreshold"`
	Title       string `yaml:"title" json:"title"`
	Badge       string `yaml:"badge" json:"badge"`
}

// ScoreWeights are the maximum contribution of each category to the daily score.
type ScoreWeights struct {
	Actions      float64 `yaml:"actions" json:"actions"`
	Affirmations float64 `yaml:"affirmations" json:"affirmations"`
	Habits       float64 `yaml:"habits" json:"habits"`
}

// TablesConfig is the YAML shape of the progression tables.
type TablesConfig struct {
	Levels             []LevelEntry     `yaml:"levels"`
	BaseXP             map[string]int64 `yaml:"base_xp"`
	ComboMultipliers   []float64        `yaml:"combo_multipliers"`
	StreakBonusPerDay  float64          `yaml:"streak_bonus_per_day"`
	StreakBonusCapDays int              `yaml:"streak_bonus_cap_days"`
	ScoreWeights       ScoreWeights     `yaml:"score_weights"`
	MilestoneXP        map[int]int64    `yaml:"milestone_xp"`
	DefaultTargets     Targets          `yaml:"default_targets"`
}

// DefaultTablesConfig returns the product defaults.
func DefaultTablesConfig() TablesConfig {
	return TablesConfig{
		Levels: []LevelEntry{
			{Level: 1, XPThreshold: 0, Title: "Dreamer", Badge: "🌱"},
			{Level: 2, XPThreshold: 100, Title: "Seeker", Badge: "🌿"},
			{Level: 3, XPThreshold: 250, Title: "Planner", Badge: "🌳"},
			{Level: 4, XPThreshold: 500, Title: "Achiever", Badge: "⭐"},
			{Level: 5, XPThreshold: 1000, Title: "Go-Getter", Badge: "🌟"},
			{Level: 6, XPThreshold: 2000, Title: "Trailblazer", Badge: "🔥"},
			{Level: 7, XPThreshold: 3500, Title: "Visionary", Badge: "💎"},
			{Level: 8, XPThreshold: 5500, Title: "Master", Badge: "👑"},
			{Level: 9, XPThreshold: 8000, Title: "Legend", Badge: "🏆"},
			{Level: 10, XPThreshold: 12000, Title: "Icon", Badge: "🚀"},
		},
		BaseXP: map[string]int64{
			string(CategoryAction):      10,
			string(CategoryAffirmation): 5,
			string(CategoryHabit):       8,
			string(CategoryCheckin):     15,
			string(CategoryScan):        2,
		},
		ComboMultipliers:   []float64{1.0, 1.0, 1.25, 1.5},
		StreakBonusPerDay:  0.5,
		StreakBonusCapDays: 30,
		ScoreWeights: ScoreWeights{
			Actions:      60,
			Affirmations: 20,
			Habits:       20,
		},
		MilestoneXP: map[int]int64{
			25:  25,
			50:  50,
			75:  75,
			100: 150,
		},
		DefaultTargets: Targets{
			Actions:      3,
			Affirmations: 1,
			Habits:       3,
		},
	}
}

// Tables is the immutable set of lookup tables the engine computes with.
// Build it with NewTables; every accessor returns copies.
type Tables struct {
	levels              []LevelEntry
	baseXP              map[Category]int64
	comboMultipliers    [4]float64
	streakBonusPerDay   float64
	streakBonusCapDays  int
	weights             ScoreWeights
	milestoneThresholds []int
	milestoneXP         map[int]int64
	defaultTargets      Targets
}

// NewTables validates cfg and freezes it into a Tables value.
func NewTables(cfg TablesConfig) (*Tables, error) {
	if len(cfg.Levels) == 0 {
		return nil, fmt.Errorf("level table is empty")
	}
	if cfg.Levels[0].XPThreshold != 0 {
		return nil, fmt.Errorf("first level threshold must be 0, got %d", cfg.Levels[0].XPThreshold)
	}
	for i := 1; i < len(cfg.Levels); i++ {
		prev, cur := cfg.Levels[i-1], cfg.Levels[i]
		if cur.XPThreshold <= prev.XPThreshold {
			return nil, fmt.Errorf("level %d threshold %d is not greater than level %d threshold %d",
				cur.Level, cur.XPThreshold, prev.Level, prev.XPThreshold)
		}
		if cur.Level <= prev.Level {
			return nil, fmt.Errorf("level numbers must increase: %d after %d", cur.Level, prev.Level)
		}
	}

	baseXP := make(map[Category]int64, len(cfg.BaseXP))
	for name, xp := range cfg.BaseXP {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("base_xp: %w", err)
		}
		if xp < 0 {
			return nil, fmt.Errorf("base_xp for %s must be non-negative, got %d", c, xp)
		}
		baseXP[c] = xp
	}

	if len(cfg.ComboMultipliers) != 4 {
		return nil, fmt.Errorf("combo_multipliers must have 4 entries (combo 0-3), got %d", len(cfg.ComboMultipliers))
	}
	var combo [4]float64
	for i, m := range cfg.ComboMultipliers {
		if m <= 0 {
			return nil, fmt.Errorf("combo multiplier %d must be positive, got %v", i, m)
		}
		combo[i] = m
	}

	if cfg.StreakBonusPerDay < 0 || cfg.StreakBonusCapDays < 0 {
		return nil, fmt.Errorf("streak bonus settings must be non-negative")
	}

	w := cfg.ScoreWeights
	if w.Actions < 0 || w.Affirmations < 0 || w.Habits < 0 {
		return nil, fmt.Errorf("score weights must be non-negative")
	}
	if sum := w.Actions + w.Affirmations + w.Habits; sum != 100 {
		return nil, fmt.Errorf("score weights must sum to 100, got %v", sum)
	}

	milestoneXP := make(map[int]int64, len(cfg.MilestoneXP))
	thresholds := make([]int, 0, len(cfg.MilestoneXP))
	for threshold, xp := range cfg.MilestoneXP {
		if threshold <= 0 || threshold > 100 {
			return nil, fmt.Errorf("milestone threshold %d must be in (0, 100]", threshold)
		}
		if xp < 0 {
			return nil, fmt.Errorf("milestone %d XP must be non-negative", threshold)
		}
		milestoneXP[threshold] = xp
		thresholds = append(thresholds, threshold)
	}
	sort.Ints(thresholds)

	targets := cfg.DefaultTargets
	if targets.Actions < 0 || targets.Affirmations < 0 || targets.Habits < 0 {
		return nil, fmt.Errorf("default targets must be non-negative")
	}

	levels := make([]LevelEntry, len(cfg.Levels))
	copy(levels, cfg.Levels)

	return &Tables{
		levels:              levels,
		baseXP:              baseXP,
		comboMultipliers:    combo,
		streakBonusPerDay:   cfg.StreakBonusPerDay,
		streakBonusCapDays:  cfg.StreakBonusCapDays,
		weights:             w,
		milestoneThresholds: thresholds,
		milestoneXP:         milestoneXP,
		defaultTargets:      targets,
	}, nil
}

// DefaultTables returns the product default tables.
func DefaultTables() *Tables {
	t, err := NewTables(DefaultTablesConfig())
	if err != nil {
		panic(fmt.Sprintf("default progression tables are invalid: %v", err))
	}
	return t
}

// Levels returns a copy of the level table.
func (t *Tables) Levels() []LevelEntry {
	levels := make([]LevelEntry, len(t.levels))
	copy(levels, t.levels)
	return levels
}

// MilestoneThresholds returns the goal milestone thresholds in ascending order.
func (t *Tables) MilestoneThresholds() []int {
	thresholds := make([]int, len(t.milestoneThresholds))
	copy(thresholds, t.milestoneThresholds)
	return thresholds
}

// MilestoneXP returns the flat bonus for reaching a goal milestone threshold.
func (t *Tables) MilestoneXP(threshold int) int64 {
	return t.milestoneXP[threshold]
}

// DefaultTargets returns the daily totals used when a user has no plan.
func (t *Tables) DefaultTargets() Targets {
	return t.defaultTargets
}
