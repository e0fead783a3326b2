// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import (
	"time"
)

// Event is an immutable completion fact.
// DayKey is informational only; it is always recomputed from OccurredAt.
type Event struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Category   Category  `json:"category"`
	OccurredAt time.Time `json:"occurredAt"`
	DayKey     string    `json:"dayKey"`
}

// Targets are the planned totals for one day.
type Targets struct {
	Actions      int `yaml:"actions" json:"actions"`
	Affirmations int `yaml:"affirmations" json:"affirmations"`
	Habits       int `yaml:"habits" json:"habits"`
}

// DailyStats is the derived summary of one user's day.
type DailyStats struct {
	DayKey                string `json:"dayKey"`
	ActionsCompleted      int    `json:"actionsCompleted"`
	ActionsTotal          int    `json:"actionsTotal"`
	AffirmationsCompleted int    `json:"affirmationsCompleted"`
	AffirmationsTotal     int    `json:"affirmationsTotal"`
	HabitsCompleted       int    `json:"habitsCompleted"`
	HabitsTotal           int    `json:"habitsTotal"`
	Checkins              int    `json:"checkins"`
	Scans                 int    `json:"scans"`
	ComboCount            int    `json:"comboCount"`
	DailyScore            int    `json:"dailyScore"`
	XPEarned              int64  `json:"xpEarned"`
}

// Streak tracks consecutive active days.
type Streak struct {
	Current          int    `json:"currentStreak"`
	Longest          int    `json:"longestStreak"`
	LastActiveDayKey string `json:"lastActiveDayKey"`
}

// Ledger is the per-user cumulative progress.
// EventsApplied is the number of log events the ledger was derived from and
// orders competing writes of the same user's ledger.
type Ledger struct {
	TotalXP int64 `json:"totalXP"`
	Streak
	EventsApplied int64 `json:"eventsApplied"`
}

// record increments the completion counter for c.
func (s *DailyStats) record(c Category) {
	switch c {
	case CategoryAction:
		s.ActionsCompleted++
	case CategoryAffirmation:
		s.AffirmationsCompleted++
	case CategoryHabit:
		s.HabitsCompleted++
	case CategoryCheckin:
		s.Checkins++
	case CategoryScan:
		s.Scans++
	}
}

// ComboCount returns how many of action/affirmation/habit were touched.
func ComboCount(s DailyStats) int {
	combo := 0
	if s.ActionsCompleted > 0 {
		combo++
	}
	if s.AffirmationsCompleted > 0 {
		combo++
	}
	if s.HabitsCompleted > 0 {
		combo++
	}
	return combo
}
