// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import "math"

// BaseXP returns the fixed reward of a category, 0 when unknown.
func (t *Tables) BaseXP(c Category) int64 {
	return t.baseXP[c]
}

// ComboMultiplier returns the multiplier for a combo count, clamped to 0-3.
func (t *Tables) ComboMultiplier(combo int) float64 {
	if combo < 0 {
		combo = 0
	}
	if combo > 3 {
		combo = 3
	}
	return t.comboMultipliers[combo]
}

// StreakBonus returns the flat bonus for a streak length.
func (t *Tables) StreakBonus(streakDays int) float64 {
	if streakDays < 0 {
		streakDays = 0
	}
	if streakDays > t.streakBonusCapDays {
		streakDays = t.streakBonusCapDays
	}
	return float64(streakDays) * t.streakBonusPerDay
}

// EventXP returns the XP awarded for one event.
// comboAfter is today's combo count including this event.
// An unknown category awards nothing; it never fails.
func (t *Tables) EventXP(c Category, comboAfter, streakDays int) int64 {
	base, ok := t.baseXP[c]
	if !ok {
		return 0
	}
	xp := float64(base)*t.ComboMultiplier(comboAfter) + t.StreakBonus(streakDays)
	return int64(math.Round(xp))
}
