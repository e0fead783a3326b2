// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import (
	"math"
	"sort"
)

// LevelInfo is the level view of a cumulative XP total.
type LevelInfo struct {
	Level            int     `json:"level"`
	Title            string  `json:"title"`
	Badge            string  `json:"badge"`
	TotalXP          int64   `json:"totalXP"`
	CurrentThreshold int64   `json:"currentThreshold"`
	NextThreshold    int64   `json:"nextThreshold"`
	XPToNext         int64   `json:"xpToNext"`
	ProgressPercent  float64 `json:"progressPercent"`
	MaxLevel         bool    `json:"maxLevel"`
}

// LevelFromXP returns the highest level whose threshold is at most totalXP.
// The first threshold is 0, so every total maps to a level.
func (t *Tables) LevelFromXP(totalXP int64) LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}

	idx := sort.Search(len(t.levels), func(i int) bool {
		return t.levels[i].XPThreshold > totalXP
	}) - 1

	entry := t.levels[idx]
	info := LevelInfo{
		Level:            entry.Level,
		Title:            entry.Title,
		Badge:            entry.Badge,
		TotalXP:          totalXP,
		CurrentThreshold: entry.XPThreshold,
	}

	if idx == len(t.levels)-1 {
		info.NextThreshold = entry.XPThreshold
		info.ProgressPercent = 100
		info.MaxLevel = true
		return info
	}

	next := t.levels[idx+1].XPThreshold
	info.NextThreshold = next
	info.XPToNext = next - totalXP

	pct := float64(totalXP-entry.XPThreshold) / float64(next-entry.XPThreshold) * 100
	info.ProgressPercent = math.Min(100, math.Round(pct*100)/100)

	return info
}
