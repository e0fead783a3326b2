// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import (
	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
)

// Advance applies the first activity of today to the streak.
// Same day: unchanged. Last active yesterday: +1. Any gap or no history: 1.
func (s Streak) Advance(cal *daykey.Calendar, today string) (Streak, error) {
	if s.LastActiveDayKey == today {
		return s, nil
	}
	// out-of-order input never rewinds the streak
	if s.LastActiveDayKey != "" && s.LastActiveDayKey > today {
		return s, nil
	}

	next := s
	if s.LastActiveDayKey == "" {
		next.Current = 1
	} else {
		yesterday, err := cal.Yesterday(today)
		if err != nil {
			return s, err
		}
		if s.LastActiveDayKey == yesterday {
			next.Current = s.Current + 1
		} else {
			next.Current = 1
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	next.LastActiveDayKey = today
	return next, nil
}

// Effective returns the streak as seen on today: a streak whose last active
// day is older than yesterday is already broken and reads as 0.
func (s Streak) Effective(cal *daykey.Calendar, today string) int {
	if s.LastActiveDayKey == "" {
		return 0
	}
	if s.LastActiveDayKey >= today {
		return s.Current
	}
	yesterday, err := cal.Yesterday(today)
	if err != nil || s.LastActiveDayKey != yesterday {
		return 0
	}
	return s.Current
}
