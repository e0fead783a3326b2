// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import "math"

// DailyScore returns the 0-100 score for one day.
// Each category contributes weight × completed/total, clamped to [0, weight];
// a category with no planned total contributes nothing.
func (t *Tables) DailyScore(s DailyStats) int {
	score := scoreTerm(t.weights.Actions, s.ActionsCompleted, s.ActionsTotal) +
		scoreTerm(t.weights.Affirmations, s.AffirmationsCompleted, s.AffirmationsTotal) +
		scoreTerm(t.weights.Habits, s.HabitsCompleted, s.HabitsTotal)

	return int(math.Round(score))
}

func scoreTerm(weight float64, completed, total int) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	term := weight * float64(completed) / float64(total)
	if term > weight {
		return weight
	}
	return term
}

// Finalize fills the planned totals, combo and score of a derived day.
func (t *Tables) Finalize(s DailyStats, targets Targets) DailyStats {
	s.ActionsTotal = targets.Actions
	s.AffirmationsTotal = targets.Affirmations
	s.HabitsTotal = targets.Habits
	s.ComboCount = ComboCount(s)
	s.DailyScore = t.DailyScore(s)
	return s
}
