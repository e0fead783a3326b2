// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package progression

import (
	"fmt"
	"sort"

	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
)

// Derivation is everything computed from a user's full event log.
type Derivation struct {
	Ledger   Ledger
	Days     map[string]DailyStats
	Lifetime map[Category]int
	EventXP  map[string]int64
	// Events holds the logged events by id, day key recomputed.
	Events map[string]Event
}

// Day returns the derived counts of a day, or an empty day.
// Totals and score are not filled; see Tables.Finalize.
func (d *Derivation) Day(dayKey string) DailyStats {
	if s, ok := d.Days[dayKey]; ok {
		return s
	}
	return DailyStats{DayKey: dayKey}
}

// Replay derives ledger, per-day stats and per-event XP from the event log.
// Events are applied in (OccurredAt, ID) order so the result does not depend on
// the order they were written in. Streaks advance once per new day key.
func (t *Tables) Replay(cal *daykey.Calendar, events []Event) (*Derivation, error) {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	d := &Derivation{
		Days:     make(map[string]DailyStats),
		Lifetime: make(map[Category]int),
		EventXP:  make(map[string]int64, len(sorted)),
		Events:   make(map[string]Event, len(sorted)),
	}

	for _, ev := range sorted {
		day := cal.Key(ev.OccurredAt)

		if day != d.Ledger.LastActiveDayKey {
			streak, err := d.Ledger.Streak.Advance(cal, day)
			if err != nil {
				return nil, fmt.Errorf("failed to advance streak on %s: %w", day, err)
			}
			d.Ledger.Streak = streak
		}

		stats := d.Day(day)
		stats.record(ev.Category)
		stats.ComboCount = ComboCount(stats)

		xp := t.EventXP(ev.Category, stats.ComboCount, d.Ledger.Current)
		stats.XPEarned += xp
		d.Days[day] = stats

		d.EventXP[ev.ID] = xp
		ev.DayKey = day
		d.Events[ev.ID] = ev
		d.Ledger.TotalXP += xp
		if ev.Category.Valid() {
			d.Lifetime[ev.Category]++
		}
	}

	d.Ledger.EventsApplied = int64(len(sorted))
	return d, nil
}
