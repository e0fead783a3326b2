package signal

import (
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// Signal represents a normalized progression change with player context.
// Signals are produced by the Processor after a mutation and are consumed
// by the Rule Engine for achievement evaluation.
type Signal interface {
	// Type returns the signal type identifier (e.g., "event_recorded", "goal_progress").
	Type() string

	// UserID returns the player identifier.
	UserID() string

	// Timestamp returns when the signal occurred.
	Timestamp() time.Time

	// Metadata returns additional signal-specific data.
	// This allows rules to access signal-specific information without type assertions.
	Metadata() map[string]interface{}

	// Context returns the derived progression state of the player.
	Context() *PlayerContext
}

// PlayerContext is everything derived from a user's log at one instant.
// Rules only read it; nothing here is persisted by the rules themselves.
type PlayerContext struct {
	UserID    string
	Namespace string

	// DayKey is today in the reporting timezone.
	DayKey string
	// Today is today's finalized stats, score and combo included.
	Today progression.DailyStats
	// Ledger.TotalXP includes UnlockBonusXP.
	Ledger        progression.Ledger
	Level         progression.LevelInfo
	Lifetime      map[progression.Category]int
	Goals         map[string]int
	Unlocked      map[string]bool
	UnlockBonusXP int64

	Derivation *progression.Derivation
}

// HasUnlocked reports whether an achievement id already has an unlock row.
func (pc *PlayerContext) HasUnlocked(achievementID string) bool {
	return pc.Unlocked[achievementID]
}
