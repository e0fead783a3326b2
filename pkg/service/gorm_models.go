package service

import (
	"time"

	"gorm.io/gorm"
)

// Row types for the relational store. Composite primary keys carry the
// per-user uniqueness every write relies on.

type completionEventRow struct {
	UserID     string    `gorm:"primaryKey;size:128"`
	ID         string    `gorm:"primaryKey;size:64"`
	Category   string    `gorm:"size:32;not null"`
	OccurredAt time.Time `gorm:"not null;index"`
	DayKey     string    `gorm:"size:10;not null;index"`
	CreatedAt  time.Time
}

func (completionEventRow) TableName() string { return "completion_events" }

type dailyStatsRow struct {
	UserID                string `gorm:"primaryKey;size:128"`
	DayKey                string `gorm:"primaryKey;size:10"`
	ActionsCompleted      int
	ActionsTotal          int
	AffirmationsCompleted int
	AffirmationsTotal     int
	HabitsCompleted       int
	HabitsTotal           int
	Checkins              int
	Scans                 int
	ComboCount            int
	DailyScore            int
	XPEarned              int64
	UpdatedAt             time.Time
}

func (dailyStatsRow) TableName() string { return "daily_stats" }

type progressLedgerRow struct {
	UserID           string `gorm:"primaryKey;size:128"`
	TotalXP          int64  `gorm:"not null"`
	CurrentStreak    int    `gorm:"not null"`
	LongestStreak    int    `gorm:"not null"`
	LastActiveDayKey string `gorm:"size:10"`
	EventsApplied    int64  `gorm:"not null"`
	UpdatedAt        time.Time
}

func (progressLedgerRow) TableName() string { return "progress_ledger" }

type quotaRecordRow struct {
	UserID    string    `gorm:"primaryKey;size:128"`
	DayKey    string    `gorm:"primaryKey;size:10"`
	ScanCount int       `gorm:"not null"`
	MaxScans  int       `gorm:"not null"`
	ResetAt   time.Time `gorm:"not null"`
}

func (quotaRecordRow) TableName() string { return "quota_records" }

type achievementUnlockRow struct {
	UserID        string    `gorm:"primaryKey;size:128"`
	AchievementID string    `gorm:"primaryKey;size:128"`
	XPBonus       int64     `gorm:"not null"`
	UnlockedAt    time.Time `gorm:"not null"`
	Delivered     bool      `gorm:"not null"`
}

func (achievementUnlockRow) TableName() string { return "achievement_unlocks" }

type dailyTargetRow struct {
	UserID       string `gorm:"primaryKey;size:128"`
	DayKey       string `gorm:"primaryKey;size:10"`
	Actions      int
	Affirmations int
	Habits       int
}

func (dailyTargetRow) TableName() string { return "daily_targets" }

type goalProgressRow struct {
	UserID    string `gorm:"primaryKey;size:128"`
	GoalID    string `gorm:"primaryKey;size:128"`
	Percent   int    `gorm:"not null"`
	UpdatedAt time.Time
}

func (goalProgressRow) TableName() string { return "goal_progress" }

type userTierRow struct {
	UserID    string `gorm:"primaryKey;size:128"`
	Tier      string `gorm:"size:16;not null"`
	UpdatedAt time.Time
}

func (userTierRow) TableName() string { return "user_tiers" }

// AutoMigrate creates or updates every table the relational store uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&completionEventRow{},
		&dailyStatsRow{},
		&progressLedgerRow{},
		&quotaRecordRow{},
		&achievementUnlockRow{},
		&dailyTargetRow{},
		&goalProgressRow{},
		&userTierRow{},
	)
}
