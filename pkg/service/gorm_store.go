// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// GormStore implements Store on a relational database through gorm.
// Postgres in production; the tests run it on in-memory sqlite.
type GormStore struct {
	db  *gorm.DB
	cfg GormStoreConfig
}

type GormStoreConfig struct {
	AutoMigrate bool
}

func NewGormStore(db *gorm.DB, cfg GormStoreConfig) (*GormStore, error) {
	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate progression tables: %w", err)
		}
	}
	return &GormStore{db: db, cfg: cfg}, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) AppendEvent(ctx context.Context, ev progression.Event) (bool, error) {
	row := completionEventRow{
		UserID:     ev.UserID,
		ID:         ev.ID,
		Category:   string(ev.Category),
		OccurredAt: ev.OccurredAt.UTC(),
		DayKey:     ev.DayKey,
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to append event %s: %w", ev.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ListEvents(ctx context.Context, userID string) ([]progression.Event, error) {
	return s.listEvents(s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *GormStore) ListDayEvents(ctx context.Context, userID, dayKey string) ([]progression.Event, error) {
	return s.listEvents(s.db.WithContext(ctx).Where("user_id = ? AND day_key = ?", userID, dayKey))
}

func (s *GormStore) listEvents(q *gorm.DB) ([]progression.Event, error) {
	var rows []completionEventRow
	if err := q.Order("occurred_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]progression.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, progression.Event{
			ID:         row.ID,
			UserID:     row.UserID,
			Category:   progression.Category(row.Category),
			OccurredAt: row.OccurredAt.UTC(),
			DayKey:     row.DayKey,
		})
	}
	return events, nil
}

func (s *GormStore) UpsertDailyStats(ctx context.Context, userID string, stats progression.DailyStats) error {
	row := dailyStatsRow{
		UserID:                userID,
		DayKey:                stats.DayKey,
		ActionsCompleted:      stats.ActionsCompleted,
		ActionsTotal:          stats.ActionsTotal,
		AffirmationsCompleted: stats.AffirmationsCompleted,
		AffirmationsTotal:     stats.AffirmationsTotal,
		HabitsCompleted:       stats.HabitsCompleted,
		HabitsTotal:           stats.HabitsTotal,
		Checkins:              stats.Checkins,
		Scans:                 stats.Scans,
		ComboCount:            stats.ComboCount,
		DailyScore:            stats.DailyScore,
		XPEarned:              stats.XPEarned,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day_key"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert daily stats for %s: %w", stats.DayKey, err)
	}
	return nil
}

func (s *GormStore) GetDailyStats(ctx context.Context, userID, dayKey string) (progression.DailyStats, bool, error) {
	var row dailyStatsRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND day_key = ?", userID, dayKey).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.DailyStats{DayKey: dayKey}, false, nil
	}
	if err != nil {
		return progression.DailyStats{}, false, fmt.Errorf("failed to get daily stats: %w", err)
	}

	return progression.DailyStats{
		DayKey:                row.DayKey,
		ActionsCompleted:      row.ActionsCompleted,
		ActionsTotal:          row.ActionsTotal,
		AffirmationsCompleted: row.AffirmationsCompleted,
		AffirmationsTotal:     row.AffirmationsTotal,
		HabitsCompleted:       row.HabitsCompleted,
		HabitsTotal:           row.HabitsTotal,
		Checkins:              row.Checkins,
		Scans:                 row.Scans,
		ComboCount:            row.ComboCount,
		DailyScore:            row.DailyScore,
		XPEarned:              row.XPEarned,
	}, true, nil
}

func (s *GormStore) GetLedger(ctx context.Context, userID string) (progression.Ledger, error) {
	var row progressLedgerRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.Ledger{}, nil
	}
	if err != nil {
		return progression.Ledger{}, fmt.Errorf("failed to get ledger: %w", err)
	}
	return row.toLedger(), nil
}

func (s *GormStore) SaveLedger(ctx context.Context, userID string, ledger progression.Ledger) (bool, error) {
	saved := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current progressLedgerRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).Take(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := newProgressLedgerRow(userID, ledger)
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				saved = true
				return nil
			}
			// another writer created the row first
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).Take(&current).Error
		}
		if err != nil {
			return err
		}

		if ledger.EventsApplied < current.EventsApplied {
			return nil
		}

		next := newProgressLedgerRow(userID, ledger)
		if current.TotalXP > next.TotalXP {
			next.TotalXP = current.TotalXP
		}
		if current.LongestStreak > next.LongestStreak {
			next.LongestStreak = current.LongestStreak
		}

		err = tx.Model(&progressLedgerRow{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"total_xp":            next.TotalXP,
			"current_streak":      next.CurrentStreak,
			"longest_streak":      next.LongestStreak,
			"last_active_day_key": next.LastActiveDayKey,
			"events_applied":      next.EventsApplied,
			"updated_at":          time.Now().UTC(),
		}).Error
		if err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to save ledger: %w", err)
	}
	return saved, nil
}

func newProgressLedgerRow(userID string, l progression.Ledger) progressLedgerRow {
	return progressLedgerRow{
		UserID:           userID,
		TotalXP:          l.TotalXP,
		CurrentStreak:    l.Current,
		LongestStreak:    l.Longest,
		LastActiveDayKey: l.LastActiveDayKey,
		EventsApplied:    l.EventsApplied,
	}
}

func (r progressLedgerRow) toLedger() progression.Ledger {
	return progression.Ledger{
		TotalXP: r.TotalXP,
		Streak: progression.Streak{
			Current:          r.CurrentStreak,
			Longest:          r.LongestStreak,
			LastActiveDayKey: r.LastActiveDayKey,
		},
		EventsApplied: r.EventsApplied,
	}
}

// ConsumeQuota creates the day's row if missing and then takes a slot with one
// conditional UPDATE, so concurrent callers serialize on the row lock.
func (s *GormStore) ConsumeQuota(ctx context.Context, w QuotaWindow) (QuotaConsumption, error) {
	var out QuotaConsumption

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := quotaRecordRow{
			UserID:   w.UserID,
			DayKey:   w.DayKey,
			MaxScans: w.MaxScans,
			ResetAt:  w.ResetAt.UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		res := tx.Model(&quotaRecordRow{}).
			Where("user_id = ? AND day_key = ?", w.UserID, w.DayKey).
			Where("(? < 0 OR scan_count < ?)", w.MaxScans, w.MaxScans).
			Updates(map[string]interface{}{
				"scan_count": gorm.Expr("scan_count + 1"),
				"max_scans":  w.MaxScans,
			})
		if res.Error != nil {
			return res.Error
		}

		var row quotaRecordRow
		if err := tx.Where("user_id = ? AND day_key = ?", w.UserID, w.DayKey).Take(&row).Error; err != nil {
			return err
		}

		out = QuotaConsumption{
			Allowed:   res.RowsAffected == 1,
			ScanCount: row.ScanCount,
		}
		return nil
	})
	if err != nil {
		return QuotaConsumption{}, fmt.Errorf("failed to consume quota: %w", err)
	}
	return out, nil
}

func (s *GormStore) GetQuotaCount(ctx context.Context, userID, dayKey string) (int, error) {
	var row quotaRecordRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND day_key = ?", userID, dayKey).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get quota count: %w", err)
	}
	return row.ScanCount, nil
}

func (s *GormStore) InsertUnlock(ctx context.Context, u Unlock) (bool, error) {
	row := achievementUnlockRow{
		UserID:        u.UserID,
		AchievementID: u.AchievementID,
		XPBonus:       u.XPBonus,
		UnlockedAt:    u.UnlockedAt.UTC(),
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert unlock %s: %w", u.AchievementID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ListUnlocks(ctx context.Context, userID string) ([]Unlock, error) {
	var rows []achievementUnlockRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at ASC, achievement_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocks: %w", err)
	}

	unlocks := make([]Unlock, 0, len(rows))
	for _, row := range rows {
		unlocks = append(unlocks, Unlock{
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			XPBonus:       row.XPBonus,
			UnlockedAt:    row.UnlockedAt.UTC(),
			Delivered:     row.Delivered,
		})
	}
	return unlocks, nil
}

func (s *GormStore) MarkDelivered(ctx context.Context, userID, achievementID string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&achievementUnlockRow{}).
		Where("user_id = ? AND achievement_id = ? AND delivered = ?", userID, achievementID, false).
		Update("delivered", true)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark %s delivered: %w", achievementID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) SetTargets(ctx context.Context, userID, dayKey string, targets progression.Targets) error {
	row := dailyTargetRow{
		UserID:       userID,
		DayKey:       dayKey,
		Actions:      targets.Actions,
		Affirmations: targets.Affirmations,
		Habits:       targets.Habits,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"actions", "affirmations", "habits"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set targets: %w", err)
	}
	return nil
}

func (s *GormStore) GetTargets(ctx context.Context, userID, dayKey string) (progression.Targets, bool, error) {
	var row dailyTargetRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND day_key = ?", userID, dayKey).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return progression.Targets{}, false, nil
	}
	if err != nil {
		return progression.Targets{}, false, fmt.Errorf("failed to get targets: %w", err)
	}
	return progression.Targets{
		Actions:      row.Actions,
		Affirmations: row.Affirmations,
		Habits:       row.Habits,
	}, true, nil
}

func (s *GormStore) SetGoalProgress(ctx context.Context, userID, goalID string, percent int) error {
	row := goalProgressRow{UserID: userID, GoalID: goalID, Percent: percent}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "goal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set goal progress: %w", err)
	}
	return nil
}

func (s *GormStore) ListGoalProgress(ctx context.Context, userID string) (map[string]int, error) {
	var rows []goalProgressRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list goal progress: %w", err)
	}

	goals := make(map[string]int, len(rows))
	for _, row := range rows {
		goals[row.GoalID] = row.Percent
	}
	return goals, nil
}

func (s *GormStore) GetTier(ctx context.Context, userID string) (Tier, error) {
	var row userTierRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TierFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get tier: %w", err)
	}
	return ParseTier(row.Tier)
}

func (s *GormStore) SetTier(ctx context.Context, userID string, tier Tier) error {
	row := userTierRow{UserID: userID, Tier: string(tier)}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tier", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to set tier: %w", err)
	}
	return nil
}

var _ Store = (*GormStore)(nil)
