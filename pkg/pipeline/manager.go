package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/common"
	"github.com/AccelByte/extend-progression-engine/pkg/metrics"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/quota"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

const (
	// DefaultMaxClockSkew is how far in the future an event may be stamped.
	DefaultMaxClockSkew = 5 * time.Minute

	// maxEvaluationPasses bounds re-evaluation after unlock bonuses change the ledger.
	maxEvaluationPasses = 5
)

// TierCache is implemented by tier lookups that cache and must forget a user on SetTier.
type TierCache interface {
	Invalidate(userID string)
}

// Manager orchestrates the engine:
// Event → Signal (replayed PlayerContext) → Rules → Unlocks → Actions
type Manager struct {
	store       service.Store
	processor   *signal.Processor
	engine      *rule.Engine
	executor    *action.Executor
	tracker     *quota.Tracker
	ruleActions map[string][]string // Maps rule ID to action IDs

	tierCache    TierCache
	maxClockSkew time.Duration
}

// NewManager creates a new pipeline manager with all required components.
// ruleActions maps rule IDs to the action IDs they should trigger.
func NewManager(
	store service.Store,
	processor *signal.Processor,
	engine *rule.Engine,
	executor *action.Executor,
	tracker *quota.Tracker,
	ruleActions map[string][]string,
) *Manager {
	if ruleActions == nil {
		ruleActions = make(map[string][]string)
	}

	return &Manager{
		store:        store,
		processor:    processor,
		engine:       engine,
		executor:     executor,
		tracker:      tracker,
		ruleActions:  ruleActions,
		maxClockSkew: DefaultMaxClockSkew,
	}
}

// WithTierCache sets the cache SetTier invalidates.
func (m *Manager) WithTierCache(cache TierCache) *Manager {
	m.tierCache = cache
	return m
}

// WithMaxClockSkew sets how far in the future RecordEvent accepts timestamps.
func (m *Manager) WithMaxClockSkew(d time.Duration) *Manager {
	m.maxClockSkew = d
	return m
}

// RecordEventInput is one completion reported by a client.
// ID is optional; supplying it makes retries idempotent. A zero OccurredAt means now.
type RecordEventInput struct {
	UserID     string    `json:"userId"`
	ID         string    `json:"id"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurredAt"`
}

// RecordResult is the derived state right after an event was recorded.
type RecordResult struct {
	Event      progression.Event      `json:"event"`
	Inserted   bool                   `json:"inserted"`
	XP         int64                  `json:"xp"`
	Today      progression.DailyStats `json:"today"`
	Ledger     ProgressLedger         `json:"ledger"`
	NewUnlocks []service.Unlock       `json:"newUnlocks"`
}

// ProgressLedger is the caller-facing ledger with its level view.
// CurrentStreak reads 0 once the streak is broken.
type ProgressLedger struct {
	UserID           string                `json:"userId"`
	TotalXP          int64                 `json:"totalXP"`
	CurrentLevel     int                   `json:"currentLevel"`
	CurrentStreak    int                   `json:"currentStreak"`
	LongestStreak    int                   `json:"longestStreak"`
	LastActiveDayKey string                `json:"lastActiveDayKey"`
	Level            progression.LevelInfo `json:"levelInfo"`
}

// RecordEvent appends one completion event and recomputes everything derived from it.
// Achievement evaluation is best effort and never fails the call.
func (m *Manager) RecordEvent(ctx context.Context, in RecordEventInput) (*RecordResult, error) {
	defer observe("record_event")()

	scope := common.GetScopeFromContext(ctx, "pipeline.RecordEvent").WithUser(in.UserID)
	defer scope.Finish()

	ev, err := m.newEvent(in)
	if err != nil {
		scope.TraceError(err)
		return nil, err
	}

	inserted, err := m.store.AppendEvent(scope.Ctx, ev)
	if err != nil {
		scope.TraceError(err)
		scope.Log.Errorf("failed to append event %s: %v", ev.ID, err)
		return nil, persistence("append event", err)
	}

	result := "new"
	if !inserted {
		result = "duplicate"
		scope.Log.Infof("event %s already recorded, recomputing only", ev.ID)
	}
	metrics.EventsRecordedTotal.WithLabelValues(string(ev.Category), result).Inc()
	scope.Tag("event.category", string(ev.Category))
	scope.Tag("event.inserted", inserted)

	sig, err := m.processor.ProcessEventRecorded(scope.Ctx, ev)
	if err != nil {
		scope.TraceError(err)
		return nil, &PersistenceError{Op: "derive progress", EventID: ev.ID, Err: err}
	}
	pc := sig.Context()
	ev = sig.Event

	if err := m.persistDerived(scope.Ctx, pc, ev.DayKey); err != nil {
		scope.TraceError(err)
		return nil, &PersistenceError{Op: "save derived progress", EventID: ev.ID, Err: err}
	}

	if inserted {
		metrics.XPAwardedTotal.WithLabelValues("event").Add(float64(sig.XP))
	}
	scope.Log.Infof("recorded %s event %s on %s: xp=%d combo=%d score=%d streak=%d",
		ev.Category, ev.ID, ev.DayKey, sig.XP, pc.Today.ComboCount, pc.Today.DailyScore, pc.Ledger.Current)

	unlocks, pc := m.evaluate(scope, sig)

	return &RecordResult{
		Event:      ev,
		Inserted:   inserted,
		XP:         sig.XP,
		Today:      pc.Today,
		Ledger:     m.ledgerView(pc, progression.Ledger{}),
		NewUnlocks: unlocks,
	}, nil
}

func (m *Manager) newEvent(in RecordEventInput) (progression.Event, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return progression.Event{}, invalid("userId", "must not be empty")
	}

	category, err := progression.ParseCategory(in.Category)
	if err != nil {
		return progression.Event{}, invalid("category", "%v", err)
	}

	now := m.processor.Now()
	at := in.OccurredAt
	if at.IsZero() {
		at = now
	}
	if at.After(now.Add(m.maxClockSkew)) {
		return progression.Event{}, invalid("occurredAt", "%s is in the future", at.Format(time.RFC3339))
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	return progression.Event{
		ID:         id,
		UserID:     userID,
		Category:   category,
		OccurredAt: at.UTC(),
		DayKey:     m.processor.Calendar().Key(at),
	}, nil
}

// persistDerived upserts the stats of today, of since and of every derived day
// after since, then the versioned ledger. An empty since rewrites every derived day.
// A backdated event moves the streak, and so the XP, of all the days after it.
func (m *Manager) persistDerived(ctx context.Context, pc *signal.PlayerContext, since string) error {
	days := []string{pc.DayKey}
	if since != "" && since != pc.DayKey {
		days = append(days, since)
	}
	var later []string
	for day := range pc.Derivation.Days {
		if day == pc.DayKey || day == since {
			continue
		}
		if since == "" || day > since {
			later = append(later, day)
		}
	}
	sort.Strings(later)
	days = append(days, later...)

	for _, day := range days {
		stats, err := m.processor.DayStats(ctx, pc, day)
		if err != nil {
			return err
		}
		if err := m.store.UpsertDailyStats(ctx, pc.UserID, stats); err != nil {
			return fmt.Errorf("failed to upsert daily stats for %s: %w", day, err)
		}
	}

	saved, err := m.store.SaveLedger(ctx, pc.UserID, pc.Ledger)
	if err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	if !saved {
		logrus.Debugf("ledger of user %s not saved: a newer derivation is stored", pc.UserID)
	}
	return nil
}

// evaluate runs the rules, writes new unlocks and their XP, and runs reward actions.
// Failures are logged; the caller always gets the freshest context it has.
func (m *Manager) evaluate(scope *common.Scope, sig signal.Signal) ([]service.Unlock, *signal.PlayerContext) {
	ctx := scope.Ctx
	pc := sig.Context()
	unlocks := make([]service.Unlock, 0)

	for pass := 0; pass < maxEvaluationPasses; pass++ {
		triggers, err := m.engine.Evaluate(ctx, sig)
		if err != nil {
			scope.Log.Errorf("achievement evaluation failed: %v", err)
			return unlocks, pc
		}
		if len(triggers) == 0 {
			return unlocks, pc
		}

		written := 0
		for _, trigger := range triggers {
			u := service.Unlock{
				UserID:        pc.UserID,
				AchievementID: trigger.AchievementID,
				XPBonus:       trigger.XPBonus,
				UnlockedAt:    m.processor.Now().UTC(),
			}

			inserted, err := m.store.InsertUnlock(ctx, u)
			if err != nil {
				scope.Log.Errorf("failed to write unlock %s: %v", u.AchievementID, err)
				continue
			}
			if !inserted {
				// a concurrent request unlocked it first
				continue
			}

			written++
			unlocks = append(unlocks, u)
			metrics.AchievementsUnlockedTotal.WithLabelValues(trigger.RuleID).Inc()
			metrics.XPAwardedTotal.WithLabelValues("achievement").Add(float64(u.XPBonus))
			scope.Log.Infof("unlocked %s (+%d XP): %s", u.AchievementID, u.XPBonus, trigger.Reason)

			m.executeActions(ctx, trigger, pc)
		}

		if written == 0 {
			return unlocks, pc
		}

		// Unlock bonuses change the ledger, which may satisfy further xp rules.
		next, err := m.processor.ProcessRecompute(ctx, pc.UserID)
		if err != nil {
			scope.Log.Errorf("failed to recompute after unlocks: %v", err)
			return unlocks, pc
		}
		sig = next
		pc = next.Context()

		if _, err := m.store.SaveLedger(ctx, pc.UserID, pc.Ledger); err != nil {
			scope.Log.Errorf("failed to save ledger after unlocks: %v", err)
		}
	}

	scope.Log.Warnf("achievement evaluation stopped after %d passes", maxEvaluationPasses)
	return unlocks, pc
}

func (m *Manager) executeActions(ctx context.Context, trigger *rule.Trigger, pc *signal.PlayerContext) {
	actionIDs := m.ruleActions[trigger.RuleID]
	if len(actionIDs) == 0 || m.executor == nil {
		return
	}

	results, err := m.executor.ExecuteMultiple(ctx, actionIDs, trigger, pc, true)
	if err != nil {
		logrus.Errorf("reward actions for %s failed: %v", trigger.AchievementID, err)
	}

	for _, result := range results {
		metrics.ActionExecutionsTotal.WithLabelValues(result.ActionID, string(result.Outcome)).Inc()
	}
}

// GetTodaySummary returns today's finalized stats and lazily persists them.
func (m *Manager) GetTodaySummary(ctx context.Context, userID string) (progression.DailyStats, error) {
	defer observe("get_today_summary")()

	pc, scope, err := m.load(ctx, "pipeline.GetTodaySummary", userID)
	if err != nil {
		return progression.DailyStats{}, err
	}
	defer scope.Finish()

	stored, found, err := m.store.GetDailyStats(scope.Ctx, pc.UserID, pc.DayKey)
	if err != nil {
		scope.Log.Warnf("failed to read stored stats of %s: %v", pc.DayKey, err)
	} else if !found || stored != pc.Today {
		if err := m.store.UpsertDailyStats(scope.Ctx, pc.UserID, pc.Today); err != nil {
			scope.Log.Warnf("failed to persist stats of %s: %v", pc.DayKey, err)
		}
	}

	return pc.Today, nil
}

// GetProgressLedger returns the user's ledger and level.
// TotalXP and LongestStreak never read below what was stored before.
func (m *Manager) GetProgressLedger(ctx context.Context, userID string) (*ProgressLedger, error) {
	defer observe("get_progress_ledger")()

	pc, scope, err := m.load(ctx, "pipeline.GetProgressLedger", userID)
	if err != nil {
		return nil, err
	}
	defer scope.Finish()

	stored, err := m.store.GetLedger(scope.Ctx, pc.UserID)
	if err != nil {
		scope.TraceError(err)
		return nil, persistence("get ledger", err)
	}

	if _, err := m.store.SaveLedger(scope.Ctx, pc.UserID, pc.Ledger); err != nil {
		scope.Log.Warnf("failed to persist ledger: %v", err)
	}

	view := m.ledgerView(pc, stored)
	return &view, nil
}

func (m *Manager) ledgerView(pc *signal.PlayerContext, stored progression.Ledger) ProgressLedger {
	ledger := pc.Ledger
	if stored.TotalXP > ledger.TotalXP {
		ledger.TotalXP = stored.TotalXP
	}
	if stored.Longest > ledger.Longest {
		ledger.Longest = stored.Longest
	}

	level := m.processor.Tables().LevelFromXP(ledger.TotalXP)
	return ProgressLedger{
		UserID:           pc.UserID,
		TotalXP:          ledger.TotalXP,
		CurrentLevel:     level.Level,
		CurrentStreak:    ledger.Streak.Effective(m.processor.Calendar(), pc.DayKey),
		LongestStreak:    ledger.Longest,
		LastActiveDayKey: ledger.LastActiveDayKey,
		Level:            level,
	}
}

// TryConsumeQuota takes one scan slot. A denial is a normal result; any error
// wraps quota.ErrConsumeFailed and must be treated as a denial.
func (m *Manager) TryConsumeQuota(ctx context.Context, userID string) (quota.Result, error) {
	defer observe("try_consume_quota")()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return quota.Result{}, invalid("userId", "must not be empty")
	}

	scope := common.GetScopeFromContext(ctx, "pipeline.TryConsumeQuota").WithUser(userID)
	defer scope.Finish()

	res, err := m.tracker.TryConsume(scope.Ctx, userID)
	if err != nil {
		scope.TraceError(err)
		metrics.QuotaDecisionsTotal.WithLabelValues("unknown", "error").Inc()
		return quota.Result{}, persistence("consume quota", err)
	}

	outcome := "allowed"
	if !res.Allowed {
		outcome = "denied"
		scope.Log.Infof("scan denied: %d/%d used on %s", res.ScanCount, res.MaxScans, res.DayKey)
	}
	metrics.QuotaDecisionsTotal.WithLabelValues(res.Tier, outcome).Inc()
	scope.Tag("quota.allowed", res.Allowed)
	scope.Tag("quota.scan_count", res.ScanCount)

	return res, nil
}

// GetQuotaStatus reports today's quota without consuming.
func (m *Manager) GetQuotaStatus(ctx context.Context, userID string) (quota.Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return quota.Result{}, invalid("userId", "must not be empty")
	}

	res, err := m.tracker.Status(ctx, userID)
	if err != nil {
		return quota.Result{}, persistence("get quota status", err)
	}
	return res, nil
}

// GetNewlyUnlockedAchievements re-runs evaluation, then returns every unlock
// not yet delivered and marks it delivered. Each unlock is returned once.
func (m *Manager) GetNewlyUnlockedAchievements(ctx context.Context, userID string) ([]service.Unlock, error) {
	defer observe("get_new_unlocks")()

	sig, scope, err := m.recompute(ctx, "pipeline.GetNewlyUnlockedAchievements", userID)
	if err != nil {
		return nil, err
	}
	defer scope.Finish()

	// pick up anything a failed evaluation left behind
	m.evaluate(scope, sig)

	all, err := m.store.ListUnlocks(scope.Ctx, sig.UserID())
	if err != nil {
		scope.TraceError(err)
		return nil, persistence("list unlocks", err)
	}

	fresh := make([]service.Unlock, 0)
	for _, u := range all {
		if u.Delivered {
			continue
		}
		flipped, err := m.store.MarkDelivered(scope.Ctx, u.UserID, u.AchievementID)
		if err != nil {
			scope.TraceError(err)
			return fresh, persistence("mark unlock delivered", err)
		}
		if !flipped {
			// delivered by a concurrent call
			continue
		}
		u.Delivered = true
		fresh = append(fresh, u)
	}

	return fresh, nil
}

// SetDailyTargets stores the planned totals of a day (today when dayKey is empty)
// and returns that day's recomputed stats.
func (m *Manager) SetDailyTargets(ctx context.Context, userID, dayKey string, targets progression.Targets) (progression.DailyStats, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return progression.DailyStats{}, invalid("userId", "must not be empty")
	}
	if targets.Actions < 0 || targets.Affirmations < 0 || targets.Habits < 0 {
		return progression.DailyStats{}, invalid("targets", "totals must be non-negative")
	}
	if dayKey == "" {
		dayKey = m.processor.Today()
	} else if _, err := m.processor.Calendar().Parse(dayKey); err != nil {
		return progression.DailyStats{}, invalid("dayKey", "%v", err)
	}

	scope := common.GetScopeFromContext(ctx, "pipeline.SetDailyTargets").WithUser(userID)
	defer scope.Finish()

	if err := m.store.SetTargets(scope.Ctx, userID, dayKey, targets); err != nil {
		scope.TraceError(err)
		return progression.DailyStats{}, persistence("set targets", err)
	}

	sig, err := m.processor.ProcessRecompute(scope.Ctx, userID)
	if err != nil {
		scope.TraceError(err)
		return progression.DailyStats{}, persistence("derive progress", err)
	}
	if err := m.persistDerived(scope.Ctx, sig.Context(), dayKey); err != nil {
		scope.TraceError(err)
		return progression.DailyStats{}, persistence("save derived progress", err)
	}

	stats, err := m.processor.DayStats(scope.Ctx, sig.Context(), dayKey)
	if err != nil {
		return progression.DailyStats{}, persistence("derive day stats", err)
	}

	// a new target can move today's score over a threshold
	m.evaluate(scope, sig)

	return stats, nil
}

// UpdateGoalProgress stores a goal's progress and returns the milestone unlocks it caused.
func (m *Manager) UpdateGoalProgress(ctx context.Context, userID, goalID string, percent int) ([]service.Unlock, error) {
	defer observe("update_goal_progress")()

	userID = strings.TrimSpace(userID)
	goalID = strings.TrimSpace(goalID)
	if userID == "" {
		return nil, invalid("userId", "must not be empty")
	}
	if goalID == "" {
		return nil, invalid("goalId", "must not be empty")
	}
	if strings.Contains(goalID, ":") {
		return nil, invalid("goalId", "must not contain ':'")
	}
	if percent < 0 || percent > 100 {
		return nil, invalid("percent", "%d is outside 0-100", percent)
	}

	scope := common.GetScopeFromContext(ctx, "pipeline.UpdateGoalProgress").WithUser(userID)
	defer scope.Finish()

	if err := m.store.SetGoalProgress(scope.Ctx, userID, goalID, percent); err != nil {
		scope.TraceError(err)
		return nil, persistence("set goal progress", err)
	}

	sig, err := m.processor.ProcessGoalProgress(scope.Ctx, userID, goalID, percent)
	if err != nil {
		scope.TraceError(err)
		return nil, persistence("derive progress", err)
	}

	unlocks, _ := m.evaluate(scope, sig)
	return unlocks, nil
}

// SetTier stores the subscription tier of a user.
func (m *Manager) SetTier(ctx context.Context, userID, tier string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invalid("userId", "must not be empty")
	}
	t, err := service.ParseTier(tier)
	if err != nil {
		return invalid("tier", "%v", err)
	}

	if err := m.store.SetTier(ctx, userID, t); err != nil {
		return persistence("set tier", err)
	}
	if m.tierCache != nil {
		m.tierCache.Invalidate(userID)
	}

	logrus.Infof("tier of user %s set to %s", userID, t)
	return nil
}

// GetLevelTable returns the configured level table.
func (m *Manager) GetLevelTable() []progression.LevelEntry {
	return m.processor.Tables().Levels()
}

// Recompute re-derives and persists a user's state and re-runs achievement evaluation.
func (m *Manager) Recompute(ctx context.Context, userID string) ([]service.Unlock, error) {
	sig, scope, err := m.recompute(ctx, "pipeline.Recompute", userID)
	if err != nil {
		return nil, err
	}
	defer scope.Finish()

	if err := m.persistDerived(scope.Ctx, sig.Context(), ""); err != nil {
		scope.TraceError(err)
		return nil, persistence("save derived progress", err)
	}

	unlocks, _ := m.evaluate(scope, sig)
	return unlocks, nil
}

// Close waits for in-flight async reward actions.
func (m *Manager) Close() {
	if m.executor != nil {
		m.executor.Wait()
	}
}

func (m *Manager) load(ctx context.Context, name, userID string) (*signal.PlayerContext, *common.Scope, error) {
	sig, scope, err := m.recompute(ctx, name, userID)
	if err != nil {
		return nil, nil, err
	}
	return sig.Context(), scope, nil
}

// recompute validates userID and derives a fresh signal. On success the
// caller owns the returned scope.
func (m *Manager) recompute(ctx context.Context, name, userID string) (signal.Signal, *common.Scope, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, invalid("userId", "must not be empty")
	}

	scope := common.GetScopeFromContext(ctx, name).WithUser(userID)

	sig, err := m.processor.ProcessRecompute(scope.Ctx, userID)
	if err != nil {
		scope.TraceError(err)
		scope.Finish()
		return nil, nil, persistence("derive progress", err)
	}
	return sig, scope, nil
}

func observe(operation string) func() {
	timer := prometheus.NewTimer(metrics.OperationDuration.WithLabelValues(operation))
	return func() { timer.ObserveDuration() }
}
