// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rule

import (
	"context"
	"fmt"
	"sort"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// Kind is the family an achievement rule belongs to. The set is closed;
// every kind is evaluated by the one switch in AchievementRule.Evaluate.
type Kind string

const (
	KindStreak        Kind = "streak"
	KindXP            Kind = "xp"
	KindCount         Kind = "count"
	KindDailyScore    Kind = "daily_score"
	KindPerfectDay    Kind = "perfect_day"
	KindGoalMilestone Kind = "goal_milestone"
)

// Kinds lists every supported rule kind.
var Kinds = []Kind{KindStreak, KindXP, KindCount, KindDailyScore, KindPerfectDay, KindGoalMilestone}

// AchievementRule is the single Rule implementation behind every Kind.
type AchievementRule struct {
	config    RuleConfig
	kind      Kind
	threshold int64
	category  progression.Category

	milestones  []int
	milestoneXP func(threshold int) int64
}

// NewAchievementRule validates config for its kind.
func NewAchievementRule(config RuleConfig, tables *progression.Tables) (*AchievementRule, error) {
	r := &AchievementRule{
		config: config,
		kind:   Kind(config.Type),
	}

	var key string
	switch r.kind {
	case KindStreak:
		key = "days"
	case KindXP:
		key = "xp"
	case KindDailyScore:
		key = "score"
	case KindCount:
		key = "count"
		c, err := progression.ParseCategory(config.Parameters.String("category", ""))
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", config.ID, err)
		}
		r.category = c
	case KindPerfectDay:
		r.threshold = 3
	case KindGoalMilestone:
		if tables == nil {
			return nil, fmt.Errorf("rule %s: goal milestones need progression tables", config.ID)
		}
		r.milestones = tables.MilestoneThresholds()
		r.milestoneXP = tables.MilestoneXP
		return r, nil
	default:
		return nil, fmt.Errorf("unknown rule type: %s", config.Type)
	}

	if key != "" {
		if !config.Parameters.Whole(key) {
			return nil, fmt.Errorf("rule %s: %s must be a whole number, got %v", config.ID, key, config.Parameters[key])
		}
		r.threshold = int64(config.Parameters.Int(key, 0))
	}
	if r.kind == KindDailyScore && r.threshold > 100 {
		return nil, fmt.Errorf("rule %s: score must be at most 100, got %d", config.ID, r.threshold)
	}
	if r.threshold <= 0 {
		return nil, fmt.Errorf("rule %s: %s threshold must be positive", config.ID, r.kind)
	}
	return r, nil
}

func (r *AchievementRule) ID() string            { return r.config.ID }
func (r *AchievementRule) Config() RuleConfig    { return r.config }
func (r *AchievementRule) Kind() Kind            { return r.kind }
func (r *AchievementRule) SignalTypes() []string { return nil }

func (r *AchievementRule) Name() string {
	if r.config.Name != "" {
		return r.config.Name
	}
	return r.config.ID
}

// Evaluate dispatches on kind. Already-unlocked achievements are still returned
// here except for goal milestones; the Engine filters the rest.
func (r *AchievementRule) Evaluate(ctx context.Context, sig signal.Signal) ([]*Trigger, error) {
	pc := sig.Context()
	if pc == nil {
		return nil, fmt.Errorf("signal %s for user %s has no player context", sig.Type(), sig.UserID())
	}

	var (
		met    bool
		reason string
	)

	switch r.kind {
	case KindStreak:
		met = int64(pc.Ledger.Longest) >= r.threshold
		reason = fmt.Sprintf("reached a %d-day streak", r.threshold)
	case KindXP:
		met = pc.Ledger.TotalXP >= r.threshold
		reason = fmt.Sprintf("earned %d XP", r.threshold)
	case KindCount:
		met = int64(pc.Lifetime[r.category]) >= r.threshold
		reason = fmt.Sprintf("completed %d %s", r.threshold, r.category)
	case KindDailyScore:
		met = int64(pc.Today.DailyScore) >= r.threshold
		reason = fmt.Sprintf("scored %d on %s", pc.Today.DailyScore, pc.DayKey)
	case KindPerfectDay:
		met = pc.Today.ComboCount == 3
		reason = fmt.Sprintf("completed every category on %s", pc.DayKey)
	case KindGoalMilestone:
		return r.goalMilestones(sig, pc), nil
	default:
		return nil, fmt.Errorf("unknown rule type: %s", r.kind)
	}

	if !met {
		return nil, nil
	}

	trigger := NewTrigger(r.config.ID, sig.UserID(), r.config.ID, reason, r.config.Priority).
		WithXPBonus(r.config.XPBonus).
		WithMetadata("kind", string(r.kind)).
		WithMetadata("threshold", r.threshold)
	trigger.Timestamp = sig.Timestamp()

	return []*Trigger{trigger}, nil
}

// goalMilestones fires only the highest threshold each goal has reached, and
// only when no unlock exists for that threshold or a higher one.
func (r *AchievementRule) goalMilestones(sig signal.Signal, pc *signal.PlayerContext) []*Trigger {
	goalIDs := make([]string, 0, len(pc.Goals))
	for id := range pc.Goals {
		goalIDs = append(goalIDs, id)
	}
	sort.Strings(goalIDs)

	var triggers []*Trigger
	for _, goalID := range goalIDs {
		percent := pc.Goals[goalID]

		highest := -1
		for i, th := range r.milestones {
			if percent >= th {
				highest = i
			}
		}
		if highest < 0 {
			continue
		}

		covered := false
		for _, th := range r.milestones[highest:] {
			if pc.HasUnlocked(MilestoneAchievementID(r.config.ID, goalID, th)) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}

		th := r.milestones[highest]
		trigger := NewTrigger(
			r.config.ID,
			sig.UserID(),
			MilestoneAchievementID(r.config.ID, goalID, th),
			fmt.Sprintf("goal %s reached %d%%", goalID, th),
			r.config.Priority,
		).
			WithXPBonus(r.milestoneXP(th)).
			WithMetadata("kind", string(r.kind)).
			WithMetadata("goal_id", goalID).
			WithMetadata("threshold", th)
		trigger.Timestamp = sig.Timestamp()

		triggers = append(triggers, trigger)
	}
	return triggers
}

// MilestoneAchievementID is the unlock id of one goal milestone.
func MilestoneAchievementID(ruleID, goalID string, threshold int) string {
	return fmt.Sprintf("%s:%s:%d", ruleID, goalID, threshold)
}
