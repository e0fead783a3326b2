// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// Unlimited is the max-scans sentinel of tiers without a daily cap.
const Unlimited = -1

// ErrConsumeFailed wraps every failure of TryConsume. Callers must treat it as a deny.
var ErrConsumeFailed = errors.New("quota consume failed")

// DefaultLimits are the daily scan allowances per tier.
var DefaultLimits = map[service.Tier]int{
	service.TierFree: 5,
	service.Tier1:    20,
	service.Tier2:    50,
	service.Tier3:    Unlimited,
}

// Result is the caller-facing view of a user's scan quota for one day.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	MaxScans  int       `json:"maxScans"`
	ScanCount int       `json:"scanCount"`
	Unlimited bool      `json:"unlimited"`
	ResetAt   time.Time `json:"resetAt"`
	DayKey    string    `json:"dayKey"`
	Tier      string    `json:"tier"`
}

// Tracker owns the per-user, per-day scan counter.
// Check-and-increment is always delegated to the store's atomic primitive.
type Tracker struct {
	store  service.QuotaStore
	tiers  service.TierLookup
	cal    *daykey.Calendar
	clock  daykey.Clock
	limits map[service.Tier]int
}

type TrackerConfig struct {
	// Limits overrides DefaultLimits per tier when set.
	Limits map[service.Tier]int
	Clock  daykey.Clock
}

func NewTracker(store service.QuotaStore, tiers service.TierLookup, cal *daykey.Calendar, cfg TrackerConfig) *Tracker {
	limits := make(map[service.Tier]int, len(DefaultLimits))
	for tier, limit := range DefaultLimits {
		limits[tier] = limit
	}
	for tier, limit := range cfg.Limits {
		limits[tier] = limit
	}

	clock := cfg.Clock
	if clock == nil {
		clock = daykey.SystemClock
	}

	return &Tracker{
		store:  store,
		tiers:  tiers,
		cal:    cal,
		clock:  clock,
		limits: limits,
	}
}

// MaxScans returns the daily allowance of a tier. Unknown tiers get the free allowance.
func (t *Tracker) MaxScans(tier service.Tier) int {
	if limit, ok := t.limits[tier]; ok {
		return limit
	}
	return t.limits[service.TierFree]
}

// TryConsume takes one scan slot for today if there is room.
// A denied scan is a normal result; any error means the scan must not proceed.
func (t *Tracker) TryConsume(ctx context.Context, userID string) (Result, error) {
	now := t.clock()
	tier, limit, err := t.resolve(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConsumeFailed, err)
	}

	day := t.cal.Key(now)
	resetAt := t.cal.NextMidnight(now)

	consumed, err := t.store.ConsumeQuota(ctx, service.QuotaWindow{
		UserID:   userID,
		DayKey:   day,
		MaxScans: limit,
		ResetAt:  resetAt,
		TTL:      resetAt.Sub(now) + 24*time.Hour,
	})
	if err != nil {
		logrus.Errorf("quota consume failed for user %s on %s: %v", userID, day, err)
		return Result{}, fmt.Errorf("%w: %v", ErrConsumeFailed, err)
	}

	res := newResult(tier, limit, consumed.ScanCount, day, resetAt)
	res.Allowed = consumed.Allowed

	logrus.Debugf("quota consume user=%s day=%s allowed=%v count=%d limit=%d",
		userID, day, res.Allowed, res.ScanCount, limit)
	return res, nil
}

// Status reports today's quota without consuming. Allowed tells whether a
// scan would be accepted right now.
func (t *Tracker) Status(ctx context.Context, userID string) (Result, error) {
	now := t.clock()
	tier, limit, err := t.resolve(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	day := t.cal.Key(now)
	count, err := t.store.GetQuotaCount(ctx, userID, day)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read quota: %w", err)
	}

	res := newResult(tier, limit, count, day, t.cal.NextMidnight(now))
	res.Allowed = res.Unlimited || res.Remaining > 0
	return res, nil
}

func (t *Tracker) resolve(ctx context.Context, userID string) (service.Tier, int, error) {
	tier, err := t.tiers.GetTier(ctx, userID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to look up tier of user %s: %w", userID, err)
	}
	return tier, t.MaxScans(tier), nil
}

func newResult(tier service.Tier, limit, count int, day string, resetAt time.Time) Result {
	res := Result{
		MaxScans:  limit,
		ScanCount: count,
		ResetAt:   resetAt,
		DayKey:    day,
		Tier:      string(tier),
	}
	if limit < 0 {
		res.Unlimited = true
		res.Remaining = Unlimited
		return res
	}
	res.Remaining = limit - count
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res
}
