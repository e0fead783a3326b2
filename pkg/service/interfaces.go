package service

import (
	"context"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// Service interfaces for the persistence and reward backends the engine uses.
// Every store is keyed by user so all implementations can shard or lock per user.

type EntitlementGranter interface {
	// GrantEntitlement grants an entitlement/item to a player
	GrantEntitlement(ctx context.Context, userID, itemID string, quantity int) error
}

type StatUpdater interface {
	// IncrementStat adds inc to a user statistic
	IncrementStat(ctx context.Context, userID, statCode string, inc float64) error
}

// EventLog is the append-only completion log every derived value is replayed from.
type EventLog interface {
	// AppendEvent stores ev once. A repeated id for the same user is a no-op
	// and reports inserted=false.
	AppendEvent(ctx context.Context, ev progression.Event) (inserted bool, err error)
	ListEvents(ctx context.Context, userID string) ([]progression.Event, error)
	ListDayEvents(ctx context.Context, userID, dayKey string) ([]progression.Event, error)
}

type DailyStatsStore interface {
	UpsertDailyStats(ctx context.Context, userID string, stats progression.DailyStats) error
	// GetDailyStats returns found=false when the day was never written.
	GetDailyStats(ctx context.Context, userID, dayKey string) (stats progression.DailyStats, found bool, err error)
}

type LedgerStore interface {
	GetLedger(ctx context.Context, userID string) (progression.Ledger, error)
	// SaveLedger writes ledger unless the stored one was derived from more
	// events. TotalXP and Longest never go below their stored values.
	SaveLedger(ctx context.Context, userID string, ledger progression.Ledger) (saved bool, err error)
}

type QuotaStore interface {
	// ConsumeQuota atomically takes one slot when the counter is below
	// MaxScans. A negative MaxScans never denies.
	ConsumeQuota(ctx context.Context, w QuotaWindow) (QuotaConsumption, error)
	GetQuotaCount(ctx context.Context, userID, dayKey string) (int, error)
}

type UnlockStore interface {
	InsertUnlock(ctx context.Context, u Unlock) (inserted bool, err error)
	ListUnlocks(ctx context.Context, userID string) ([]Unlock, error)
	// MarkDelivered reports whether this call was the one that flipped the flag.
	MarkDelivered(ctx context.Context, userID, achievementID string) (bool, error)
}

type TargetStore interface {
	SetTargets(ctx context.Context, userID, dayKey string, targets progression.Targets) error
	GetTargets(ctx context.Context, userID, dayKey string) (targets progression.Targets, found bool, err error)
}

type GoalStore interface {
	SetGoalProgress(ctx context.Context, userID, goalID string, percent int) error
	ListGoalProgress(ctx context.Context, userID string) (map[string]int, error)
}

type TierLookup interface {
	GetTier(ctx context.Context, userID string) (Tier, error)
}

type TierStore interface {
	TierLookup
	SetTier(ctx context.Context, userID string, tier Tier) error
}

// Store is the full persistence surface of the engine.
type Store interface {
	EventLog
	DailyStatsStore
	LedgerStore
	QuotaStore
	UnlockStore
	TargetStore
	GoalStore
	TierStore

	Ping(ctx context.Context) error
	Close() error
}
