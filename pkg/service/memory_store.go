package service

import (
	"context"
	"sort"
	"sync"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

// MemoryStore implements Store in process memory behind one mutex.
// Used for local runs and tests; nothing survives a restart.
type MemoryStore struct {
	mu sync.Mutex

	events  map[string]map[string]progression.Event
	daily   map[string]map[string]progression.DailyStats
	ledgers map[string]progression.Ledger
	quotas  map[string]map[string]int
	unlocks map[string]map[string]Unlock
	targets map[string]map[string]progression.Targets
	goals   map[string]map[string]int
	tiers   map[string]Tier
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:  make(map[string]map[string]progression.Event),
		daily:   make(map[string]map[string]progression.DailyStats),
		ledgers: make(map[string]progression.Ledger),
		quotas:  make(map[string]map[string]int),
		unlocks: make(map[string]map[string]Unlock),
		targets: make(map[string]map[string]progression.Targets),
		goals:   make(map[string]map[string]int),
		tiers:   make(map[string]Tier),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) AppendEvent(ctx context.Context, ev progression.Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.events[ev.UserID]
	if !ok {
		byID = make(map[string]progression.Event)
		m.events[ev.UserID] = byID
	}
	if _, exists := byID[ev.ID]; exists {
		return false, nil
	}
	byID[ev.ID] = ev
	return true, nil
}

func (m *MemoryStore) ListEvents(ctx context.Context, userID string) ([]progression.Event, error) {
	return m.listEvents(userID, ""), nil
}

func (m *MemoryStore) ListDayEvents(ctx context.Context, userID, dayKey string) ([]progression.Event, error) {
	return m.listEvents(userID, dayKey), nil
}

func (m *MemoryStore) listEvents(userID, dayKey string) []progression.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []progression.Event
	for _, ev := range m.events[userID] {
		if dayKey == "" || ev.DayKey == dayKey {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OccurredAt.Before(events[j].OccurredAt)
		}
		return events[i].ID < events[j].ID
	})
	return events
}

func (m *MemoryStore) UpsertDailyStats(ctx context.Context, userID string, stats progression.DailyStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.daily[userID] == nil {
		m.daily[userID] = make(map[string]progression.DailyStats)
	}
	m.daily[userID][stats.DayKey] = stats
	return nil
}

func (m *MemoryStore) GetDailyStats(ctx context.Context, userID, dayKey string) (progression.DailyStats, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.daily[userID][dayKey]
	if !ok {
		return progression.DailyStats{DayKey: dayKey}, false, nil
	}
	return stats, true, nil
}

func (m *MemoryStore) GetLedger(ctx context.Context, userID string) (progression.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ledgers[userID], nil
}

func (m *MemoryStore) SaveLedger(ctx context.Context, userID string, ledger progression.Ledger) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.ledgers[userID]
	if ok {
		if ledger.EventsApplied < current.EventsApplied {
			return false, nil
		}
		if current.TotalXP > ledger.TotalXP {
			ledger.TotalXP = current.TotalXP
		}
		if current.Longest > ledger.Longest {
			ledger.Longest = current.Longest
		}
	}
	m.ledgers[userID] = ledger
	return true, nil
}

func (m *MemoryStore) ConsumeQuota(ctx context.Context, w QuotaWindow) (QuotaConsumption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quotas[w.UserID] == nil {
		m.quotas[w.UserID] = make(map[string]int)
	}
	count := m.quotas[w.UserID][w.DayKey]
	if w.MaxScans >= 0 && count >= w.MaxScans {
		return QuotaConsumption{Allowed: false, ScanCount: count}, nil
	}

	count++
	m.quotas[w.UserID][w.DayKey] = count
	return QuotaConsumption{Allowed: true, ScanCount: count}, nil
}

func (m *MemoryStore) GetQuotaCount(ctx context.Context, userID, dayKey string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.quotas[userID][dayKey], nil
}

func (m *MemoryStore) InsertUnlock(ctx context.Context, u Unlock) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unlocks[u.UserID] == nil {
		m.unlocks[u.UserID] = make(map[string]Unlock)
	}
	if _, exists := m.unlocks[u.UserID][u.AchievementID]; exists {
		return false, nil
	}
	u.Delivered = false
	m.unlocks[u.UserID][u.AchievementID] = u
	return true, nil
}

func (m *MemoryStore) ListUnlocks(ctx context.Context, userID string) ([]Unlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlocks := make([]Unlock, 0, len(m.unlocks[userID]))
	for _, u := range m.unlocks[userID] {
		unlocks = append(unlocks, u)
	}
	sortUnlocks(unlocks)
	return unlocks, nil
}

func (m *MemoryStore) MarkDelivered(ctx context.Context, userID, achievementID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.unlocks[userID][achievementID]
	if !ok || u.Delivered {
		return false, nil
	}
	u.Delivered = true
	m.unlocks[userID][achievementID] = u
	return true, nil
}

func (m *MemoryStore) SetTargets(ctx context.Context, userID, dayKey string, targets progression.Targets) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.targets[userID] == nil {
		m.targets[userID] = make(map[string]progression.Targets)
	}
	m.targets[userID][dayKey] = targets
	return nil
}

func (m *MemoryStore) GetTargets(ctx context.Context, userID, dayKey string) (progression.Targets, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	targets, ok := m.targets[userID][dayKey]
	return targets, ok, nil
}

func (m *MemoryStore) SetGoalProgress(ctx context.Context, userID, goalID string, percent int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.goals[userID] == nil {
		m.goals[userID] = make(map[string]int)
	}
	m.goals[userID][goalID] = percent
	return nil
}

func (m *MemoryStore) ListGoalProgress(ctx context.Context, userID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	goals := make(map[string]int, len(m.goals[userID]))
	for id, pct := range m.goals[userID] {
		goals[id] = pct
	}
	return goals, nil
}

func (m *MemoryStore) GetTier(ctx context.Context, userID string) (Tier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tier, ok := m.tiers[userID]; ok {
		return tier, nil
	}
	return TierFree, nil
}

func (m *MemoryStore) SetTier(ctx context.Context, userID string, tier Tier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tiers[userID] = tier
	return nil
}

var _ Store = (*MemoryStore)(nil)
