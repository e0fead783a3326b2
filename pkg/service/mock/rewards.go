package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// EntitlementGranter is a mock implementation of service.EntitlementGranter for testing
type EntitlementGranter struct {
	// GrantEntitlementFunc is called when GrantEntitlement is invoked
	GrantEntitlementFunc func(ctx context.Context, userID, itemID string, quantity int) error

	Error error

	mu    sync.Mutex
	Calls []GrantEntitlementCall
}

// GrantEntitlementCall tracks parameters for GrantEntitlement calls
type GrantEntitlementCall struct {
	UserID   string
	ItemID   string
	Quantity int
}

// GrantEntitlement records the call and returns the mocked result
func (m *EntitlementGranter) GrantEntitlement(ctx context.Context, userID, itemID string, quantity int) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, GrantEntitlementCall{UserID: userID, ItemID: itemID, Quantity: quantity})
	m.mu.Unlock()

	if m.GrantEntitlementFunc != nil {
		return m.GrantEntitlementFunc(ctx, userID, itemID, quantity)
	}
	return m.Error
}

// CallCount returns how many grants were attempted
func (m *EntitlementGranter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// StatUpdater is a mock implementation of service.StatUpdater for testing
type StatUpdater struct {
	IncrementStatFunc func(ctx context.Context, userID, statCode string, inc float64) error

	Error error

	mu    sync.Mutex
	Calls []IncrementStatCall
}

// IncrementStatCall tracks parameters for IncrementStat calls
type IncrementStatCall struct {
	UserID   string
	StatCode string
	Inc      float64
}

// IncrementStat records the call and returns the mocked result
func (m *StatUpdater) IncrementStat(ctx context.Context, userID, statCode string, inc float64) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, IncrementStatCall{UserID: userID, StatCode: statCode, Inc: inc})
	m.mu.Unlock()

	if m.IncrementStatFunc != nil {
		return m.IncrementStatFunc(ctx, userID, statCode, inc)
	}
	return m.Error
}

// CallCount returns how many increments were attempted
func (m *StatUpdater) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// TierLookup is a mock implementation of service.TierLookup for testing
type TierLookup struct {
	Tiers map[string]service.Tier
	Error error

	mu    sync.Mutex
	Calls int
}

// GetTier returns the mapped tier, free when the user is not mapped
func (m *TierLookup) GetTier(ctx context.Context, userID string) (service.Tier, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.Error != nil {
		return "", m.Error
	}
	if tier, ok := m.Tiers[userID]; ok {
		return tier, nil
	}
	return service.TierFree, nil
}

// CallCount returns how many lookups reached the mock
func (m *TierLookup) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

var (
	_ service.EntitlementGranter = (*EntitlementGranter)(nil)
	_ service.StatUpdater        = (*StatUpdater)(nil)
	_ service.TierLookup         = (*TierLookup)(nil)
)
