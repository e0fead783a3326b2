// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"fmt"
	"strings"
	"time"
)

// Tier is the subscription tier that decides the daily scan allowance.
type Tier string

const (
	TierFree Tier = "free"
	Tier1    Tier = "tier1"
	Tier2    Tier = "tier2"
	Tier3    Tier = "tier3"
)

// ParseTier normalises a tier name. An empty name is the free tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "":
		return TierFree, nil
	case TierFree, Tier1, Tier2, Tier3:
		return t, nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

// Unlock is a write-once record of an achievement a user earned.
// Delivered flips once the client has been told about it.
type Unlock struct {
	UserID        string    `json:"userId"`
	AchievementID string    `json:"achievementId"`
	XPBonus       int64     `json:"xpBonus"`
	UnlockedAt    time.Time `json:"unlockedAt"`
	Delivered     bool      `json:"delivered"`
}

// QuotaWindow identifies the counter a consume call works against.
// TTL is how long the counter must outlive its day, for stores that expire keys.
type QuotaWindow struct {
	UserID   string
	DayKey   string
	MaxScans int
	ResetAt  time.Time
	TTL      time.Duration
}

// QuotaConsumption is the outcome of one atomic check-and-increment.
// ScanCount is the counter value after the call.
type QuotaConsumption struct {
	Allowed   bool
	ScanCount int
}
