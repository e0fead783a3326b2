// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/quota"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// InitSignalProcessor creates the processor that replays a user's event log
// into the player context every rule evaluates.
//
// ============================================================
// DEVELOPER: All derived state comes from the event log.
// ============================================================
// The processor never caches: daily stats, the ledger and the
// unlock bonus XP are recomputed from the store on every call.
// Change scoring or XP through config/engine.yaml tables, not here.
// ============================================================
func InitSignalProcessor(
	store signal.ContextStore,
	tables *progression.Tables,
	cal *daykey.Calendar,
	namespace string,
) *signal.Processor {
	processor := signal.NewProcessor(store, tables, cal, daykey.SystemClock, namespace)

	logrus.Infof("initialized signal processor (UTC%+d, %d levels)", cal.OffsetHours(), len(tables.Levels()))
	return processor
}

// InitQuotaTracker creates the daily scan quota tracker.
// tiers may be a cached lookup in front of the store.
func InitQuotaTracker(
	store service.QuotaStore,
	tiers service.TierLookup,
	cal *daykey.Calendar,
	limits map[service.Tier]int,
) *quota.Tracker {
	tracker := quota.NewTracker(store, tiers, cal, quota.TrackerConfig{Limits: limits})

	logrus.Infof("initialized quota tracker: free=%d tier1=%d tier2=%d tier3=%d",
		tracker.MaxScans(service.TierFree), tracker.MaxScans(service.Tier1),
		tracker.MaxScans(service.Tier2), tracker.MaxScans(service.Tier3))
	return tracker
}
