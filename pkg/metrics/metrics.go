// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics defines the engine's Prometheus collectors.
// They are registered by the metrics server; incrementing an unregistered
// collector is harmless, so packages and tests can use them freely.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "progression"

var (
	EventsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_recorded_total",
			Help:      "Completion events recorded, by category and whether the id was new",
		},
		[]string{"category", "result"},
	)

	XPAwardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "XP awarded, by source (event or achievement)",
		},
		[]string{"source"},
	)

	AchievementsUnlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Achievement unlocks written, by rule",
		},
		[]string{"rule_id"},
	)

	QuotaDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_decisions_total",
			Help:      "Quota consume outcomes, by tier and outcome (allowed, denied, error)",
		},
		[]string{"tier", "outcome"},
	)

	ActionExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_actions_total",
			Help:      "Reward action executions, by action and outcome",
		},
		[]string{"action_id", "outcome"},
	)

	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Engine operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Collectors returns every collector of this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		EventsRecordedTotal,
		XPAwardedTotal,
		AchievementsUnlockedTotal,
		QuotaDecisionsTotal,
		ActionExecutionsTotal,
		OperationDuration,
	}
}

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
