package signal

import (
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/progression"
)

const (
	// TypeEventRecorded follows a newly appended completion event.
	TypeEventRecorded = "event_recorded"
	// TypeGoalProgress follows a goal progress update.
	TypeGoalProgress = "goal_progress"
	// TypeRecompute re-evaluates a user without any new input.
	TypeRecompute = "recompute"
)

// BaseSignal is the common Signal implementation.
type BaseSignal struct {
	signalType string
	userID     string
	timestamp  time.Time
	metadata   map[string]interface{}
	context    *PlayerContext
}

// NewBaseSignal creates a signal; nil metadata becomes an empty map.
func NewBaseSignal(signalType, userID string, timestamp time.Time, metadata map[string]interface{}, context *PlayerContext) *BaseSignal {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &BaseSignal{
		signalType: signalType,
		userID:     userID,
		timestamp:  timestamp,
		metadata:   metadata,
		context:    context,
	}
}

// Type implements Signal interface.
func (s *BaseSignal) Type() string {
	return s.signalType
}

// UserID implements Signal interface.
func (s *BaseSignal) UserID() string {
	return s.userID
}

// Timestamp implements Signal interface.
func (s *BaseSignal) Timestamp() time.Time {
	return s.timestamp
}

// Metadata implements Signal interface.
func (s *BaseSignal) Metadata() map[string]interface{} {
	return s.metadata
}

// Context implements Signal interface.
func (s *BaseSignal) Context() *PlayerContext {
	return s.context
}

// EventRecordedSignal carries the event that caused the recomputation.
type EventRecordedSignal struct {
	*BaseSignal
	Event progression.Event
	XP    int64
}

// NewEventRecordedSignal creates a new event recorded signal.
func NewEventRecordedSignal(ev progression.Event, xp int64, timestamp time.Time, context *PlayerContext) *EventRecordedSignal {
	metadata := map[string]interface{}{
		"event_id": ev.ID,
		"category": string(ev.Category),
		"day_key":  ev.DayKey,
		"xp":       xp,
	}
	return &EventRecordedSignal{
		BaseSignal: NewBaseSignal(TypeEventRecorded, ev.UserID, timestamp, metadata, context),
		Event:      ev,
		XP:         xp,
	}
}

// GoalProgressSignal carries a goal progress update.
type GoalProgressSignal struct {
	*BaseSignal
	GoalID  string
	Percent int
}

// NewGoalProgressSignal creates a new goal progress signal.
func NewGoalProgressSignal(userID, goalID string, percent int, timestamp time.Time, context *PlayerContext) *GoalProgressSignal {
	metadata := map[string]interface{}{
		"goal_id": goalID,
		"percent": percent,
	}
	return &GoalProgressSignal{
		BaseSignal: NewBaseSignal(TypeGoalProgress, userID, timestamp, metadata, context),
		GoalID:     goalID,
		Percent:    percent,
	}
}
