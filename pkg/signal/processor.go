package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// ContextStore is the slice of the store a Processor reads from.
type ContextStore interface {
	service.EventLog
	service.TargetStore
	service.GoalStore
	service.UnlockStore
}

// Processor turns mutations into signals carrying a freshly derived PlayerContext.
type Processor struct {
	store     ContextStore
	tables    *progression.Tables
	cal       *daykey.Calendar
	clock     daykey.Clock
	namespace string
}

// NewProcessor creates a new signal processor.
func NewProcessor(store ContextStore, tables *progression.Tables, cal *daykey.Calendar, clock daykey.Clock, namespace string) *Processor {
	if clock == nil {
		clock = daykey.SystemClock
	}
	return &Processor{
		store:     store,
		tables:    tables,
		cal:       cal,
		clock:     clock,
		namespace: namespace,
	}
}

// ProcessEventRecorded derives the player context after ev was appended.
// The signal carries the logged event with ev's id, which differs from ev
// when ev was a retry of an already recorded id.
func (p *Processor) ProcessEventRecorded(ctx context.Context, ev progression.Event) (*EventRecordedSignal, error) {
	playerCtx, err := p.Load(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player context for user %s: %w", ev.UserID, err)
	}
	if logged, ok := playerCtx.Derivation.Events[ev.ID]; ok {
		ev = logged
	}

	xp := playerCtx.Derivation.EventXP[ev.ID]
	sig := NewEventRecordedSignal(ev, xp, p.clock(), playerCtx)

	logrus.Debugf("processed event %s (%s) for user %s into %s, xp=%d",
		ev.ID, ev.Category, ev.UserID, sig.Type(), xp)
	return sig, nil
}

// ProcessGoalProgress derives the player context after a goal update.
func (p *Processor) ProcessGoalProgress(ctx context.Context, userID, goalID string, percent int) (*GoalProgressSignal, error) {
	playerCtx, err := p.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player context for user %s: %w", userID, err)
	}

	sig := NewGoalProgressSignal(userID, goalID, percent, p.clock(), playerCtx)
	logrus.Debugf("processed goal %s at %d%% for user %s", goalID, percent, userID)
	return sig, nil
}

// ProcessRecompute derives the player context with no new input.
func (p *Processor) ProcessRecompute(ctx context.Context, userID string) (Signal, error) {
	playerCtx, err := p.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player context for user %s: %w", userID, err)
	}
	return NewBaseSignal(TypeRecompute, userID, p.clock(), nil, playerCtx), nil
}

// Load replays the user's whole log and combines it with today's targets,
// goal progress and existing unlocks. The four reads run concurrently.
func (p *Processor) Load(ctx context.Context, userID string) (*PlayerContext, error) {
	today := p.cal.Key(p.clock())

	var (
		events  []progression.Event
		targets progression.Targets
		goals   map[string]int
		unlocks []service.Unlock
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = p.store.ListEvents(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		targets, err = p.TargetsFor(gctx, userID, today)
		return err
	})
	g.Go(func() error {
		var err error
		goals, err = p.store.ListGoalProgress(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list goal progress: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		unlocks, err = p.store.ListUnlocks(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list unlocks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d, err := p.tables.Replay(p.cal, events)
	if err != nil {
		return nil, fmt.Errorf("failed to replay events: %w", err)
	}

	return BuildPlayerContext(userID, p.namespace, today, p.tables, d, targets, goals, unlocks), nil
}

// TargetsFor returns the user's planned totals of a day, or the configured defaults.
func (p *Processor) TargetsFor(ctx context.Context, userID, dayKey string) (progression.Targets, error) {
	targets, found, err := p.store.GetTargets(ctx, userID, dayKey)
	if err != nil {
		return progression.Targets{}, fmt.Errorf("failed to get targets: %w", err)
	}
	if !found {
		return p.tables.DefaultTargets(), nil
	}
	return targets, nil
}

// DayStats returns the finalized stats of any day of the loaded context.
func (p *Processor) DayStats(ctx context.Context, playerCtx *PlayerContext, dayKey string) (progression.DailyStats, error) {
	if dayKey == playerCtx.DayKey {
		return playerCtx.Today, nil
	}
	targets, err := p.TargetsFor(ctx, playerCtx.UserID, dayKey)
	if err != nil {
		return progression.DailyStats{}, err
	}
	return p.tables.Finalize(playerCtx.Derivation.Day(dayKey), targets), nil
}

// Now returns the processor's current instant.
func (p *Processor) Now() time.Time {
	return p.clock()
}

// Today returns the current day key in the reporting timezone.
func (p *Processor) Today() string {
	return p.cal.Key(p.clock())
}

// Tables returns the tables the processor derives with.
func (p *Processor) Tables() *progression.Tables {
	return p.tables
}

// Calendar returns the processor's day-key calendar.
func (p *Processor) Calendar() *daykey.Calendar {
	return p.cal
}
