package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// Executor executes actions in response to rule triggers.
type Executor struct {
	registry *Registry
	wg       sync.WaitGroup
}

// NewExecutor creates a new action executor.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
	}
}

// Execute runs an action in response to a trigger.
func (e *Executor) Execute(ctx context.Context, actionID string, trigger *rule.Trigger, playerCtx *signal.PlayerContext) (*ActionResult, error) {
	action := e.registry.Enabled(actionID)
	if action == nil {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}

	logrus.Infof("executing action %s for achievement %s (user: %s)", actionID, trigger.AchievementID, trigger.UserID)

	err := e.run(ctx, action, trigger, playerCtx)
	if err != nil {
		logrus.Errorf("action %s failed: %v", actionID, err)
		return failed(actionID, trigger, err), err
	}

	logrus.Infof("action %s completed successfully", actionID)
	return delivered(actionID, trigger), nil
}

// ExecuteMultiple executes multiple actions in sequence.
// If rollbackOnError is true, previously executed actions will be rolled back if a later action fails.
// Async actions are dispatched in the background and never take part in rollback.
func (e *Executor) ExecuteMultiple(ctx context.Context, actionIDs []string, trigger *rule.Trigger, playerCtx *signal.PlayerContext, rollbackOnError bool) ([]*ActionResult, error) {
	var results []*ActionResult
	var executedActions []Action

	for _, actionID := range actionIDs {
		action := e.registry.Enabled(actionID)
		if action == nil {
			err := fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
			logrus.Errorf("%v", err)

			if rollbackOnError && len(executedActions) > 0 {
				e.rollbackActions(ctx, executedActions, trigger, playerCtx)
			}

			return results, err
		}

		if action.Config().Async {
			e.dispatch(ctx, action, trigger, playerCtx)
			results = append(results, dispatched(actionID, trigger))
			continue
		}

		logrus.Infof("executing action %s for achievement %s (user: %s)", actionID, trigger.AchievementID, trigger.UserID)

		err := e.run(ctx, action, trigger, playerCtx)
		if err != nil {
			logrus.Errorf("action %s failed: %v", actionID, err)
			results = append(results, failed(actionID, trigger, err))

			if rollbackOnError && len(executedActions) > 0 {
				e.rollbackActions(ctx, executedActions, trigger, playerCtx)
			}

			return results, err
		}

		executedActions = append(executedActions, action)
		results = append(results, delivered(actionID, trigger))
		logrus.Infof("action %s completed successfully", actionID)
	}

	return results, nil
}

// Wait blocks until every async action dispatched so far has finished.
func (e *Executor) Wait() {
	e.wg.Wait()
}

func (e *Executor) dispatch(ctx context.Context, action Action, trigger *rule.Trigger, playerCtx *signal.PlayerContext) {
	// detached from the request; the unlock is already stored
	bg := context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		logrus.Infof("executing async action %s for achievement %s (user: %s)", action.ID(), trigger.AchievementID, trigger.UserID)
		if err := e.run(bg, action, trigger, playerCtx); err != nil {
			logrus.Errorf("async action %s failed: %v", action.ID(), err)
			return
		}
		logrus.Infof("async action %s completed successfully", action.ID())
	}()
}

// run executes an action once, or under its retry policy when one is configured.
func (e *Executor) run(ctx context.Context, action Action, trigger *rule.Trigger, playerCtx *signal.PlayerContext) error {
	retry := action.Config().Retry
	if retry == nil || retry.MaxAttempts <= 1 {
		return action.Execute(ctx, trigger, playerCtx)
	}

	attempt := 0
	err := backoff.Retry(
		func() error {
			attempt++
			err := action.Execute(ctx, trigger, playerCtx)
			if err != nil {
				logrus.Warnf("action %s attempt %d/%d failed: %v", action.ID(), attempt, retry.MaxAttempts, err)
			}
			return err
		},
		backoff.WithContext(retryPolicy(retry), ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}
	return nil
}

func retryPolicy(retry *RetryConfig) backoff.BackOff {
	delay := retry.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var b backoff.BackOff
	switch retry.Backoff {
	case BackoffExponential:
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = delay
		exp.MaxElapsedTime = 0
		b = exp
	default:
		b = backoff.NewConstantBackOff(delay)
	}

	return backoff.WithMaxRetries(b, uint64(retry.MaxAttempts-1))
}

// rollbackActions rolls back actions in reverse order.
func (e *Executor) rollbackActions(ctx context.Context, actions []Action, trigger *rule.Trigger, playerCtx *signal.PlayerContext) {
	logrus.Warnf("rolling back %d actions", len(actions))

	// Rollback in reverse order
	for i := len(actions) - 1; i >= 0; i-- {
		action := actions[i]
		logrus.Infof("rolling back action %s", action.ID())

		err := action.Rollback(ctx, trigger, playerCtx)
		if err != nil {
			if errors.Is(err, ErrRollbackNotSupported) {
				logrus.Warnf("action %s does not support rollback", action.ID())
			} else {
				logrus.Errorf("failed to rollback action %s: %v", action.ID(), err)
			}
		} else {
			logrus.Infof("action %s rolled back successfully", action.ID())
		}
	}
}

// GetRegistry returns the action registry used by this executor.
func (e *Executor) GetRegistry() *Registry {
	return e.registry
}
