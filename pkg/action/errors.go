package action

import "errors"

var (
	// ErrRollbackNotSupported is returned by rewards that cannot be revoked once delivered.
	ErrRollbackNotSupported = errors.New("rollback not supported for this action")

	// ErrActionNotFound means a rule references an action that is missing or disabled.
	ErrActionNotFound = errors.New("action not found in registry")

	ErrInvalidConfig = errors.New("invalid action configuration")

	// ErrMaxRetriesExceeded wraps the last error once a retry policy gives up.
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
)
