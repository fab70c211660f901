package resolution

import (
	"errors"
	"fmt"
)

// Not-found sentinels, one per entity level. Wrapped with %w by repos so
// callers can match with errors.Is.
var (
	ErrGoalNotFound    = errors.New("goal not found")
	ErrPhaseNotFound   = errors.New("phase not found")
	ErrWeekNotFound    = errors.New("weekly plan not found")
	ErrWorkoutNotFound = errors.New("workout not found")
)

// IsNotFound matches any of the per-entity not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrPhaseNotFound) ||
		errors.Is(err, ErrWeekNotFound) ||
		errors.Is(err, ErrWorkoutNotFound)
}

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InvalidStateError means the operation is illegal for the entity's current
// status. The status is carried so the caller can decide to undo first.
type InvalidStateError struct {
	Entity        string
	ID            string
	CurrentStatus string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state for %s [%s]: status is %q", e.Entity, e.ID, e.CurrentStatus)
}

// InvalidOperationError marks a structurally disallowed change, such as
// rescheduling a workout across week boundaries.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return "invalid operation: " + e.Message
}

// ConsistencyError signals a broken aggregation invariant. It is a fatal
// internal defect and must never be silently repaired.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string {
	return "consistency violation: " + e.Message
}
