// Package ledger records and reverts daily workout outcomes, the unit of
// truth for "did the user do this".
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome is the caller's report for one workout. Completed and skip are
// mutually exclusive, a skip carries a mandatory reason.
type Outcome struct {
	Completed             bool                 `json:"completed"`
	ActualDurationMinutes int                  `json:"actual_duration_minutes,omitempty"`
	PerceivedIntensity    resolution.Intensity `json:"perceived_intensity,omitempty"`
	HowItFelt             string               `json:"how_it_felt,omitempty"`
	RPE                   *int                 `json:"rpe,omitempty"`
	Difficulty            string               `json:"difficulty,omitempty"`
	Notes                 string               `json:"notes,omitempty"`
	SkipReason            string               `json:"skip_reason,omitempty"`
}

func (o Outcome) validate() error {
	if o.RPE != nil && (*o.RPE < 1 || *o.RPE > 10) {
		return resolution.NewValidationError("rpe", fmt.Sprintf("must be within [1,10], got %d", *o.RPE))
	}
	if !o.Completed && o.SkipReason == "" {
		return resolution.NewValidationError("skip_reason", "skip requires a reason")
	}
	if o.Completed && o.ActualDurationMinutes < 0 {
		return resolution.NewValidationError("actual_duration_minutes", "must not be negative")
	}
	if o.PerceivedIntensity != "" && !o.PerceivedIntensity.Valid() {
		return resolution.NewValidationError("perceived_intensity", "unknown intensity")
	}
	return nil
}

type Service struct {
	store          resolution.Store
	locker         *resolution.GoalLocker
	rollup         *aggregate.Rollup
	events         resolution.EventSink
	metricsManager *metrics.Manager
	now            func() time.Time
}

func NewService(
	store resolution.Store,
	locker *resolution.GoalLocker,
	events resolution.EventSink,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		store:          store,
		locker:         locker,
		rollup:         aggregate.NewRollup(store, metricsManager),
		events:         events,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

// RecordOutcome terminal-mutates a scheduled workout and re-derives its
// ancestor chain. Re-recording without a prior undo is rejected to keep
// the audit trail honest.
func (s *Service) RecordOutcome(
	ctx context.Context,
	workoutID string,
	outcome Outcome,
) (_ aggregate.UpdatedChain, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.recordOutcome")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := outcome.validate(); err != nil {
		return aggregate.UpdatedChain{}, err
	}

	workout, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}

	unlock := s.locker.Lock(workout.GoalID)
	defer unlock()

	// re-read under the lock, another writer may have resolved it
	workout, err = s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if workout.IsTerminal() {
		return aggregate.UpdatedChain{}, &resolution.InvalidStateError{
			Entity:        "workout",
			ID:            workout.ID,
			CurrentStatus: string(workout.Status()),
		}
	}

	if err := s.requireActiveGoal(ctx, workout.GoalID); err != nil {
		return aggregate.UpdatedChain{}, err
	}

	resolvedAt := s.now()
	if outcome.Completed {
		rpe := 0
		if outcome.RPE != nil {
			rpe = *outcome.RPE
		}
		workout.Completed = &resolution.CompletedOutcome{
			ActualDurationMinutes: outcome.ActualDurationMinutes,
			PerceivedIntensity:    outcome.PerceivedIntensity,
			HowItFelt:             outcome.HowItFelt,
			RPE:                   rpe,
			Difficulty:            outcome.Difficulty,
			Notes:                 outcome.Notes,
			ResolvedAt:            resolvedAt,
		}
	} else {
		workout.Skipped = &resolution.SkippedOutcome{
			Reason:     outcome.SkipReason,
			Notes:      outcome.Notes,
			ResolvedAt: resolvedAt,
		}
	}

	updated, chain, err := s.rollup.FromWorkout(ctx, workout)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if err := s.store.SaveChain(ctx, chain); err != nil {
		return aggregate.UpdatedChain{}, fmt.Errorf("save chain: %w", err)
	}

	s.metricsManager.CounterWorkoutsResolved.With(
		prometheus.Labels{"outcome": string(workout.Status())},
	).Inc()
	s.events.Publish(ctx, resolution.Event{
		Type:     resolution.EventWorkoutResolved,
		GoalID:   workout.GoalID,
		EntityID: workout.ID,
		At:       resolvedAt,
	})

	return updated, nil
}

// RecordContext attaches the user's self-reported state to a scheduled
// workout. It is a planning-time capture, a resolved workout no longer
// accepts one.
func (s *Service) RecordContext(
	ctx context.Context,
	workoutID string,
	snapshot resolution.ContextSnapshot,
) (_ *resolution.DailyWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.recordContext")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if snapshot.StressLevel < 0 || snapshot.StressLevel > 10 {
		return nil, resolution.NewValidationError("stress_level", fmt.Sprintf("must be within [0,10], got %d", snapshot.StressLevel))
	}
	if snapshot.Soreness < 0 || snapshot.Soreness > 10 {
		return nil, resolution.NewValidationError("soreness", fmt.Sprintf("must be within [0,10], got %d", snapshot.Soreness))
	}

	workout, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(workout.GoalID)
	defer unlock()

	workout, err = s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.IsTerminal() {
		return nil, &resolution.InvalidStateError{
			Entity:        "workout",
			ID:            workout.ID,
			CurrentStatus: string(workout.Status()),
		}
	}
	if err := s.requireActiveGoal(ctx, workout.GoalID); err != nil {
		return nil, err
	}

	// context carries no aggregate weight, only the workout row changes
	workout.Context = snapshot
	if err := s.store.SaveChain(ctx, resolution.Chain{
		Workouts: []*resolution.DailyWorkout{workout},
	}); err != nil {
		return nil, fmt.Errorf("save chain: %w", err)
	}
	return workout, nil
}

// UndoOutcome reverts a terminal workout to scheduled and restores the
// ancestor counters via the same full recount path as recording.
func (s *Service) UndoOutcome(
	ctx context.Context,
	workoutID string,
) (_ aggregate.UpdatedChain, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "ledger.undoOutcome")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}

	unlock := s.locker.Lock(workout.GoalID)
	defer unlock()

	workout, err = s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if !workout.IsTerminal() {
		return aggregate.UpdatedChain{}, &resolution.InvalidStateError{
			Entity:        "workout",
			ID:            workout.ID,
			CurrentStatus: string(workout.Status()),
		}
	}

	if err := s.requireActiveGoal(ctx, workout.GoalID); err != nil {
		return aggregate.UpdatedChain{}, err
	}

	workout.Completed = nil
	workout.Skipped = nil

	updated, chain, err := s.rollup.FromWorkout(ctx, workout)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if err := s.store.SaveChain(ctx, chain); err != nil {
		return aggregate.UpdatedChain{}, fmt.Errorf("save chain: %w", err)
	}

	s.metricsManager.CounterOutcomesUndone.Inc()
	s.events.Publish(ctx, resolution.Event{
		Type:     resolution.EventOutcomeUndone,
		GoalID:   workout.GoalID,
		EntityID: workout.ID,
		At:       s.now(),
	})

	return updated, nil
}

func (s *Service) requireActiveGoal(ctx context.Context, goalID string) error {
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return err
	}
	if !goal.IsActive() {
		return &resolution.InvalidStateError{
			Entity:        "goal",
			ID:            goal.ID,
			CurrentStatus: string(goal.Status),
		}
	}
	return nil
}
