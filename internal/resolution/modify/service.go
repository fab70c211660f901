// Package modify applies structured, audited edits to any plan level and
// propagates recomputation up to the goal.
package modify

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type Service struct {
	store          resolution.Store
	locker         *resolution.GoalLocker
	rollup         *aggregate.Rollup
	events         resolution.EventSink
	metricsManager *metrics.Manager
	now            func() time.Time
	newID          func() string
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
		newID:          uuid.NewString,
	}
}

// Apply validates a modification against the target's current status,
// mutates the target, appends the audit record and re-derives every
// ancestor in one atomic save.
func (s *Service) Apply(
	ctx context.Context,
	level resolution.ModificationLevel,
	targetID string,
	mod resolution.Modification,
) (_ aggregate.UpdatedChain, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "modify.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !level.Valid() {
		return aggregate.UpdatedChain{}, resolution.NewValidationError("level", fmt.Sprintf("unknown level %q", level))
	}
	if mod.Actor == "" {
		return aggregate.UpdatedChain{}, resolution.NewValidationError("actor", "actor is mandatory")
	}
	if mod.Reason == "" {
		return aggregate.UpdatedChain{}, resolution.NewValidationError("reason", "reason is mandatory")
	}

	var updated aggregate.UpdatedChain
	switch level {
	case resolution.LevelWorkout:
		updated, err = s.applyToWorkout(ctx, targetID, mod)
	case resolution.LevelWeek:
		updated, err = s.applyToWeek(ctx, targetID, mod)
	case resolution.LevelPhase:
		updated, err = s.applyToPhase(ctx, targetID, mod)
	case resolution.LevelGoal:
		updated, err = s.applyToGoal(ctx, targetID, mod)
	}
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}

	s.metricsManager.CounterModifications.With(
		prometheus.Labels{"level": string(level)},
	).Inc()
	s.events.Publish(ctx, resolution.Event{
		Type:     resolution.EventGoalModified,
		GoalID:   updated.Goal.ID,
		EntityID: targetID,
		At:       s.now(),
	})

	return updated, nil
}

// History returns the append-only audit trail of one entity.
func (s *Service) History(
	ctx context.Context,
	level resolution.ModificationLevel,
	targetID string,
) (_ []*resolution.ModificationRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "modify.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if !level.Valid() {
		return nil, resolution.NewValidationError("level", fmt.Sprintf("unknown level %q", level))
	}
	return s.store.ModificationsFor(ctx, level, targetID)
}

func (s *Service) applyToWorkout(
	ctx context.Context,
	workoutID string,
	mod resolution.Modification,
) (aggregate.UpdatedChain, error) {
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
	if workout.IsTerminal() && !mod.Override {
		return aggregate.UpdatedChain{}, &resolution.InvalidStateError{
			Entity:        "workout",
			ID:            workout.ID,
			CurrentStatus: string(workout.Status()),
		}
	}

	record := s.newRecord(resolution.LevelWorkout, workout.ID, workout.GoalID, mod)

	switch mod.Type {
	case resolution.ModTypeReschedule:
		if mod.NewDate == nil {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_date", "reschedule requires a date")
		}
		week, err := s.store.GetWeek(ctx, workout.WeekID)
		if err != nil {
			return aggregate.UpdatedChain{}, err
		}
		// cross-week moves go through week-level restructuring
		if !week.ContainsDate(*mod.NewDate) {
			return aggregate.UpdatedChain{}, &resolution.InvalidOperationError{
				Message: fmt.Sprintf(
					"cannot reschedule workout [%s] outside week %d, restructure the weekly plan instead",
					workout.ID, week.WeekNumber,
				),
			}
		}
		workout.Date = *mod.NewDate
		record.AdjustedValue = mod.NewDate.Format("2006-01-02")

	case resolution.ModTypeIntensityChange:
		if mod.NewIntensity == nil || !mod.NewIntensity.Valid() {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_intensity", "a valid intensity is required")
		}
		record.IntensityShift = resolution.ClassifyIntensityShift(workout.Planned.Intensity, *mod.NewIntensity)
		workout.Planned.Intensity = *mod.NewIntensity
		record.AdjustedValue = string(*mod.NewIntensity)

	case resolution.ModTypeDurationChange:
		if mod.NewDurationMinutes == nil || *mod.NewDurationMinutes <= 0 {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_duration_minutes", "a positive duration is required")
		}
		workout.Planned.DurationMinutes = *mod.NewDurationMinutes
		record.AdjustedValue = fmt.Sprintf("%d", *mod.NewDurationMinutes)

	case resolution.ModTypeTypeChange:
		if mod.NewWorkoutType == nil || *mod.NewWorkoutType == "" {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_workout_type", "a workout type is required")
		}
		workout.Planned.Type = *mod.NewWorkoutType
		record.AdjustedValue = *mod.NewWorkoutType

	case resolution.ModTypeCancel:
		// a cancellation is an audited skip, the slot stays in the ledger
		workout.Completed = nil
		workout.Skipped = &resolution.SkippedOutcome{
			Reason:     mod.Reason,
			ResolvedAt: s.now(),
		}

	default:
		return aggregate.UpdatedChain{}, resolution.NewValidationError(
			"type", fmt.Sprintf("modification type %q not applicable to a workout", mod.Type),
		)
	}

	workout.WasModified = true

	updated, chain, err := s.rollup.FromWorkout(ctx, workout)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	chain.Modifications = append(chain.Modifications, record)

	if err := s.store.SaveChain(ctx, chain); err != nil {
		return aggregate.UpdatedChain{}, fmt.Errorf("save chain: %w", err)
	}
	return updated, nil
}

func (s *Service) applyToWeek(
	ctx context.Context,
	weekID string,
	mod resolution.Modification,
) (aggregate.UpdatedChain, error) {
	week, err := s.store.GetWeek(ctx, weekID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}

	unlock := s.locker.Lock(week.GoalID)
	defer unlock()

	week, err = s.store.GetWeek(ctx, weekID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if week.Status == resolution.WeekStatusCompleted && !mod.Override {
		return aggregate.UpdatedChain{}, &resolution.InvalidStateError{
			Entity:        "week",
			ID:            week.ID,
			CurrentStatus: string(week.Status),
		}
	}

	workouts, err := s.store.WorkoutsForWeek(ctx, week.ID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}

	record := s.newRecord(resolution.LevelWeek, week.ID, week.GoalID, mod)

	switch mod.Type {
	case resolution.ModTypeTargetChange:
		if mod.NewTargetWorkouts == nil || *mod.NewTargetWorkouts < 0 {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_target_workouts", "a non-negative target is required")
		}
		week.TargetWorkouts = *mod.NewTargetWorkouts
		record.AdjustedValue = fmt.Sprintf("%d", *mod.NewTargetWorkouts)

	case resolution.ModTypeDurationChange:
		if mod.NewDurationMinutes == nil || *mod.NewDurationMinutes < 0 {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_duration_minutes", "a non-negative duration is required")
		}
		week.TargetDurationMinutes = *mod.NewDurationMinutes
		record.AdjustedValue = fmt.Sprintf("%d", *mod.NewDurationMinutes)

	case resolution.ModTypeReschedule:
		// week-level restructuring: shift the whole week, children move
		// with it so date-range containment holds for every workout
		if mod.NewDate == nil {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_date", "reschedule requires a new start date")
		}
		shift := mod.NewDate.Sub(week.StartDate)
		week.StartDate = week.StartDate.Add(shift)
		week.EndDate = week.EndDate.Add(shift)
		for _, w := range workouts {
			w.Date = w.Date.Add(shift)
		}
		record.AdjustedValue = mod.NewDate.Format("2006-01-02")

	default:
		return aggregate.UpdatedChain{}, resolution.NewValidationError(
			"type", fmt.Sprintf("modification type %q not applicable to a weekly plan", mod.Type),
		)
	}

	if err := aggregate.RecountWeek(week, workouts); err != nil {
		return aggregate.UpdatedChain{}, err
	}

	updated, chain, err := s.rollup.FromWeek(ctx, week)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if mod.Type == resolution.ModTypeReschedule {
		chain.Workouts = append(chain.Workouts, workouts...)
	}
	chain.Modifications = append(chain.Modifications, record)

	if err := s.store.SaveChain(ctx, chain); err != nil {
		return aggregate.UpdatedChain{}, fmt.Errorf("save chain: %w", err)
	}
	return updated, nil
}

func (s *Service) applyToPhase(
	ctx context.Context,
	phaseID string,
	mod resolution.Modification,
) (aggregate.UpdatedChain, error) {
	phase, err := s.store.GetPhase(ctx, phaseID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}

	unlock := s.locker.Lock(phase.GoalID)
	defer unlock()

	phase, err = s.store.GetPhase(ctx, phaseID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if phase.Status == resolution.PhaseStatusCompleted && !mod.Override {
		return aggregate.UpdatedChain{}, &resolution.InvalidStateError{
			Entity:        "phase",
			ID:            phase.ID,
			CurrentStatus: string(phase.Status),
		}
	}

	record := s.newRecord(resolution.LevelPhase, phase.ID, phase.GoalID, mod)

	switch mod.Type {
	case resolution.ModTypeTargetChange:
		if mod.NewTargetWorkouts == nil || *mod.NewTargetWorkouts < 0 {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_target_workouts", "a non-negative target is required")
		}
		phase.TargetWorkouts = *mod.NewTargetWorkouts
		record.AdjustedValue = fmt.Sprintf("%d", *mod.NewTargetWorkouts)

	default:
		return aggregate.UpdatedChain{}, resolution.NewValidationError(
			"type", fmt.Sprintf("modification type %q not applicable to a phase", mod.Type),
		)
	}

	weeks, err := s.store.WeeksForPhase(ctx, phase.ID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	aggregate.RecountPhase(phase, weeks)

	goal, err := s.store.GetGoal(ctx, phase.GoalID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	aggregate.RecountGoal(goal)

	chain := resolution.Chain{
		Goal:          goal,
		Phases:        []*resolution.QuarterlyPhase{phase},
		Modifications: []*resolution.ModificationRecord{record},
	}
	if err := s.store.SaveChain(ctx, chain); err != nil {
		return aggregate.UpdatedChain{}, fmt.Errorf("save chain: %w", err)
	}
	return aggregate.UpdatedChain{Phase: phase, Goal: goal}, nil
}

func (s *Service) applyToGoal(
	ctx context.Context,
	goalID string,
	mod resolution.Modification,
) (aggregate.UpdatedChain, error) {
	unlock := s.locker.Lock(goalID)
	defer unlock()

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return aggregate.UpdatedChain{}, err
	}
	if goal.Status != resolution.GoalStatusActive && !mod.Override {
		return aggregate.UpdatedChain{}, &resolution.InvalidStateError{
			Entity:        "goal",
			ID:            goal.ID,
			CurrentStatus: string(goal.Status),
		}
	}

	record := s.newRecord(resolution.LevelGoal, goal.ID, goal.ID, mod)

	switch mod.Type {
	case resolution.ModTypeReschedule:
		if mod.NewDate == nil {
			return aggregate.UpdatedChain{}, resolution.NewValidationError("new_date", "reschedule requires a target date")
		}
		goal.TargetDate = *mod.NewDate
		record.AdjustedValue = mod.NewDate.Format("2006-01-02")

	default:
		return aggregate.UpdatedChain{}, resolution.NewValidationError(
			"type", fmt.Sprintf("modification type %q not applicable to a goal", mod.Type),
		)
	}

	aggregate.RecountGoal(goal)

	chain := resolution.Chain{
		Goal:          goal,
		Modifications: []*resolution.ModificationRecord{record},
	}
	if err := s.store.SaveChain(ctx, chain); err != nil {
		return aggregate.UpdatedChain{}, fmt.Errorf("save chain: %w", err)
	}
	return aggregate.UpdatedChain{Goal: goal}, nil
}

func (s *Service) newRecord(
	level resolution.ModificationLevel,
	targetID, goalID string,
	mod resolution.Modification,
) *resolution.ModificationRecord {
	return &resolution.ModificationRecord{
		ID:       s.newID(),
		Level:    level,
		TargetID: targetID,
		GoalID:   goalID,
		Actor:    mod.Actor,
		Type:     mod.Type,
		Reason:   mod.Reason,
		Override:  mod.Override,
		CreatedAt: s.now(),
	}
}
