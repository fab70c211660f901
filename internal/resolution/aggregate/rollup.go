package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"
)

// UpdatedChain is the aggregate path refreshed by a mutation, returned to
// callers so they can redraw without a follow-up query.
type UpdatedChain struct {
	Workout *resolution.DailyWorkout   `json:"workout,omitempty"`
	Week    *resolution.WeeklyPlan     `json:"week,omitempty"`
	Phase   *resolution.QuarterlyPhase `json:"phase,omitempty"`
	Goal    *resolution.YearlyGoal     `json:"goal"`
}

// Rollup recomputes the ancestor chain of a mutated entity, bottom-up,
// reading a consistent snapshot of children before deriving each parent.
// It never persists anything itself, the caller saves the returned chain.
type Rollup struct {
	store          resolution.Store
	metricsManager *metrics.Manager
}

func NewRollup(store resolution.Store, metricsManager *metrics.Manager) *Rollup {
	return &Rollup{
		store:          store,
		metricsManager: metricsManager,
	}
}

// FromWorkout re-derives week, phase and goal above the given workout.
// The workout itself is carried as-is: the caller already mutated it and
// it replaces the stale stored copy during the recounts.
func (r *Rollup) FromWorkout(
	ctx context.Context,
	workout *resolution.DailyWorkout,
) (_ UpdatedChain, _ resolution.Chain, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "aggregate.fromWorkout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer func(begin time.Time) {
		r.metricsManager.HistAggregationDuration.Observe(time.Since(begin).Seconds())
	}(time.Now())

	week, err := r.store.GetWeek(ctx, workout.WeekID)
	if err != nil {
		return UpdatedChain{}, resolution.Chain{}, fmt.Errorf("get week: %w", err)
	}

	workouts, err := r.store.WorkoutsForWeek(ctx, week.ID)
	if err != nil {
		return UpdatedChain{}, resolution.Chain{}, fmt.Errorf("workouts for week: %w", err)
	}
	replaced := false
	for i, w := range workouts {
		if w.ID == workout.ID {
			workouts[i] = workout
			replaced = true
			break
		}
	}
	if !replaced {
		workouts = append(workouts, workout)
	}

	if err := RecountWeek(week, workouts); err != nil {
		return UpdatedChain{}, resolution.Chain{}, err
	}

	updated, chain, err := r.rollupFromWeek(ctx, week)
	if err != nil {
		return UpdatedChain{}, resolution.Chain{}, err
	}

	updated.Workout = workout
	chain.Workouts = append(chain.Workouts, workout)
	return updated, chain, nil
}

// FromWeek re-derives phase and goal above the given, already recounted,
// weekly plan.
func (r *Rollup) FromWeek(
	ctx context.Context,
	week *resolution.WeeklyPlan,
) (_ UpdatedChain, _ resolution.Chain, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "aggregate.fromWeek")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	defer func(begin time.Time) {
		r.metricsManager.HistAggregationDuration.Observe(time.Since(begin).Seconds())
	}(time.Now())

	return r.rollupFromWeek(ctx, week)
}

func (r *Rollup) rollupFromWeek(
	ctx context.Context,
	week *resolution.WeeklyPlan,
) (UpdatedChain, resolution.Chain, error) {
	phase, err := r.store.GetPhase(ctx, week.PhaseID)
	if err != nil {
		return UpdatedChain{}, resolution.Chain{}, fmt.Errorf("get phase: %w", err)
	}

	weeks, err := r.store.WeeksForPhase(ctx, phase.ID)
	if err != nil {
		return UpdatedChain{}, resolution.Chain{}, fmt.Errorf("weeks for phase: %w", err)
	}
	replaced := false
	for i, w := range weeks {
		if w.ID == week.ID {
			weeks[i] = week
			replaced = true
			break
		}
	}
	if !replaced {
		weeks = append(weeks, week)
	}

	RecountPhase(phase, weeks)

	goal, err := r.store.GetGoal(ctx, week.GoalID)
	if err != nil {
		return UpdatedChain{}, resolution.Chain{}, fmt.Errorf("get goal: %w", err)
	}
	RecountGoal(goal)

	updated := UpdatedChain{
		Week:  week,
		Phase: phase,
		Goal:  goal,
	}
	chain := resolution.Chain{
		Goal:   goal,
		Phases: []*resolution.QuarterlyPhase{phase},
		Weeks:  []*resolution.WeeklyPlan{week},
	}
	return updated, chain, nil
}
