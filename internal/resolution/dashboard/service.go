package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/telemetry/tracing"
)

type viewCache interface {
	GetView(ctx context.Context, goalID string) (*View, bool)
	SetView(ctx context.Context, goalID string, view *View)
	Invalidate(ctx context.Context, goalID string)
}

type Service struct {
	store resolution.Store
	cache viewCache
	now   func() time.Time
}

// NewService builds the projection service. A nil cache disables caching,
// every read then rebuilds from the store.
func NewService(store resolution.Store, cache viewCache) *Service {
	return &Service{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

func (s *Service) Overview(ctx context.Context, goalID string) (_ *View, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.overview")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if s.cache != nil {
		if view, ok := s.cache.GetView(ctx, goalID); ok {
			return view, nil
		}
	}

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	phases, err := s.store.PhasesForGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	weeks, err := s.store.WeeksForGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	view := &View{
		Goal:          goal,
		AllPhases:     phases,
		UpcomingWeeks: []*resolution.WeeklyPlan{},
		GeneratedAt:   s.now(),
	}

	for _, p := range phases {
		if p.ContainsWeek(goal.CurrentWeek) {
			view.CurrentPhase = p
			break
		}
	}

	for _, w := range weeks {
		switch {
		case w.WeekNumber == goal.CurrentWeek:
			workouts, err := s.store.WorkoutsForWeek(ctx, w.ID)
			if err != nil {
				return nil, err
			}
			view.CurrentWeek = newWeekView(w, workouts)
		case w.WeekNumber > goal.CurrentWeek:
			view.UpcomingWeeks = append(view.UpcomingWeeks, w)
		}
	}

	if s.cache != nil {
		s.cache.SetView(ctx, goalID, view)
	}
	return view, nil
}

func (s *Service) Quarter(ctx context.Context, goalID string, quarter int) (_ *QuarterView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.quarter")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	phases, err := s.store.PhasesForGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	var phase *resolution.QuarterlyPhase
	for _, p := range phases {
		if p.Quarter == quarter {
			phase = p
			break
		}
	}
	if phase == nil {
		return nil, resolution.ErrPhaseNotFound
	}

	weeks, err := s.store.WeeksForPhase(ctx, phase.ID)
	if err != nil {
		return nil, err
	}
	if weeks == nil {
		weeks = []*resolution.WeeklyPlan{}
	}
	return &QuarterView{Phase: phase, Weeks: weeks}, nil
}

func (s *Service) Week(ctx context.Context, goalID string, weekNumber int) (_ *WeekView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.week")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	weeks, err := s.store.WeeksForGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	for _, w := range weeks {
		if w.WeekNumber == weekNumber {
			workouts, err := s.store.WorkoutsForWeek(ctx, w.ID)
			if err != nil {
				return nil, err
			}
			return newWeekView(w, workouts), nil
		}
	}
	return nil, resolution.ErrWeekNotFound
}

// Workout returns the leaf detail view, modification history included.
func (s *Service) Workout(ctx context.Context, workoutID string) (_ *WorkoutView, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout, err := s.store.GetWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ModificationsFor(ctx, resolution.LevelWorkout, workoutID)
	if err != nil {
		return nil, fmt.Errorf("workout history: %w", err)
	}

	view := newWorkoutView(workout)
	view.History = history
	return view, nil
}

func newWeekView(week *resolution.WeeklyPlan, workouts []*resolution.DailyWorkout) *WeekView {
	view := &WeekView{Week: week, Workouts: []*WorkoutView{}}
	for _, w := range workouts {
		view.Workouts = append(view.Workouts, newWorkoutView(w))
	}
	return view
}

// Invalidator drops a goal's cached view whenever the engine mutates its
// subtree. Registered as an event sink next to logging.
type Invalidator struct {
	cache viewCache
}

func NewInvalidator(cache viewCache) *Invalidator {
	return &Invalidator{cache: cache}
}

func (i *Invalidator) Publish(ctx context.Context, event resolution.Event) {
	if event.GoalID == "" {
		return
	}
	i.cache.Invalidate(ctx, event.GoalID)
}
