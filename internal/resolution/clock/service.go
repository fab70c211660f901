// Package clock advances a goal's current week pointer, closing elapsed
// weeks in order and materializing newly due weekly plans from the owning
// phase's template. The clock is trigger driven, there is no polling loop.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/planner"
	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/aggregate"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/google/uuid"
)

// SignalSource exposes reported life events as read-only signals for the
// confidence strategy.
type SignalSource interface {
	LifeSignals(ctx context.Context, goalID string) ([]aggregate.LifeSignal, error)
}

// Result is what one advance call did. Weeks close in order, never
// skipping a level, so every elapsed week gets a closure record even when
// the clock is invoked infrequently.
type Result struct {
	Goal         *resolution.YearlyGoal       `json:"goal"`
	ClosedWeeks  []*resolution.WeeklyPlan     `json:"closed_weeks"`
	ClosedPhases []*resolution.QuarterlyPhase `json:"closed_phases"`
	NewWeeks     []*resolution.WeeklyPlan     `json:"new_weeks"`
}

type Service struct {
	store          resolution.Store
	locker         *resolution.GoalLocker
	plan           planner.Planner
	confidence     aggregate.ConfidenceStrategy
	signals        SignalSource
	events         resolution.EventSink
	metricsManager *metrics.Manager
	newID          func() string
}

func NewService(
	store resolution.Store,
	locker *resolution.GoalLocker,
	plan planner.Planner,
	confidence aggregate.ConfidenceStrategy,
	signals SignalSource,
	events resolution.EventSink,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		store:          store,
		locker:         locker,
		plan:           plan,
		confidence:     confidence,
		signals:        signals,
		events:         events,
		metricsManager: metricsManager,
		newID:          uuid.NewString,
	}
}

// Advance moves the goal's clock to toDate. Calling with an already
// passed date is a no-op, calling with a far future date performs all
// intermediate closures in week order.
func (s *Service) Advance(ctx context.Context, goalID string, toDate time.Time) (_ Result, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "clock.advance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	unlock := s.locker.Lock(goalID)
	defer unlock()

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return Result{}, err
	}

	// abandonment freezes the clock, history stays queryable
	if !goal.IsActive() {
		return Result{Goal: goal}, nil
	}

	weeks, err := s.store.WeeksForGoal(ctx, goalID)
	if err != nil {
		return Result{}, err
	}
	if err := aggregate.VerifyWeekSequence(weeks); err != nil {
		return Result{}, err
	}

	phases, err := s.store.PhasesForGoal(ctx, goalID)
	if err != nil {
		return Result{}, err
	}

	result := Result{Goal: goal}
	chain := resolution.Chain{Goal: goal}
	touchedPhases := map[string]*resolution.QuarterlyPhase{}
	// weeks materialized by this very call land in chain.NewWeeks, closing
	// one of them later in the loop must not also schedule an update
	newWeekIDs := map[string]bool{}

	for {
		current := weekNumbered(weeks, goal.CurrentWeek)
		if current == nil {
			return Result{}, &resolution.ConsistencyError{
				Message: fmt.Sprintf("goal [%s] current week %d not materialized", goal.ID, goal.CurrentWeek),
			}
		}
		// the pointer stays on the final week after it closes, a later
		// advance must not close it again
		if current.Status == resolution.WeekStatusCompleted {
			break
		}
		if !dayAfter(toDate, current.EndDate) {
			break
		}

		// full recount before closing, crash-safe against missed events
		workouts, err := s.store.WorkoutsForWeek(ctx, current.ID)
		if err != nil {
			return Result{}, err
		}
		if err := aggregate.RecountWeek(current, workouts); err != nil {
			return Result{}, err
		}
		// closure is temporal, adherence does not hold a week open
		current.Status = resolution.WeekStatusCompleted
		if !newWeekIDs[current.ID] {
			chain.Weeks = append(chain.Weeks, current)
		}
		result.ClosedWeeks = append(result.ClosedWeeks, current)

		phase := phaseForWeek(phases, current.WeekNumber)
		if phase == nil {
			return Result{}, &resolution.ConsistencyError{
				Message: fmt.Sprintf("week %d belongs to no phase of goal [%s]", current.WeekNumber, goal.ID),
			}
		}
		aggregate.RecountPhase(phase, weeksOfPhase(weeks, phase.ID))
		touchedPhases[phase.ID] = phase

		if current.WeekNumber == phase.WeekEnd {
			phase.Status = resolution.PhaseStatusCompleted
			result.ClosedPhases = append(result.ClosedPhases, phase)
		}

		if current.WeekNumber == goal.TotalWeeks {
			// final week closed, completion stays an explicit user action
			break
		}

		nextNumber := goal.CurrentWeek + 1
		nextPhase := phaseForWeek(phases, nextNumber)
		if nextPhase == nil {
			return Result{}, &resolution.ConsistencyError{
				Message: fmt.Sprintf("week %d belongs to no phase of goal [%s]", nextNumber, goal.ID),
			}
		}
		if nextPhase.Status == resolution.PhaseStatusPending {
			nextPhase.Status = resolution.PhaseStatusActive
			touchedPhases[nextPhase.ID] = nextPhase
		}

		newWeek, newWorkouts, err := s.materializeWeek(ctx, goal, nextPhase, nextNumber, current.EndDate.AddDate(0, 0, 1))
		if err != nil {
			return Result{}, err
		}
		weeks = append(weeks, newWeek)
		newWeekIDs[newWeek.ID] = true
		chain.NewWeeks = append(chain.NewWeeks, newWeek)
		chain.NewWorkouts = append(chain.NewWorkouts, newWorkouts...)
		result.NewWeeks = append(result.NewWeeks, newWeek)

		goal.CurrentWeek = nextNumber
	}

	aggregate.RecountGoal(goal)
	if err := s.updateConfidence(ctx, goal, weeks); err != nil {
		return Result{}, err
	}

	for _, p := range touchedPhases {
		chain.Phases = append(chain.Phases, p)
	}

	if err := s.store.SaveChain(ctx, chain); err != nil {
		return Result{}, fmt.Errorf("save chain: %w", err)
	}

	s.publishAdvance(ctx, goal, result)
	return result, nil
}

func (s *Service) materializeWeek(
	ctx context.Context,
	goal *resolution.YearlyGoal,
	phase *resolution.QuarterlyPhase,
	weekNumber int,
	startDate time.Time,
) (*resolution.WeeklyPlan, []*resolution.DailyWorkout, error) {
	template, err := s.plan.WeekTemplate(ctx, planner.PhaseTemplate{
		Quarter:        phase.Quarter,
		Name:           phase.Name,
		Description:    phase.Description,
		WeekStart:      phase.WeekStart,
		WeekEnd:        phase.WeekEnd,
		TargetWorkouts: phase.TargetWorkouts,
		FocusAreas:     phase.FocusAreas,
		Milestones:     phase.Milestones,
	}, weekNumber)
	if err != nil {
		return nil, nil, fmt.Errorf("week %d template: %w", weekNumber, err)
	}

	return BuildWeek(BuildWeekParams{
		NewID:      s.newID,
		Goal:       goal,
		Phase:      phase,
		WeekNumber: weekNumber,
		StartDate:  startDate,
		Template:   template,
	})
}

func (s *Service) updateConfidence(
	ctx context.Context,
	goal *resolution.YearlyGoal,
	weeks []*resolution.WeeklyPlan,
) error {
	var signals []aggregate.LifeSignal
	if s.signals != nil {
		var err error
		if signals, err = s.signals.LifeSignals(ctx, goal.ID); err != nil {
			return fmt.Errorf("life signals: %w", err)
		}
	}
	score := s.confidence.Confidence(goal, weeks, signals)
	goal.ConfidenceScore = &score
	return nil
}

func (s *Service) publishAdvance(ctx context.Context, goal *resolution.YearlyGoal, result Result) {
	now := time.Now()
	for _, w := range result.ClosedWeeks {
		s.metricsManager.CounterWeeksClosed.Inc()
		s.events.Publish(ctx, resolution.Event{
			Type: resolution.EventWeekClosed, GoalID: goal.ID, EntityID: w.ID, At: now,
		})
	}
	for _, p := range result.ClosedPhases {
		s.metricsManager.CounterPhasesClosed.Inc()
		s.events.Publish(ctx, resolution.Event{
			Type: resolution.EventPhaseClosed, GoalID: goal.ID, EntityID: p.ID, At: now,
		})
	}
	s.metricsManager.CounterClockAdvances.Inc()
	s.events.Publish(ctx, resolution.Event{
		Type: resolution.EventClockAdvanced, GoalID: goal.ID, EntityID: goal.ID, At: now,
	})
}

// BuildWeekParams collects what BuildWeek needs to turn a planner
// template into a concrete weekly plan with scheduled workouts.
type BuildWeekParams struct {
	NewID      func() string
	Goal       *resolution.YearlyGoal
	Phase      *resolution.QuarterlyPhase
	WeekNumber int
	StartDate  time.Time
	Template   planner.WeekTemplate
}

// BuildWeek materializes a weekly plan and its daily workouts. Shared
// with goal creation, which materializes week one up front.
func BuildWeek(params BuildWeekParams) (*resolution.WeeklyPlan, []*resolution.DailyWorkout, error) {
	start := truncateToDay(params.StartDate)
	week := &resolution.WeeklyPlan{
		ID:                    params.NewID(),
		PhaseID:               params.Phase.ID,
		GoalID:                params.Goal.ID,
		WeekNumber:            params.WeekNumber,
		QuarterWeek:           params.WeekNumber - params.Phase.WeekStart + 1,
		StartDate:             start,
		EndDate:               start.AddDate(0, 0, 6),
		TargetWorkouts:        params.Template.TargetWorkouts,
		TargetDurationMinutes: params.Template.TargetDurationMinutes,
		Focus:                 params.Template.Focus,
		EstimatedDifficulty:   params.Template.EstimatedDifficulty,
		RiskLevel:             params.Template.RiskLevel,
		Status:                resolution.WeekStatusActive,
	}

	var workouts []*resolution.DailyWorkout
	for _, wt := range params.Template.Workouts {
		if wt.DayOffset < 0 || wt.DayOffset > 6 {
			return nil, nil, &resolution.ConsistencyError{
				Message: fmt.Sprintf("planner template day offset %d outside week %d", wt.DayOffset, params.WeekNumber),
			}
		}
		workouts = append(workouts, &resolution.DailyWorkout{
			ID:      params.NewID(),
			WeekID:  week.ID,
			PhaseID: params.Phase.ID,
			GoalID:  params.Goal.ID,
			Date:    start.AddDate(0, 0, wt.DayOffset),
			Planned: resolution.PlannedWorkout{
				Type:            wt.Type,
				DurationMinutes: wt.DurationMinutes,
				Intensity:       resolution.Intensity(wt.Intensity),
				Target:          wt.Target,
				Exercises:       wt.Exercises,
			},
		})
	}

	week.WorkoutsPlanned = len(workouts)
	week.RemainingWorkouts = week.TargetWorkouts
	return week, workouts, nil
}

func weekNumbered(weeks []*resolution.WeeklyPlan, number int) *resolution.WeeklyPlan {
	for _, w := range weeks {
		if w.WeekNumber == number {
			return w
		}
	}
	return nil
}

func phaseForWeek(phases []*resolution.QuarterlyPhase, weekNumber int) *resolution.QuarterlyPhase {
	for _, p := range phases {
		if p.ContainsWeek(weekNumber) {
			return p
		}
	}
	return nil
}

func weeksOfPhase(weeks []*resolution.WeeklyPlan, phaseID string) []*resolution.WeeklyPlan {
	var out []*resolution.WeeklyPlan
	for _, w := range weeks {
		if w.PhaseID == phaseID {
			out = append(out, w)
		}
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayAfter reports whether a is on a later calendar day than b.
func dayAfter(a, b time.Time) bool {
	return truncateToDay(a).After(truncateToDay(b))
}
