// Package goals owns the yearly goal lifecycle: creation at onboarding
// completion, explicit completion confirmation and abandonment.
package goals

import (
	"context"
	"fmt"
	"time"

	"github.com/resolvefit/backend/internal/planner"
	"github.com/resolvefit/backend/internal/resolution"
	"github.com/resolvefit/backend/internal/resolution/clock"
	"github.com/resolvefit/backend/internal/telemetry/metrics"
	"github.com/resolvefit/backend/internal/telemetry/tracing"

	"github.com/google/uuid"
)

const defaultTotalWeeks = 52

type CreateParams struct {
	ResolutionText string     `json:"resolution_text"`
	TotalWeeks     int        `json:"total_weeks,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
}

// CreateResult carries the freshly materialized top of the hierarchy.
type CreateResult struct {
	Goal      *resolution.YearlyGoal       `json:"goal"`
	Phases    []*resolution.QuarterlyPhase `json:"phases"`
	FirstWeek *resolution.WeeklyPlan       `json:"first_week"`
	Workouts  []*resolution.DailyWorkout   `json:"workouts"`
}

type Service struct {
	store          resolution.Store
	locker         *resolution.GoalLocker
	plan           planner.Planner
	events         resolution.EventSink
	metricsManager *metrics.Manager
	now            func() time.Time
	newID          func() string
}

func NewService(
	store resolution.Store,
	locker *resolution.GoalLocker,
	plan planner.Planner,
	events resolution.EventSink,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		store:          store,
		locker:         locker,
		plan:           plan,
		events:         events,
		metricsManager: metricsManager,
		now:            time.Now,
		newID:          uuid.NewString,
	}
}

// Create builds the whole hierarchy top-down: phases from the planner's
// templates, week one materialized immediately so the user has workouts
// on day one. The week grid aligns to Mondays.
func (s *Service) Create(ctx context.Context, params CreateParams) (_ CreateResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if params.ResolutionText == "" {
		return CreateResult{}, resolution.NewValidationError("resolution_text", "a resolution statement is required")
	}
	totalWeeks := params.TotalWeeks
	if totalWeeks == 0 {
		totalWeeks = defaultTotalWeeks
	}
	if totalWeeks < 4 || totalWeeks > 104 {
		return CreateResult{}, resolution.NewValidationError("total_weeks", fmt.Sprintf("must be within [4,104], got %d", totalWeeks))
	}

	startDate := nextMonday(s.now())
	if params.StartDate != nil {
		startDate = nextMonday(*params.StartDate)
	}

	goal := &resolution.YearlyGoal{
		ID:             s.newID(),
		ResolutionText: params.ResolutionText,
		StartDate:      startDate,
		TargetDate:     startDate.AddDate(0, 0, totalWeeks*7-1),
		CurrentWeek:    1,
		TotalWeeks:     totalWeeks,
		Status:         resolution.GoalStatusActive,
		CreatedAt:      s.now(),
	}

	templates, err := s.plan.PhaseTemplates(ctx, goal.ResolutionText, totalWeeks)
	if err != nil {
		return CreateResult{}, fmt.Errorf("phase templates: %w", err)
	}

	var phases []*resolution.QuarterlyPhase
	for _, tpl := range templates {
		status := resolution.PhaseStatusPending
		if tpl.WeekStart == 1 {
			status = resolution.PhaseStatusActive
		}
		phases = append(phases, &resolution.QuarterlyPhase{
			ID:                   s.newID(),
			GoalID:               goal.ID,
			Quarter:              tpl.Quarter,
			Name:                 tpl.Name,
			Description:          tpl.Description,
			WeekStart:            tpl.WeekStart,
			WeekEnd:              tpl.WeekEnd,
			TargetWorkouts:       tpl.TargetWorkouts,
			FocusAreas:           tpl.FocusAreas,
			Milestones:           tpl.Milestones,
			RiskFactors:          tpl.RiskFactors,
			ProtectiveStrategies: tpl.ProtectiveStrategies,
			Status:               status,
		})
	}
	if err := verifyPhaseRanges(phases, totalWeeks); err != nil {
		return CreateResult{}, err
	}

	firstTemplate, err := s.plan.WeekTemplate(ctx, templates[0], 1)
	if err != nil {
		return CreateResult{}, fmt.Errorf("week 1 template: %w", err)
	}

	firstWeek, workouts, err := clock.BuildWeek(clock.BuildWeekParams{
		NewID:      s.newID,
		Goal:       goal,
		Phase:      phases[0],
		WeekNumber: 1,
		StartDate:  startDate,
		Template:   firstTemplate,
	})
	if err != nil {
		return CreateResult{}, err
	}

	if err := s.store.CreateGoal(ctx, goal, phases, []*resolution.WeeklyPlan{firstWeek}, workouts); err != nil {
		return CreateResult{}, fmt.Errorf("create goal: %w", err)
	}

	s.metricsManager.CounterGoalsCreated.Inc()
	s.events.Publish(ctx, resolution.Event{
		Type:     resolution.EventGoalCreated,
		GoalID:   goal.ID,
		EntityID: goal.ID,
		At:       s.now(),
	})

	return CreateResult{
		Goal:      goal,
		Phases:    phases,
		FirstWeek: firstWeek,
		Workouts:  workouts,
	}, nil
}

// ConfirmComplete marks the goal completed. Never automatic, reaching the
// final week keeps the goal open for extension until the user confirms.
func (s *Service) ConfirmComplete(ctx context.Context, goalID string) (*resolution.YearlyGoal, error) {
	return s.transition(ctx, goalID, resolution.GoalStatusCompleted)
}

// Abandon freezes the goal's subtree. No further materialization or
// aggregation happens, history stays queryable.
func (s *Service) Abandon(ctx context.Context, goalID string) (*resolution.YearlyGoal, error) {
	return s.transition(ctx, goalID, resolution.GoalStatusAbandoned)
}

func (s *Service) transition(
	ctx context.Context,
	goalID string,
	to resolution.GoalStatus,
) (_ *resolution.YearlyGoal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "goals.transition")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	unlock := s.locker.Lock(goalID)
	defer unlock()

	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsActive() {
		return nil, &resolution.InvalidStateError{
			Entity:        "goal",
			ID:            goal.ID,
			CurrentStatus: string(goal.Status),
		}
	}

	goal.Status = to
	if err := s.store.SaveChain(ctx, resolution.Chain{Goal: goal}); err != nil {
		return nil, fmt.Errorf("save goal: %w", err)
	}

	s.events.Publish(ctx, resolution.Event{
		Type:     resolution.EventGoalModified,
		GoalID:   goal.ID,
		EntityID: goal.ID,
		At:       s.now(),
	})
	return goal, nil
}

// List returns all goals, oldest first.
func (s *Service) List(ctx context.Context) ([]*resolution.YearlyGoal, error) {
	return s.store.ListGoals(ctx)
}

func verifyPhaseRanges(phases []*resolution.QuarterlyPhase, totalWeeks int) error {
	if len(phases) == 0 {
		return &resolution.ConsistencyError{Message: "planner produced no phases"}
	}
	expectedStart := 1
	for _, p := range phases {
		if p.WeekStart != expectedStart {
			return &resolution.ConsistencyError{
				Message: fmt.Sprintf("phase %d starts at week %d, expected %d", p.Quarter, p.WeekStart, expectedStart),
			}
		}
		if p.WeekEnd < p.WeekStart {
			return &resolution.ConsistencyError{
				Message: fmt.Sprintf("phase %d has inverted week range", p.Quarter),
			}
		}
		expectedStart = p.WeekEnd + 1
	}
	if phases[len(phases)-1].WeekEnd != totalWeeks {
		return &resolution.ConsistencyError{
			Message: fmt.Sprintf("phases cover %d weeks, goal has %d", phases[len(phases)-1].WeekEnd, totalWeeks),
		}
	}
	return nil
}

// nextMonday aligns a date to the week grid: Mondays pass through, any
// other day moves forward to the coming Monday.
func nextMonday(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(time.Monday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}
