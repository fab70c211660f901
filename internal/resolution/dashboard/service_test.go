package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/resolvefit/backend/internal/resolution"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cacheMock struct {
	views       map[string]*View
	hits        int
	invalidated []string
}

func newCacheMock() *cacheMock {
	return &cacheMock{views: map[string]*View{}}
}

func (c *cacheMock) GetView(_ context.Context, goalID string) (*View, bool) {
	view, ok := c.views[goalID]
	if ok {
		c.hits++
	}
	return view, ok
}

func (c *cacheMock) SetView(_ context.Context, goalID string, view *View) {
	c.views[goalID] = view
}

func (c *cacheMock) Invalidate(_ context.Context, goalID string) {
	delete(c.views, goalID)
	c.invalidated = append(c.invalidated, goalID)
}

var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) resolution.Store {
	t.Helper()
	ctx := context.Background()
	store := resolution.NewMockStore()

	goal := &resolution.YearlyGoal{
		ID:             "goal1",
		ResolutionText: "run a marathon",
		StartDate:      monday,
		TargetDate:     monday.AddDate(0, 0, 52*7-1),
		CurrentWeek:    2,
		TotalWeeks:     52,
		Status:         resolution.GoalStatusActive,
		CreatedAt:      monday,
	}
	phase := &resolution.QuarterlyPhase{
		ID:             "phase1",
		GoalID:         goal.ID,
		Quarter:        1,
		Name:           "Foundation",
		WeekStart:      1,
		WeekEnd:        13,
		TargetWorkouts: 39,
		Status:         resolution.PhaseStatusActive,
	}
	week1 := &resolution.WeeklyPlan{
		ID: "week1", PhaseID: phase.ID, GoalID: goal.ID,
		WeekNumber: 1, QuarterWeek: 1,
		StartDate: monday, EndDate: monday.AddDate(0, 0, 6),
		TargetWorkouts: 3, Status: resolution.WeekStatusCompleted,
	}
	week2 := &resolution.WeeklyPlan{
		ID: "week2", PhaseID: phase.ID, GoalID: goal.ID,
		WeekNumber: 2, QuarterWeek: 2,
		StartDate: monday.AddDate(0, 0, 7), EndDate: monday.AddDate(0, 0, 13),
		TargetWorkouts: 3, Status: resolution.WeekStatusActive,
	}
	week3 := &resolution.WeeklyPlan{
		ID: "week3", PhaseID: phase.ID, GoalID: goal.ID,
		WeekNumber: 3, QuarterWeek: 3,
		StartDate: monday.AddDate(0, 0, 14), EndDate: monday.AddDate(0, 0, 20),
		TargetWorkouts: 3, Status: resolution.WeekStatusUpcoming,
	}
	workout := &resolution.DailyWorkout{
		ID: "workout1", WeekID: week2.ID, PhaseID: phase.ID, GoalID: goal.ID,
		Date: week2.StartDate,
		Planned: resolution.PlannedWorkout{
			Type: "strength", DurationMinutes: 30, Intensity: resolution.IntensityModerate,
		},
		Completed: &resolution.CompletedOutcome{
			ActualDurationMinutes: 32,
			ResolvedAt:            week2.StartDate,
		},
	}

	require.NoError(t, store.CreateGoal(ctx, goal,
		[]*resolution.QuarterlyPhase{phase},
		[]*resolution.WeeklyPlan{week1, week2, week3},
		[]*resolution.DailyWorkout{workout},
	))
	return store
}

func TestOverview(t *testing.T) {
	store := seedStore(t)
	service := NewService(store, nil)
	service.now = func() time.Time { return monday }

	view, err := service.Overview(context.Background(), "goal1")
	require.NoError(t, err)

	assert.Equal(t, "goal1", view.Goal.ID)
	require.NotNil(t, view.CurrentPhase)
	assert.Equal(t, "phase1", view.CurrentPhase.ID)

	require.NotNil(t, view.CurrentWeek)
	assert.Equal(t, "week2", view.CurrentWeek.Week.ID)
	require.Len(t, view.CurrentWeek.Workouts, 1)
	assert.Equal(t, resolution.WorkoutStatusCompleted, view.CurrentWeek.Workouts[0].Status)
	assert.Equal(t, "Monday", view.CurrentWeek.Workouts[0].DayOfWeek)

	require.Len(t, view.UpcomingWeeks, 1)
	assert.Equal(t, "week3", view.UpcomingWeeks[0].ID)
	require.Len(t, view.AllPhases, 1)
}

func TestOverview_cached(t *testing.T) {
	store := seedStore(t)
	cache := newCacheMock()
	service := NewService(store, cache)

	first, err := service.Overview(context.Background(), "goal1")
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)

	second, err := service.Overview(context.Background(), "goal1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}

func TestQuarter(t *testing.T) {
	store := seedStore(t)
	service := NewService(store, nil)
	ctx := context.Background()

	view, err := service.Quarter(ctx, "goal1", 1)
	require.NoError(t, err)
	assert.Equal(t, "phase1", view.Phase.ID)
	assert.Len(t, view.Weeks, 3)

	_, err = service.Quarter(ctx, "goal1", 4)
	assert.ErrorIs(t, err, resolution.ErrPhaseNotFound)
}

func TestWeek(t *testing.T) {
	store := seedStore(t)
	service := NewService(store, nil)
	ctx := context.Background()

	view, err := service.Week(ctx, "goal1", 2)
	require.NoError(t, err)
	assert.Equal(t, "week2", view.Week.ID)
	assert.Len(t, view.Workouts, 1)

	_, err = service.Week(ctx, "goal1", 40)
	assert.ErrorIs(t, err, resolution.ErrWeekNotFound)
}

func TestWorkout(t *testing.T) {
	store := seedStore(t)
	service := NewService(store, nil)
	ctx := context.Background()

	// give the workout an audit trail
	require.NoError(t, store.SaveChain(ctx, resolution.Chain{
		Modifications: []*resolution.ModificationRecord{{
			ID:       "mod1",
			Level:    resolution.LevelWorkout,
			TargetID: "workout1",
			GoalID:   "goal1",
			Actor:    "user",
			Type:     resolution.ModTypeDurationChange,
			Reason:   "short on time",
		}},
	}))

	view, err := service.Workout(ctx, "workout1")
	require.NoError(t, err)
	assert.Equal(t, "workout1", view.Workout.ID)
	assert.Equal(t, resolution.WorkoutStatusCompleted, view.Status)
	require.Len(t, view.History, 1)
	assert.Equal(t, "mod1", view.History[0].ID)

	_, err = service.Workout(ctx, "nope")
	assert.ErrorIs(t, err, resolution.ErrWorkoutNotFound)
}

func TestInvalidator(t *testing.T) {
	store := seedStore(t)
	cache := newCacheMock()
	service := NewService(store, cache)
	ctx := context.Background()

	_, err := service.Overview(ctx, "goal1")
	require.NoError(t, err)

	invalidator := NewInvalidator(cache)
	invalidator.Publish(ctx, resolution.Event{
		Type:     resolution.EventWorkoutResolved,
		GoalID:   "goal1",
		EntityID: "workout1",
		At:       monday,
	})
	assert.Equal(t, []string{"goal1"}, cache.invalidated)

	// rebuild after invalidation, no stale hit
	_, err = service.Overview(ctx, "goal1")
	require.NoError(t, err)
	assert.Equal(t, 0, cache.hits)
}
